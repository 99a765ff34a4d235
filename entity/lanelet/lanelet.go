package lanelet

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

// Lanelet 车道实体
// 功能：表示路网中的一条有向车道，持有中心线几何并提供s坐标与xy坐标的互转
// 说明：中心线的累积长度与分段方向在构造时一次性算好，之后全部查询为只读
type Lanelet struct {
	id int32

	line           []geometry.Point             // 中心线折线
	lineLengths    []float64                    // 中心线折线点对应的累积长度列表
	lineDirections []geometry.PolylineDirection // 中心线折线段每一段的方向（atan2）
	length         float64                      // 以中心线的长度为车道长度
}

// New 创建并初始化一个新的Lanelet实例
// 功能：根据中心线折线创建Lanelet，预计算累积长度与分段方向
// 参数：id-车道ID，line-中心线折线（至少2个点）
// 返回：初始化完成的Lanelet实例，或折线不合法时的错误
func New(id int32, line []geometry.Point) (*Lanelet, error) {
	if len(line) < 2 {
		return nil, fmt.Errorf("lanelet %d: centerline needs at least 2 points, got %d", id, len(line))
	}
	for i := 1; i < len(line); i++ {
		if math.Hypot(line[i].X-line[i-1].X, line[i].Y-line[i-1].Y) == 0 {
			return nil, fmt.Errorf("lanelet %d: centerline has duplicate adjacent points at %d", id, i)
		}
	}
	l := &Lanelet{
		id:   id,
		line: append([]geometry.Point(nil), line...),
	}
	l.lineLengths = geometry.GetPolylineLengths2D(l.line)
	l.length = l.lineLengths[len(l.lineLengths)-1]
	l.lineDirections = geometry.GetPolylineDirections(l.line)
	return l, nil
}

func (l *Lanelet) String() string {
	return fmt.Sprintf("Lanelet{id=%d, length=%.2f}", l.id, l.length)
}

// 获取Lanelet ID
func (l *Lanelet) ID() int32 {
	return l.id
}

// 获取车道长度
func (l *Lanelet) Length() float64 {
	return l.length
}

// 获取中心线折线
func (l *Lanelet) CenterLine() []geometry.Point {
	return l.line
}

// 获取中心线累积长度列表
func (l *Lanelet) CenterLineLengths() []float64 {
	return l.lineLengths
}

// 将当前车道s坐标转换为xy坐标
func (l *Lanelet) GetPositionByS(s float64) (pos geometry.Point) {
	if s < l.lineLengths[0] || s > l.lineLengths[len(l.lineLengths)-1] {
		log.Debugf("lanelet %d: get position with s %v out of range{%v,%v}",
			l.id, s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
		s = lo.Clamp(s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(l.lineLengths, s); i == 0 {
		pos = l.line[0]
	} else {
		sHigh, sLow := l.lineLengths[i], l.lineLengths[i-1]
		k := (s - sLow) / (sHigh - sLow)
		pos = geometry.Blend(l.line[i-1], l.line[i], k)
	}
	return
}

// 根据本车道s坐标计算切向角度
func (l *Lanelet) GetDirectionByS(s float64) (direction geometry.PolylineDirection) {
	if s < l.lineLengths[0] || s > l.lineLengths[len(l.lineLengths)-1] {
		log.Debugf("lanelet %d: get direction with s %v out of range{%v,%v}",
			l.id, s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
		s = lo.Clamp(s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(l.lineLengths, s); i == 0 {
		direction = l.lineDirections[0]
	} else {
		direction = l.lineDirections[i-1]
	}
	return
}

// 将xy坐标投影到车道折线上，计算出对应的s坐标
func (l *Lanelet) ProjectToLanelet(pos geometry.Point) float64 {
	s := geometry.GetClosestPolylineSToPoint2D(l.line, l.lineLengths, pos)
	return lo.Clamp(s, 0, l.length)
}

// SampleCenterline 沿中心线等弧长采样n个点
// 功能：在s=0到s=length之间等间隔取n个点，首尾点与折线端点完全一致
// 参数：n-采样点数（至少2）
// 返回：采样点序列
// 说明：用于变道路径混合时将两条中心线对齐到相同点数
func (l *Lanelet) SampleCenterline(n int) []geometry.Point {
	if n < 2 {
		log.Panicf("lanelet %d: sample count %d < 2", l.id, n)
	}
	points := make([]geometry.Point, n)
	points[0] = l.line[0]
	points[n-1] = l.line[len(l.line)-1]
	for i := 1; i < n-1; i++ {
		points[i] = l.GetPositionByS(l.length * float64(i) / float64(n-1))
	}
	return points
}
