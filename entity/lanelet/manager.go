package lanelet

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
)

// Manager 车道网络管理器
// 功能：持有全部Lanelet并维护当前路线，作为轨迹引擎的道路网络协作者
// 说明：路线是外部路由结果（有序车道序列），downtrack为沿路线累积的纵向距离；
// 管理器的所有查询是对内存快照的只读查找，引擎不修改路网状态
type Manager struct {
	lanelets map[int32]*Lanelet

	route        []*Lanelet // 当前路线上的有序车道
	routeOffsets []float64  // 路线车道起点的downtrack偏移，长度为len(route)+1
	routeLength  float64    // 路线总长度
}

// NewManager 创建空的车道网络管理器
func NewManager() *Manager {
	return &Manager{
		lanelets: make(map[int32]*Lanelet),
	}
}

// AddLanelet 注册一条车道
// 功能：根据中心线折线创建Lanelet并加入管理器
// 参数：id-车道ID（不可重复），line-中心线折线
// 返回：创建的Lanelet，或参数不合法时的错误
func (m *Manager) AddLanelet(id int32, line []geometry.Point) (*Lanelet, error) {
	if _, ok := m.lanelets[id]; ok {
		return nil, fmt.Errorf("lanelet %d already registered", id)
	}
	l, err := New(id, line)
	if err != nil {
		return nil, err
	}
	m.lanelets[id] = l
	return l, nil
}

// SetRoute 设定当前路线
// 功能：按给定的车道ID序列建立路线，并预计算各车道的downtrack偏移
// 参数：ids-有序车道ID序列（外部路由服务的最短路结果）
// 返回：存在未注册ID或序列为空时的错误
func (m *Manager) SetRoute(ids ...int32) error {
	if len(ids) == 0 {
		return fmt.Errorf("route must contain at least one lanelet")
	}
	route := make([]*Lanelet, 0, len(ids))
	for _, id := range ids {
		l, ok := m.lanelets[id]
		if !ok {
			return fmt.Errorf("route references unknown lanelet %d", id)
		}
		route = append(route, l)
	}
	offsets := make([]float64, len(route)+1)
	for i, l := range route {
		offsets[i+1] = offsets[i] + l.Length()
	}
	m.route = route
	m.routeOffsets = offsets
	m.routeLength = offsets[len(offsets)-1]
	log.Infof("route set: %d lanelets, length %.2f m", len(route), m.routeLength)
	return nil
}

// Get 按ID获取Lanelet
func (m *Manager) Get(id int32) (entity.ILanelet, error) {
	l, ok := m.lanelets[id]
	if !ok {
		return nil, fmt.Errorf("no lanelet with id %d", id)
	}
	return l, nil
}

// ShortestPath 获取当前路线的有序车道序列
func (m *Manager) ShortestPath() []entity.ILanelet {
	return lo.Map(m.route, func(l *Lanelet, _ int) entity.ILanelet { return l })
}

// RouteLength 获取路线总长度
func (m *Manager) RouteLength() float64 {
	return m.routeLength
}

// LaneletAtDowntrack 将路线downtrack转换为(所在车道, 车道内s)
func (m *Manager) LaneletAtDowntrack(d float64) (entity.ILanelet, float64) {
	if len(m.route) == 0 {
		log.Panic("lanelet: no route set")
	}
	d = lo.Clamp(d, 0, m.routeLength)
	j := sort.SearchFloat64s(m.routeOffsets, d)
	if j > 0 {
		j--
	}
	if j >= len(m.route) {
		j = len(m.route) - 1
	}
	return m.route[j], d - m.routeOffsets[j]
}

// PointAtDowntrack 将路线downtrack转换为xy坐标
func (m *Manager) PointAtDowntrack(d float64) geometry.Point {
	l, s := m.LaneletAtDowntrack(d)
	return l.GetPositionByS(s)
}

// DowntrackAt 将xy坐标投影到路线上，返回downtrack
// 算法说明：
// 1. 将坐标分别投影到路线上的每条车道
// 2. 取投影点与原坐标距离最小的车道
// 3. downtrack = 该车道的路线偏移 + 车道内s
func (m *Manager) DowntrackAt(pos geometry.Point) float64 {
	if len(m.route) == 0 {
		log.Panic("lanelet: no route set")
	}
	best := math.Inf(1)
	downtrack := 0.0
	for i, l := range m.route {
		s := l.ProjectToLanelet(pos)
		p := l.GetPositionByS(s)
		if d := math.Hypot(p.X-pos.X, p.Y-pos.Y); d < best {
			best = d
			downtrack = m.routeOffsets[i] + s
		}
	}
	return downtrack
}

// CenterlineBetween 截取downtrack区间内的路线中心线采样
// 功能：返回[startD, endD]之间的有序中心线点列
// 算法说明：
// 1. 首点取startD处的精确位置
// 2. 途经车道中downtrack严格位于区间内部的折线顶点依次加入
// 3. 尾点取endD处的精确位置
// 4. 相邻车道边界上的重复顶点只保留一个
// 说明：返回点列非空、有序、无相邻重复；区间越界时收缩到路线范围
func (m *Manager) CenterlineBetween(startD, endD float64) []geometry.Point {
	const eps = 1e-9
	startD = lo.Clamp(startD, 0, m.routeLength)
	endD = lo.Clamp(endD, 0, m.routeLength)
	points := []geometry.Point{m.PointAtDowntrack(startD)}
	if endD <= startD {
		return points
	}
	for i, l := range m.route {
		offset := m.routeOffsets[i]
		if offset >= endD || m.routeOffsets[i+1] <= startD {
			continue
		}
		lengths := l.CenterLineLengths()
		for k, p := range l.CenterLine() {
			d := offset + lengths[k]
			if d <= startD+eps || d >= endD-eps {
				continue
			}
			last := points[len(points)-1]
			if math.Hypot(p.X-last.X, p.Y-last.Y) < eps {
				continue
			}
			points = append(points, p)
		}
	}
	end := m.PointAtDowntrack(endD)
	last := points[len(points)-1]
	if math.Hypot(end.X-last.X, end.Y-last.Y) >= eps {
		points = append(points, end)
	}
	return points
}
