package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// 轨迹点默认的控制器插件名，未指定时由该插件执行
const DefaultControllerPlugin = "default"

// ManeuverType 机动类型
type ManeuverType int32

const (
	ManeuverLaneFollow ManeuverType = iota // 车道保持
	ManeuverLaneChange                     // 变道
)

func (t ManeuverType) String() string {
	switch t {
	case ManeuverLaneFollow:
		return "lane_follow"
	case ManeuverLaneChange:
		return "lane_change"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// Maneuver 规划器下发的机动指令，下发后不可修改
// 功能：描述一段需要由轨迹引擎实现的机动，给出空间与时间边界
// 说明：StartDist/EndDist为沿当前路线的downtrack距离（米），
// 变道机动额外携带源/目标车道ID，其余机动两者为0
type Maneuver struct {
	Type ManeuverType // 机动类型

	StartDist float64 // 起始downtrack（米）
	EndDist   float64 // 结束downtrack（米）

	StartSpeed float64 // 起始速度（米/秒）
	EndSpeed   float64 // 结束速度（米/秒）

	StartTime float64 // 起始时间（秒）
	EndTime   float64 // 结束时间（秒）

	// 变道机动的源/目标车道

	StartingLaneletID int32
	EndingLaneletID   int32
}

func (m Maneuver) String() string {
	return fmt.Sprintf("Maneuver{%v, dist=[%.2f,%.2f], speed=[%.2f,%.2f], lanelet=%d->%d}",
		m.Type, m.StartDist, m.EndDist, m.StartSpeed, m.EndSpeed,
		m.StartingLaneletID, m.EndingLaneletID)
}

// VehicleState 每个规划周期开始时刷新的车辆状态，作为管线的只读输入
type VehicleState struct {
	XYZ geometry.Point // 位置
	Yaw float64        // 航向角（弧度）
	V   float64        // 纵向速度（米/秒）
}

func (s VehicleState) String() string {
	return fmt.Sprintf("VehicleState{(%.2f,%.2f), yaw=%.3f, v=%.2f}", s.XYZ.X, s.XYZ.Y, s.Yaw, s.V)
}

// PointSpeedPair 位置与目标速度对
// 说明：序列按沿预期路径的弧长递增排列，顺序有语义，禁止重排；速度非负
type PointSpeedPair struct {
	Point geometry.Point // 位置
	Speed float64        // 目标速度（米/秒）
}

// TrajectoryPoint 最终输出的轨迹点，按到达时间严格递增排列
type TrajectoryPoint struct {
	Point                geometry.Point // 位置
	Yaw                  float64        // 航向角（弧度）
	TargetTime           float64        // 绝对到达时间（秒）
	ControllerPluginName string         // 执行该点的控制器插件名
}

// entity/lanelet/lanelet.go的依赖倒置
type ILanelet interface {
	String() string

	ID() int32                                            // 获取Lanelet ID
	Length() float64                                      // 以中心线长度为车道长度
	CenterLine() []geometry.Point                         // 获取中心线折线
	CenterLineLengths() []float64                         // 获取中心线折线点对应的累积长度列表
	GetPositionByS(s float64) geometry.Point              // 将车道s坐标转换为xy坐标
	GetDirectionByS(s float64) geometry.PolylineDirection // 根据车道s坐标计算切向角度
	ProjectToLanelet(pos geometry.Point) float64          // 将xy坐标投影到车道上，返回s坐标
	SampleCenterline(n int) []geometry.Point              // 沿中心线等弧长采样n个点
}

// entity/lanelet/manager.go的依赖倒置（道路网络协作者）
// 说明：轨迹引擎只读，所有查询都是对周期开始时快照状态的内存查找
type IWorldModel interface {
	Get(id int32) (ILanelet, error) // 按ID获取Lanelet

	ShortestPath() []ILanelet // 当前路线的有序车道序列
	RouteLength() float64     // 路线总长度

	PointAtDowntrack(d float64) geometry.Point               // 路线downtrack → xy坐标
	DowntrackAt(pos geometry.Point) float64                  // xy坐标 → 路线downtrack
	LaneletAtDowntrack(d float64) (ILanelet, float64)        // 路线downtrack → (所在车道, 车道内s)
	CenterlineBetween(startD, endD float64) []geometry.Point // 截取downtrack区间内的路线中心线采样
}
