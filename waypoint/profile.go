package waypoint

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
)

// 相邻几何段边界去重的距离阈值（米）
const duplicateEps = 1e-9

// CreateGeometryProfile 把机动序列转换为点速对几何剖面
// 功能：逐机动生成原始几何与目标速度，拼接为一条沿路线有序的剖面，
// 并报告机动序列完成时预期的车辆状态
// 参数：maneuvers-有序机动序列，startingDowntrack-车辆当前downtrack，
// wm-道路网络协作者，state-车辆状态，g/d-轨迹配置
// 返回：点速对剖面、机动完成时的预期车辆状态，或输入不合法时的错误
// 算法说明：
//  1. 车道保持机动：截取[起点,终点]的路线中心线并按直行比例抽稀，
//     目标速度按弧长占比从StartSpeed线性过渡到EndSpeed
//  2. 变道机动：构造源车道到目标车道的过渡几何并按转弯比例抽稀，
//     目标速度取车辆当前速度（变道保持既有车速执行）
//  3. 末机动的几何向前多延伸BufferEndingDowntrack，越过路线末端则截断
//  4. 相邻机动边界处的重复点只保留一个
//  5. 剖面末尾点的目标速度固定为车辆当前速度
func CreateGeometryProfile(
	maneuvers []entity.Maneuver,
	startingDowntrack float64,
	wm entity.IWorldModel,
	state entity.VehicleState,
	g config.GeneralTrajConfig,
	d config.DetailedTrajConfig,
) ([]entity.PointSpeedPair, entity.VehicleState, error) {
	if len(maneuvers) == 0 {
		return nil, entity.VehicleState{}, fmt.Errorf("geometry profile: empty maneuver sequence")
	}
	if startingDowntrack > maneuvers[0].EndDist {
		return nil, entity.VehicleState{}, fmt.Errorf(
			"geometry profile: starting downtrack %.2f is past the first maneuver end %.2f",
			startingDowntrack, maneuvers[0].EndDist)
	}

	var profile []entity.PointSpeedPair
	for i, m := range maneuvers {
		startD := math.Max(m.StartDist, startingDowntrack)
		endD := m.EndDist
		if i == len(maneuvers)-1 {
			endD = math.Min(endD+d.BufferEndingDowntrack, wm.RouteLength())
		}
		if endD <= startD {
			log.Warnf("geometry profile: skipping %v with empty downtrack range [%.2f, %.2f]",
				m.Type, startD, endD)
			continue
		}

		var segment []entity.PointSpeedPair
		var err error
		switch m.Type {
		case entity.ManeuverLaneFollow:
			segment = laneFollowGeometry(m, startD, endD, wm, g)
		case entity.ManeuverLaneChange:
			segment, err = laneChangeGeometry(m, startD, endD, wm, state, g)
			if err != nil {
				return nil, entity.VehicleState{}, fmt.Errorf("geometry profile: %w", err)
			}
		default:
			return nil, entity.VehicleState{}, fmt.Errorf("geometry profile: unsupported maneuver type %v", m.Type)
		}
		// 机动边界去重
		if len(profile) > 0 && len(segment) > 0 &&
			distance2D(profile[len(profile)-1].Point, segment[0].Point) < duplicateEps {
			segment = segment[1:]
		}
		profile = append(profile, segment...)
	}
	if len(profile) == 0 {
		return nil, entity.VehicleState{}, fmt.Errorf("geometry profile: maneuvers produced no geometry")
	}
	// 末尾点的目标速度固定为当前车速
	profile[len(profile)-1].Speed = state.V

	last := maneuvers[len(maneuvers)-1]
	endingState := entity.VehicleState{
		XYZ: wm.PointAtDowntrack(last.EndDist),
		V:   last.EndSpeed,
	}
	lanelet, s := wm.LaneletAtDowntrack(last.EndDist)
	endingState.Yaw = lanelet.GetDirectionByS(s).Direction
	log.Debugf("geometry profile: %d maneuvers -> %d points, ending state %v",
		len(maneuvers), len(profile), endingState)
	return profile, endingState, nil
}

// 车道保持机动的几何段：路线中心线截取+抽稀+速度线性过渡
func laneFollowGeometry(m entity.Maneuver, startD, endD float64, wm entity.IWorldModel, g config.GeneralTrajConfig) []entity.PointSpeedPair {
	line := Downsample(wm.CenterlineBetween(startD, endD), g.DefaultDownsampleRatio)
	return pairsWithInterpolatedSpeeds(line, m.StartSpeed, m.EndSpeed)
}

// 变道机动的几何段：源车道到目标车道的过渡路径+抽稀，速度取当前车速
func laneChangeGeometry(m entity.Maneuver, startD, endD float64, wm entity.IWorldModel, state entity.VehicleState, g config.GeneralTrajConfig) ([]entity.PointSpeedPair, error) {
	line, err := CreateRouteGeom(startD, m.StartingLaneletID, endD, wm)
	if err != nil {
		return nil, err
	}
	line = Downsample(line, g.TurnDownsampleRatio)
	pairs := make([]entity.PointSpeedPair, len(line))
	for i, p := range line {
		pairs[i] = entity.PointSpeedPair{Point: p, Speed: state.V}
	}
	return pairs, nil
}

// 沿折线按弧长占比从startSpeed线性过渡到endSpeed
func pairsWithInterpolatedSpeeds(line []geometry.Point, startSpeed, endSpeed float64) []entity.PointSpeedPair {
	lengths := geometry.GetPolylineLengths2D(line)
	total := lengths[len(lengths)-1]
	pairs := make([]entity.PointSpeedPair, len(line))
	for i, p := range line {
		k := 1.0
		if total > 0 {
			k = lengths[i] / total
		}
		pairs[i] = entity.PointSpeedPair{Point: p, Speed: startSpeed + (endSpeed-startSpeed)*k}
	}
	return pairs
}
