package waypoint

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/waypoint/smoothing"
)

// CreateLaneChangePath 构造源车道到目标车道的变道过渡路径
// 功能：生成一条从源车道中心线起点出发、平滑汇入目标车道中心线终点的路径
// 参数：start-源车道，end-目标（相邻）车道
// 返回：过渡路径点列，或几何退化无法拟合时的错误
// 算法说明：
//  1. 将两条中心线等弧长重采样到相同点数n（不少于拟合所需的最少点数）
//  2. 逐下标按混合系数k=i/(n-1)插值，路径从源中心线渐变到目标中心线
//  3. 对混合点列重新拟合平滑曲线并按原参数重采样，消除混合产生的折角
//  4. 首尾点固定为混合点列的首尾（即源中心线起点与目标中心线终点）
func CreateLaneChangePath(start, end entity.ILanelet) ([]geometry.Point, error) {
	n := len(start.CenterLine())
	if len(end.CenterLine()) > n {
		n = len(end.CenterLine())
	}
	if n < smoothing.MinFitPoints {
		n = smoothing.MinFitPoints
	}
	startSamples := start.SampleCenterline(n)
	endSamples := end.SampleCenterline(n)
	blended := make([]geometry.Point, n)
	for i := 0; i < n; i++ {
		k := float64(i) / float64(n-1)
		blended[i] = geometry.Blend(startSamples[i], endSamples[i], k)
	}
	fitCurve, err := ComputeFit(blended)
	if err != nil {
		return nil, fmt.Errorf("lane change path %v -> %v: %w", start, end, err)
	}
	path := make([]geometry.Point, n)
	path[0] = blended[0]
	path[n-1] = blended[n-1]
	for i := 1; i < n-1; i++ {
		path[i] = fitCurve.Evaluate(float64(i) / float64(n-1))
	}
	return path, nil
}

// CreateRouteGeom 构造变道机动覆盖区间的路线几何
// 功能：以startLaneletID为变道源车道、endingDowntrack所在车道为目标车道，
// 生成变道过渡路径
// 参数：startingDowntrack-变道起始downtrack，startLaneletID-源车道ID，
// endingDowntrack-变道结束downtrack，wm-道路网络协作者
// 返回：过渡路径点列，或源/目标车道不合法时的错误
func CreateRouteGeom(startingDowntrack float64, startLaneletID int32, endingDowntrack float64, wm entity.IWorldModel) ([]geometry.Point, error) {
	startLanelet, err := wm.Get(startLaneletID)
	if err != nil {
		return nil, fmt.Errorf("route geom: %w", err)
	}
	endLanelet, _ := wm.LaneletAtDowntrack(endingDowntrack)
	if endLanelet.ID() == startLanelet.ID() {
		return nil, fmt.Errorf("route geom: lane change from lanelet %d to itself over [%.2f, %.2f]",
			startLaneletID, startingDowntrack, endingDowntrack)
	}
	return CreateLaneChangePath(startLanelet, endLanelet)
}

// ComposeLaneChangeTrajectoryFromPath 由变道几何合成轨迹
// 功能：从车辆最近点起截取前视时间窗内的几何，走管线核心合成轨迹；
// 截取后点数不足以拟合时，用机动完成状态的位置沿路线补齐
// 参数：points-变道几何剖面，state-车辆状态，startTime-轨迹起始时间，
// wm-道路网络协作者，endingState-机动完成时的预期车辆状态，rc-运行时配置
// 返回：轨迹点序列，或几何不足以拟合时的错误
func ComposeLaneChangeTrajectoryFromPath(
	points []entity.PointSpeedPair,
	state entity.VehicleState,
	startTime float64,
	wm entity.IWorldModel,
	endingState entity.VehicleState,
	rc *config.RuntimeConfig,
) ([]entity.TrajectoryPoint, error) {
	nearest, err := GetNearestPointSpeedIndex(points, state)
	if err != nil {
		return nil, fmt.Errorf("lane change: %w", err)
	}
	remaining := points[nearest:]
	constrained := ConstrainToTimeBoundary(remaining, rc.D.TrajectoryTimeLength)
	if len(constrained) < smoothing.MinFitPoints {
		constrained = extendTowardsEndingState(constrained, wm, endingState)
	}
	if len(constrained) < smoothing.MinFitPoints {
		return nil, fmt.Errorf("lane change: %d points within time boundary, need %d",
			len(constrained), smoothing.MinFitPoints)
	}
	log.Debugf("lane change: %d points -> %d within time boundary", len(points), len(constrained))
	return trajectoryFromPointSpeedPairs(constrained, startTime, rc.D)
}

// 几何不足以拟合时，沿路线中心线向机动完成位置补点，速度取完成状态速度
func extendTowardsEndingState(pairs []entity.PointSpeedPair, wm entity.IWorldModel, endingState entity.VehicleState) []entity.PointSpeedPair {
	if len(pairs) == 0 {
		return pairs
	}
	lastD := wm.DowntrackAt(pairs[len(pairs)-1].Point)
	endD := wm.DowntrackAt(endingState.XYZ)
	if endD <= lastD {
		return pairs
	}
	extension := wm.CenterlineBetween(lastD, endD)
	for _, p := range extension {
		if distance2D(pairs[len(pairs)-1].Point, p) < duplicateEps {
			continue
		}
		pairs = append(pairs, entity.PointSpeedPair{Point: p, Speed: endingState.V})
	}
	return pairs
}
