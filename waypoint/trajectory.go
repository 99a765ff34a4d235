package waypoint

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/waypoint/smoothing"
)

// 在累积长度表上对标量序列做线性插值
func interpolateAt(lengths, values []float64, s float64) float64 {
	s = lo.Clamp(s, lengths[0], lengths[len(lengths)-1])
	i := sort.SearchFloat64s(lengths, s)
	if i == 0 {
		return values[0]
	}
	sLow, sHigh := lengths[i-1], lengths[i]
	if sHigh <= sLow {
		return values[i]
	}
	k := (s - sLow) / (sHigh - sLow)
	return values[i-1]*(1-k) + values[i]*k
}

// trajectoryFromPointSpeedPairs 管线核心：点速对序列 → 带时间戳的轨迹
// 算法说明：
//  1. 拆分点速对，对几何点列拟合平滑参数曲线
//  2. 按重采样步长沿曲线均匀取参数点（含两端），机动目标速度
//     按弧长线性插值到采样点
//  3. 逐采样点求曲率，曲率滑动平均平滑
//  4. 曲率 → 横向加速度受限的弯道限速，再做速度滑动平均平滑
//  5. 弯道限速与机动目标速度逐点取最小，钳制到[min,max]
//  6. 双向加速度受限优化，速度积分为相对到达时间
//  7. 航向取折线分段方向，尾点沿用最后一段
// 说明：重规划的连续性（拼接、截窗）由调用方在进入本函数前完成
func trajectoryFromPointSpeedPairs(pairs []entity.PointSpeedPair, startTime float64, d config.DetailedTrajConfig) ([]entity.TrajectoryPoint, error) {
	points, speeds := SplitPointSpeedPairs(pairs)
	fitCurve, err := ComputeFit(points)
	if err != nil {
		return nil, fmt.Errorf("compute fit: %w", err)
	}
	lengths := geometry.GetPolylineLengths2D(points)
	total := lengths[len(lengths)-1]

	// 采样参数：步长d.CurveResampleStepSize，至少2个点，终点必含
	numSegments := int(math.Ceil(total / d.CurveResampleStepSize))
	if numSegments < 1 {
		numSegments = 1
	}
	n := numSegments + 1
	sampled := make([]geometry.Point, n)
	maneuverSpeeds := make([]float64, n)
	curvatures := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(numSegments)
		sampled[i] = fitCurve.Evaluate(t)
		maneuverSpeeds[i] = interpolateAt(lengths, speeds, t*total)
		curvatures[i] = ComputeCurvatureAt(fitCurve, t)
	}
	curvatures = smoothing.MovingAverageFilter(curvatures, d.CurvatureMovingAverageWindowSize)

	curvSpeeds := CurvatureSpeeds(curvatures, d.LateralAccelLimit, d.MinimumSpeed, d.MaxSpeed)
	curvSpeeds = smoothing.MovingAverageFilter(curvSpeeds, d.SpeedMovingAverageWindowSize)

	finalSpeeds := make([]float64, n)
	for i := range finalSpeeds {
		finalSpeeds[i] = lo.Clamp(math.Min(curvSpeeds[i], maneuverSpeeds[i]), 0, d.MaxSpeed)
	}

	downtracks := geometry.GetPolylineLengths2D(sampled)
	finalSpeeds, err = OptimizeSpeed(downtracks, finalSpeeds, d.MaxAccel)
	if err != nil {
		return nil, fmt.Errorf("optimize speed: %w", err)
	}
	times, err := SpeedsToTimes(downtracks, finalSpeeds, d.MinimumSpeed)
	if err != nil {
		return nil, fmt.Errorf("speeds to times: %w", err)
	}

	directions := geometry.GetPolylineDirections(sampled)
	yaws := make([]float64, n)
	for i := range yaws {
		if i < len(directions) {
			yaws[i] = directions[i].Direction
		} else {
			yaws[i] = directions[len(directions)-1].Direction
		}
	}
	return TrajectoryFromPointsTimesOrientations(sampled, times, yaws, startTime)
}

// ComposeLaneFollowTrajectoryFromPath 由车道保持几何合成轨迹
// 功能：对几何剖面做连续性拼接与前视时间窗截取后，走管线核心合成轨迹
// 参数：points-本周期几何剖面，state-车辆状态，startTime-轨迹起始时间，
// futurePoints-上一周期已发布轨迹中尚未执行的点速对（首个周期为空），
// rc-运行时配置
// 返回：轨迹点序列与实际参与合成的点速对（供下一周期拼接），或错误
func ComposeLaneFollowTrajectoryFromPath(
	points []entity.PointSpeedPair,
	state entity.VehicleState,
	startTime float64,
	futurePoints []entity.PointSpeedPair,
	rc *config.RuntimeConfig,
) ([]entity.TrajectoryPoint, []entity.PointSpeedPair, error) {
	nearest, err := GetNearestPointSpeedIndex(points, state)
	if err != nil {
		return nil, nil, fmt.Errorf("lane follow: %w", err)
	}
	var merged []entity.PointSpeedPair
	if len(futurePoints) > 0 {
		merged = AttachPastPoints(points, futurePoints, nearest, rc.D.BackDistance)
	} else {
		merged = points[nearest:]
	}
	constrained := ConstrainToTimeBoundary(merged, rc.D.TrajectoryTimeLength)
	if len(constrained) < smoothing.MinFitPoints {
		return nil, nil, fmt.Errorf("lane follow: %d points within time boundary, need %d",
			len(constrained), smoothing.MinFitPoints)
	}
	log.Debugf("lane follow: %d points -> %d merged -> %d within time boundary",
		len(points), len(merged), len(constrained))
	trajectory, err := trajectoryFromPointSpeedPairs(constrained, startTime, rc.D)
	if err != nil {
		return nil, nil, fmt.Errorf("lane follow: %w", err)
	}
	return trajectory, constrained, nil
}
