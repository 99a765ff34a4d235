// Package waypoint 实现轨迹几何与速度剖面生成管线
// 功能：把抽象机动序列转换为稠密、带时间戳、运动学可行的轨迹点序列，
// 供车辆控制器执行；每个规划周期同步调用一次，周期之间无内部状态
package waypoint

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
)

// 两点间平面距离
func distance2D(a, b geometry.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SplitPointSpeedPairs 将点速对序列无损拆分为点序列与速度序列
func SplitPointSpeedPairs(pairs []entity.PointSpeedPair) (points []geometry.Point, speeds []float64) {
	points = make([]geometry.Point, len(pairs))
	speeds = make([]float64, len(pairs))
	for i, p := range pairs {
		points[i] = p.Point
		speeds[i] = p.Speed
	}
	return
}

// GetNearestPointIndex 返回点列中距离车辆位置最近的点下标
// 功能：线性扫描求欧氏距离最小的点，距离相等时取较小下标
// 返回：最近点下标，或点列为空时的错误
func GetNearestPointIndex(points []geometry.Point, state entity.VehicleState) (int, error) {
	if len(points) == 0 {
		return 0, fmt.Errorf("nearest point search over empty sequence")
	}
	best := 0
	bestDist := distance2D(points[0], state.XYZ)
	for i := 1; i < len(points); i++ {
		if d := distance2D(points[i], state.XYZ); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, nil
}

// GetNearestPointSpeedIndex 同GetNearestPointIndex，作用于点速对序列
func GetNearestPointSpeedIndex(pairs []entity.PointSpeedPair, state entity.VehicleState) (int, error) {
	if len(pairs) == 0 {
		return 0, fmt.Errorf("nearest point search over empty sequence")
	}
	best := 0
	bestDist := distance2D(pairs[0].Point, state.XYZ)
	for i := 1; i < len(pairs); i++ {
		if d := distance2D(pairs[i].Point, state.XYZ); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, nil
}

// AttachPastPoints 连续性拼接
// 功能：重规划时把新几何中车辆后方的一段回看点，接到上一周期已发布的
// 未来点之前，避免新旧轨迹衔接处的跳变
// 参数：points-新计算的点列，futurePoints-上一轨迹中尚未执行的未来点，
// nearestPtIndex-新点列中距车辆最近的下标，backDistance-回看距离（米）
// 返回：回看段+已发布未来段的拼接结果，保持两个输入各自的相对顺序
// 算法说明：
// 1. 从最近点向后累积段长，直到超过backDistance为止，得到回看起点minI
// 2. 取新点列[minI, nearestPtIndex]为回看段
// 3. 其后直接衔接futurePoints
func AttachPastPoints(points, futurePoints []entity.PointSpeedPair, nearestPtIndex int, backDistance float64) []entity.PointSpeedPair {
	minI := nearestPtIndex
	totalDist := 0.0
	for i := nearestPtIndex; i > 0; i-- {
		totalDist += distance2D(points[i].Point, points[i-1].Point)
		minI = i
		if totalDist > backDistance {
			break
		}
	}
	result := make([]entity.PointSpeedPair, 0, len(points))
	result = append(result, points[minI:nearestPtIndex+1]...)
	// 两段衔接处的重复点只保留一个
	if len(result) > 0 && len(futurePoints) > 0 &&
		distance2D(result[len(result)-1].Point, futurePoints[0].Point) < duplicateEps {
		futurePoints = futurePoints[1:]
	}
	result = append(result, futurePoints...)
	return result
}

// ConstrainToTimeBoundary 将点速对序列截取到前视时间窗内
// 功能：按段长/段尾速度累积通过时间，只保留累积时间严格小于
// timeSpan的前缀；恰好到达或超出预算的点被排除
// 参数：points-有序点速对序列，timeSpan-时间预算（秒）
// 返回：截取后的前缀，长度不超过输入
func ConstrainToTimeBoundary(points []entity.PointSpeedPair, timeSpan float64) []entity.PointSpeedPair {
	if len(points) == 0 {
		return nil
	}
	elapsed := 0.0
	end := len(points)
	for i := 1; i < len(points); i++ {
		elapsed += distance2D(points[i-1].Point, points[i].Point) / points[i].Speed
		if elapsed >= timeSpan {
			end = i
			break
		}
	}
	out := make([]entity.PointSpeedPair, end)
	copy(out, points[:end])
	return out
}

// TrajectoryFromPointsTimesOrientations 为几何点列打时间戳与航向
// 功能：把位置、相对到达时间、航向三条等长序列合成为最终轨迹点，
// 绝对时间为startTime+相对时间，控制器插件为默认值
// 返回：轨迹点序列，或序列长度不一致时的错误
func TrajectoryFromPointsTimesOrientations(points []geometry.Point, times, yaws []float64, startTime float64) ([]entity.TrajectoryPoint, error) {
	if len(points) != len(times) || len(points) != len(yaws) {
		return nil, fmt.Errorf("points, times and yaws counts mismatch: %d vs %d vs %d",
			len(points), len(times), len(yaws))
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("relative times decrease at %d: %v -> %v", i, times[i-1], times[i])
		}
	}
	trajectory := make([]entity.TrajectoryPoint, len(points))
	for i, p := range points {
		trajectory[i] = entity.TrajectoryPoint{
			Point:                p,
			Yaw:                  yaws[i],
			TargetTime:           startTime + times[i],
			ControllerPluginName: entity.DefaultControllerPlugin,
		}
	}
	return trajectory, nil
}

// Downsample 每ratio个点保留一个，首尾点总是保留
// 说明：用于抽稀过密的中心线采样，ratio<=1时原样返回
func Downsample[T any](in []T, ratio int) []T {
	if ratio <= 1 || len(in) <= 2 {
		return in
	}
	out := make([]T, 0, len(in)/ratio+2)
	for i := 0; i < len(in); i += ratio {
		out = append(out, in[i])
	}
	if (len(in)-1)%ratio != 0 {
		out = append(out, in[len(in)-1])
	}
	return out
}
