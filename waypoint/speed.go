package waypoint

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// OptimizeSpeed 双向加速度受限的速度剖面平滑
// 功能：在纵向加速度不超过accelLimit的前提下收紧目标速度剖面，
// 逐点取前向可达与后向可达速度中较小者
// 参数：downtracks-累积downtrack序列，curvSpeeds-同长度的目标速度序列，
// accelLimit-最大纵向加速度（必须为正）
// 返回：平滑后的速度序列；首元素恒等于curvSpeeds[0]——它是车辆正在
// 执行的当前速度，即使后向收紧更低也不削减
// 说明：两轮遍历是只读输入、产生新数组的纯变换，互不依赖执行顺序
func OptimizeSpeed(downtracks, curvSpeeds []float64, accelLimit float64) ([]float64, error) {
	if len(downtracks) != len(curvSpeeds) {
		return nil, fmt.Errorf("downtrack and speed counts mismatch: %d vs %d",
			len(downtracks), len(curvSpeeds))
	}
	if accelLimit <= 0 {
		return nil, fmt.Errorf("accel limit must be positive, got %v", accelLimit)
	}
	if len(downtracks) == 0 {
		return nil, fmt.Errorf("empty speed profile")
	}

	forward := forwardReachableSpeeds(downtracks, curvSpeeds, accelLimit)
	backward := backwardReachableSpeeds(downtracks, curvSpeeds, accelLimit)

	output := make([]float64, len(curvSpeeds))
	for i := range output {
		output[i] = math.Min(forward[i], backward[i])
	}
	output[0] = curvSpeeds[0]
	return output, nil
}

// 前向可达速度：vf[i] = min(v[i], sqrt(vf[i-1]² + 2aΔd))
func forwardReachableSpeeds(downtracks, speeds []float64, accelLimit float64) []float64 {
	output := make([]float64, len(speeds))
	output[0] = speeds[0]
	for i := 1; i < len(speeds); i++ {
		reachable := math.Sqrt(output[i-1]*output[i-1] + 2*accelLimit*(downtracks[i]-downtracks[i-1]))
		output[i] = math.Min(speeds[i], reachable)
	}
	return output
}

// 后向可达速度：vb[i] = min(v[i], sqrt(vb[i+1]² + 2aΔd))
func backwardReachableSpeeds(downtracks, speeds []float64, accelLimit float64) []float64 {
	n := len(speeds)
	output := make([]float64, n)
	output[n-1] = speeds[n-1]
	for i := n - 2; i >= 0; i-- {
		reachable := math.Sqrt(output[i+1]*output[i+1] + 2*accelLimit*(downtracks[i+1]-downtracks[i]))
		output[i] = math.Min(speeds[i], reachable)
	}
	return output
}

// CurvatureSpeeds 将曲率序列转换为弯道限速
// 功能：按横向加速度上限计算过弯安全速度v = sqrt(aLat/κ)，
// 并钳制到[minimumSpeed, maxSpeed]；κ≈0的直线段只受最大速度约束
func CurvatureSpeeds(curvatures []float64, lateralAccelLimit, minimumSpeed, maxSpeed float64) []float64 {
	return lo.Map(curvatures, func(k float64, _ int) float64 {
		v := maxSpeed
		if k > degenerateSpeedSq {
			v = math.Sqrt(lateralAccelLimit / k)
		}
		return lo.Clamp(v, minimumSpeed, maxSpeed)
	})
}

// SpeedsToTimes 将速度剖面积分为相对到达时间
// 功能：逐段按平均速度累积通过时间，t[0]=0
// 参数：downtracks-累积downtrack序列，speeds-同长度速度序列，
// minimumSpeed-段平均速度下限（防止零速尾段产生无穷时间）
// 返回：非递减的相对时间序列，或序列长度不一致时的错误
func SpeedsToTimes(downtracks, speeds []float64, minimumSpeed float64) ([]float64, error) {
	if len(downtracks) != len(speeds) {
		return nil, fmt.Errorf("downtrack and speed counts mismatch: %d vs %d",
			len(downtracks), len(speeds))
	}
	if len(downtracks) == 0 {
		return nil, fmt.Errorf("empty speed profile")
	}
	increments := make([]float64, len(downtracks))
	for i := 1; i < len(downtracks); i++ {
		avg := math.Max((speeds[i-1]+speeds[i])/2, minimumSpeed)
		increments[i] = (downtracks[i] - downtracks[i-1]) / avg
	}
	return floats.CumSum(increments, increments), nil
}
