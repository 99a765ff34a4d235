package waypoint

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/waypoint/smoothing"
)

// 曲率计算中导数模长平方的下限，低于该值视为退化几何
const degenerateSpeedSq = 1e-9

// ComputeFit 对有序点列拟合平滑参数曲线
// 功能：产生一条按序经过输入点、参数域为[0,1]的曲线
// 参数：basicPoints-有序2D点列（至少4个互异点，不足报错而不是静默处理）
// 返回：拟合曲线，或输入不合法时的错误
func ComputeFit(basicPoints []geometry.Point) (smoothing.Spline, error) {
	return smoothing.NewCubicSpline(basicPoints)
}

// ComputeCurvatureAt 计算曲线在参数t处的曲率
// 算法说明：κ = |x'y'' − y'x''| / (x'²+y'²)^1.5，
// 导数模长接近0（退化几何）时不做除法，钳制为安全曲率0
func ComputeCurvatureAt(fitCurve smoothing.Spline, t float64) float64 {
	d1 := fitCurve.Derivative(1, t)
	d2 := fitCurve.Derivative(2, t)
	speedSq := d1.X*d1.X + d1.Y*d1.Y
	if speedSq < degenerateSpeedSq {
		log.Debugf("degenerate curve derivative at t=%v, clamping curvature to 0", t)
		return 0
	}
	return mathutil.Abs(d1.X*d2.Y-d1.Y*d2.X) / math.Pow(speedSq, 1.5)
}
