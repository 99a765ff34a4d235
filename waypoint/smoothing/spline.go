// Package smoothing 提供轨迹生成所用的参数曲线拟合与序列平滑
package smoothing

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/interp"
)

// 拟合所需的最少输入点数
const MinFitPoints = 4

// 参数域边界附近改用单侧差分的余量
const boundaryMargin = 1e-4

// 三点共线判定的相对阈值
const collinearEps = 1e-12

// Spline 参数曲线抽象
// 功能：以归一化参数t∈[0,1]描述一条平滑曲线，参数沿路径单调递增
// 说明：曲线归创建它的管线调用独占，不跨周期共享；
// 满足该契约的任意拟合实现都可以互换
type Spline interface {
	Evaluate(t float64) geometry.Point              // 求参数t处的位置
	Derivative(order int, t float64) geometry.Point // 求参数t处的一阶/二阶导数向量
}

// CubicSpline 基于分段三次Hermite插值的参数曲线
// 功能：对x(t)、y(t)分别做带节点导数的分段三次插值，节点切向由
// 相邻三点的外接圆估计，参数取弦长经弧长修正后归一化到[0,1]
// 说明：外接圆切向在圆弧输入上精确，弧长修正使参数近似等速，
// 两者共同保证稀疏采样的弯道上曲率估计稳定；一阶导数解析求值，
// 二阶导数对解析一阶导数做数值差分，参数域边界处改用单侧差分
// 以避免在[0,1]之外取值
type CubicSpline struct {
	x, y interp.PiecewiseCubic
}

// NewCubicSpline 对有序点列拟合分段三次参数曲线
// 功能：估计各节点的单位切向与各段的弧长，以归一化弧长为参数
// 分别拟合两个坐标分量
// 参数：points-有序2D点列（至少MinFitPoints个，相邻点不可重合）
// 返回：拟合的曲线，或输入不合法时的错误
// 算法说明：
//  1. 节点切向：过相邻三点作外接圆，取节点处的圆切向并与行进
//     方向对齐；三点共线时退化为前后点连线方向
//  2. 段弧长：chord·(θ/2)/sin(θ/2)，θ为段两端切向的夹角，
//     即把段视作圆弧时的弦长-弧长换算
//  3. 节点导数向量 = 单位切向 × 总弧长，即归一化参数下的等速速率
func NewCubicSpline(points []geometry.Point) (*CubicSpline, error) {
	n := len(points)
	if n < MinFitPoints {
		return nil, fmt.Errorf("spline fit needs at least %d points, got %d", MinFitPoints, n)
	}
	tangents := knotTangents(points)

	ts := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	xs[0], ys[0] = points[0].X, points[0].Y
	for i := 1; i < n; i++ {
		chord := math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
		if chord == 0 {
			return nil, fmt.Errorf("spline fit input has duplicate adjacent points at %d", i)
		}
		cosTheta := tangents[i-1].X*tangents[i].X + tangents[i-1].Y*tangents[i].Y
		if cosTheta > 1 {
			cosTheta = 1
		} else if cosTheta < -1 {
			cosTheta = -1
		}
		arc := chord
		if theta := math.Acos(cosTheta); theta > 1e-8 {
			arc = chord * (theta / 2) / math.Sin(theta/2)
		}
		ts[i] = ts[i-1] + arc
		xs[i], ys[i] = points[i].X, points[i].Y
	}
	total := ts[n-1]
	dxs := make([]float64, n)
	dys := make([]float64, n)
	for i, tangent := range tangents {
		ts[i] /= total
		dxs[i] = tangent.X * total
		dys[i] = tangent.Y * total
	}
	s := &CubicSpline{}
	s.x.FitWithDerivatives(ts, xs, dxs)
	s.y.FitWithDerivatives(ts, ys, dys)
	return s, nil
}

// knotTangents 估计每个节点处的单位切向
// 说明：端点用其最近的三个点所在外接圆，内部节点用自身为中间点的三点组
func knotTangents(points []geometry.Point) []geometry.Point {
	n := len(points)
	tangents := make([]geometry.Point, n)
	for i := range points {
		lo := i - 1
		if lo < 0 {
			lo = 0
		}
		if lo > n-3 {
			lo = n - 3
		}
		hi := i + 1
		if hi > n-1 {
			hi = n - 1
		}
		prev := i - 1
		if prev < 0 {
			prev = 0
		}
		// 行进方向，用于确定切向符号
		dir := geometry.Point{X: points[hi].X - points[prev].X, Y: points[hi].Y - points[prev].Y}
		if dir.X == 0 && dir.Y == 0 {
			dir = geometry.Point{X: points[hi].X - points[i].X, Y: points[hi].Y - points[i].Y}
		}
		tangents[i] = circumTangentAt(points[lo], points[lo+1], points[lo+2], points[i], dir)
	}
	return tangents
}

// circumTangentAt 过三点a、b、c作外接圆，求at点处与dir同向的单位切向
// 说明：at须为三点之一；三点共线时外接圆退化，切向取a到c的连线方向
func circumTangentAt(a, b, c, at, dir geometry.Point) geometry.Point {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	cross := bx*cy - by*cx
	if math.Abs(cross) <= collinearEps*math.Hypot(bx, by)*math.Hypot(cx, cy) {
		return normalize(dir)
	}
	d := 2 * cross
	ox := (cy*(bx*bx+by*by) - by*(cx*cx+cy*cy)) / d
	oy := (bx*(cx*cx+cy*cy) - cx*(bx*bx+by*by)) / d
	radial := geometry.Point{X: at.X - (a.X + ox), Y: at.Y - (a.Y + oy)}
	tangent := normalize(geometry.Point{X: -radial.Y, Y: radial.X})
	if tangent.X*dir.X+tangent.Y*dir.Y < 0 {
		tangent.X, tangent.Y = -tangent.X, -tangent.Y
	}
	return tangent
}

// 单位化，零向量原样返回
func normalize(v geometry.Point) geometry.Point {
	n := math.Hypot(v.X, v.Y)
	if n == 0 {
		return v
	}
	return geometry.Point{X: v.X / n, Y: v.Y / n}
}

// Evaluate 求参数t处的位置
func (s *CubicSpline) Evaluate(t float64) geometry.Point {
	return geometry.Point{X: s.x.Predict(t), Y: s.y.Predict(t)}
}

// Derivative 求参数t处的导数向量
// 参数：order-导数阶数（1或2），t-曲线参数
func (s *CubicSpline) Derivative(order int, t float64) geometry.Point {
	switch order {
	case 1:
		return geometry.Point{X: s.x.PredictDerivative(t), Y: s.y.PredictDerivative(t)}
	case 2:
		settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}
		if t < boundaryMargin {
			settings.Formula = fd.Forward
		} else if t > 1-boundaryMargin {
			settings.Formula = fd.Backward
		}
		return geometry.Point{
			X: fd.Derivative(s.x.PredictDerivative, t, settings),
			Y: fd.Derivative(s.y.PredictDerivative, t, settings),
		}
	default:
		log.Panicf("smoothing: unsupported derivative order %d", order)
		return geometry.Point{}
	}
}
