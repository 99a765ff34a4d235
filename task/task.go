package task

import (
	"flag"
	"math"
	"sort"
	"sync/atomic"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/clock"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/randengine"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/waypoint"
)

const (
	SelfName = "trajectory-planner" // 本程序在规划任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// Context 规划任务上下文
// 功能：包含一次规划任务的所有变量和状态，替代全局变量
// 说明：持有时钟、道路网络、配置与上一周期发布的轨迹；
// 已发布轨迹是唯一的跨周期状态，由上下文而非waypoint管线保管
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 道路网络协作者
	wm entity.IWorldModel
	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 随机数引擎，用于车辆状态仿真的扰动
	engine *randengine.Engine

	// 车辆状态（每个周期开始时刷新）
	state entity.VehicleState
	// 当前待实现的机动序列
	maneuvers []entity.Maneuver

	// 上一周期发布的轨迹
	published []entity.TrajectoryPoint
	// 上一周期实际参与合成的点速对，供连续性拼接
	publishedPairs []entity.PointSpeedPair
}

// NewContext 创建新的规划任务上下文
// 功能：初始化规划循环的时钟、配置与协作者
// 参数：job-任务名称，wm-道路网络协作者，c-配置对象，
// state-车辆初始状态，maneuvers-机动序列，seed-随机数种子
// 返回：初始化完成的Context实例
func NewContext(
	job string,
	wm entity.IWorldModel,
	c config.Config,
	state entity.VehicleState,
	maneuvers []entity.Maneuver,
	seed uint64,
) *Context {
	ctx := &Context{
		job:       job,
		wm:        wm,
		state:     state,
		maneuvers: maneuvers,
		engine:    randengine.New(seed),
	}
	ctx.clock = clock.New(c.Control.Step)
	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) State() entity.VehicleState {
	return ctx.state
}

// Published 获取最近一次发布的轨迹
func (ctx *Context) Published() []entity.TrajectoryPoint {
	return ctx.published
}

// Close 设置关闭指令，规划循环在当前步结束后退出
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}

// PlanCycle 执行一个规划周期
// 功能：快照车辆状态，生成几何剖面并合成轨迹；任一环节失败时
// 保留上一周期的轨迹并记录告警，规划循环不中断
// 返回：本周期发布的轨迹（失败时为上一周期的轨迹）
// 算法说明：
//  1. 车辆当前downtrack由位置投影得到
//  2. 机动序列 → 点速对几何剖面（含机动完成状态）
//  3. 含变道机动时走变道合成，否则走车道保持合成（带连续性拼接）
//  4. 成功后发布轨迹并留存点速对供下一周期拼接
func (ctx *Context) PlanCycle() []entity.TrajectoryPoint {
	rc := ctx.runtimeConfig
	startingDowntrack := ctx.wm.DowntrackAt(ctx.state.XYZ)
	profile, endingState, err := waypoint.CreateGeometryProfile(
		ctx.maneuvers, startingDowntrack, ctx.wm, ctx.state, rc.G, rc.D)
	if err != nil {
		log.Warnf("step %d: geometry profile failed, keeping previous trajectory: %v",
			ctx.clock.InternalStep, err)
		return ctx.published
	}

	var trajectory []entity.TrajectoryPoint
	var pairs []entity.PointSpeedPair
	if hasLaneChange(ctx.maneuvers) {
		trajectory, err = waypoint.ComposeLaneChangeTrajectoryFromPath(
			profile, ctx.state, ctx.clock.T, ctx.wm, endingState, rc)
		pairs = profile
	} else {
		trajectory, pairs, err = waypoint.ComposeLaneFollowTrajectoryFromPath(
			profile, ctx.state, ctx.clock.T, ctx.futurePoints(), rc)
	}
	if err != nil {
		log.Warnf("step %d: trajectory composition failed, keeping previous trajectory: %v",
			ctx.clock.InternalStep, err)
		return ctx.published
	}
	ctx.published = trajectory
	ctx.publishedPairs = pairs
	return trajectory
}

// futurePoints 上一周期点速对中车辆尚未经过的部分
func (ctx *Context) futurePoints() []entity.PointSpeedPair {
	if len(ctx.publishedPairs) == 0 {
		return nil
	}
	nearest, err := waypoint.GetNearestPointSpeedIndex(ctx.publishedPairs, ctx.state)
	if err != nil {
		return nil
	}
	return ctx.publishedPairs[nearest+1:]
}

// 机动序列中是否含变道机动
func hasLaneChange(maneuvers []entity.Maneuver) bool {
	for _, m := range maneuvers {
		if m.Type == entity.ManeuverLaneChange {
			return true
		}
	}
	return false
}

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并按间隔输出心跳日志
func (ctx *Context) prepare() {
	ctx.clock.Tick()
	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f)",
			ctx.clock.InternalStep,
			hour, minute, second,
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：执行规划周期，并把车辆状态沿发布的轨迹推进一个控制步
func (ctx *Context) update() {
	ctx.PlanCycle()
	ctx.advanceVehicle()
}

// advanceVehicle 把车辆状态推进到下一个控制步对应的轨迹位置
// 算法说明：
//  1. 在已发布轨迹中二分查找下一控制步时刻的区间
//  2. 区间内按时间线性插值位置，速度取段长/段时长
//  3. 叠加小幅随机扰动，模拟控制器执行误差
func (ctx *Context) advanceVehicle() {
	if len(ctx.published) < 2 {
		return
	}
	t := ctx.clock.T + ctx.clock.DT
	points := ctx.published
	i := sort.Search(len(points), func(i int) bool { return points[i].TargetTime >= t })
	if i == 0 {
		i = 1
	}
	if i >= len(points) {
		i = len(points) - 1
	}
	a, b := points[i-1], points[i]
	dt := b.TargetTime - a.TargetTime
	k := 1.0
	if dt > 0 {
		k = (t - a.TargetTime) / dt
	}
	if k < 0 {
		k = 0
	} else if k > 1 {
		k = 1
	}
	ctx.state.XYZ.X = a.Point.X + (b.Point.X-a.Point.X)*k
	ctx.state.XYZ.Y = a.Point.Y + (b.Point.Y-a.Point.Y)*k
	ctx.state.Yaw = b.Yaw
	if dt > 0 {
		ctx.state.V = math.Hypot(b.Point.X-a.Point.X, b.Point.Y-a.Point.Y) / dt
	}
	// 执行误差扰动
	if ctx.engine.PTrue(0.5) {
		ctx.state.XYZ.X += (ctx.engine.Float64Safe() - 0.5) * 0.02
		ctx.state.XYZ.Y += (ctx.engine.Float64Safe() - 0.5) * 0.02
	}
}

// Run 运行规划循环直到规划区间结束或收到关闭指令
func (ctx *Context) Run() {
	log.Infof("%s: run steps [%d, %d) with dt %.2fs",
		ctx.job, ctx.clock.START_STEP, ctx.clock.END_STEP, ctx.clock.DT)
	for !ctx.clock.Done() && !ctx.closed.Load() {
		ctx.prepare()
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
	}
	log.Infof("%s: planning complete at %s", ctx.job, ctx.clock)
}
