package task_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity/lanelet"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/task"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
)

func buildWorld(t *testing.T) (*lanelet.Manager, entity.VehicleState, []entity.Maneuver) {
	m := lanelet.NewManager()
	line1 := make([]geometry.Point, 0, 41)
	line2 := make([]geometry.Point, 0, 41)
	for i := 0; i <= 40; i++ {
		x := float64(i) * 5
		line1 = append(line1, geometry.Point{X: x, Y: 0})
		line2 = append(line2, geometry.Point{X: x, Y: 3.7})
	}
	_, err := m.AddLanelet(106, line1)
	assert.NoError(t, err)
	_, err = m.AddLanelet(111, line2)
	assert.NoError(t, err)
	assert.NoError(t, m.SetRoute(106, 111))

	state := entity.VehicleState{XYZ: geometry.Point{X: 0, Y: 0}, V: 8.0}
	maneuvers := []entity.Maneuver{{
		Type:              entity.ManeuverLaneChange,
		StartDist:         0,
		EndDist:           m.RouteLength(),
		StartSpeed:        8.0,
		EndSpeed:          11.176,
		StartingLaneletID: 106,
		EndingLaneletID:   111,
	}}
	return m, state, maneuvers
}

func planningConfig(total int32) config.Config {
	return config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: total, Interval: 0.1},
		},
		Trajectory: config.Trajectory{
			General: config.ComposeGeneralTrajConfig("cooperative_lanechange", 0, 0),
		},
	}
}

func TestPlanCycle(t *testing.T) {
	wm, state, maneuvers := buildWorld(t)
	ctx := task.NewContext("test", wm, planningConfig(5), state, maneuvers, 43)

	trajectory := ctx.PlanCycle()
	assert.Greater(t, len(trajectory), 2)
	assert.Equal(t, len(trajectory), len(ctx.Published()))
	for i := 1; i < len(trajectory); i++ {
		assert.Greater(t, trajectory[i].TargetTime, trajectory[i-1].TargetTime)
	}
}

func TestPlanCycleKeepsPreviousOnFailure(t *testing.T) {
	wm, state, maneuvers := buildWorld(t)
	ctx := task.NewContext("test", wm, planningConfig(5), state, maneuvers, 43)

	first := ctx.PlanCycle()
	assert.NotEmpty(t, first)

	// test: a failing cycle keeps the previously published trajectory
	broken := task.NewContext("broken", wm, planningConfig(5), state, nil, 43)
	assert.Empty(t, broken.PlanCycle())
	assert.Empty(t, broken.Published())
}

func TestRun(t *testing.T) {
	wm, state, maneuvers := buildWorld(t)
	ctx := task.NewContext("test", wm, planningConfig(5), state, maneuvers, 43)

	ctx.Run()
	assert.True(t, ctx.Clock().Done())
	assert.Greater(t, len(ctx.Published()), 2)
	// test: the vehicle followed the published trajectory
	assert.Greater(t, ctx.State().XYZ.X, 0.0)
}
