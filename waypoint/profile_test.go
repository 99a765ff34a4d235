package waypoint_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity/lanelet"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/waypoint"
)

// 一条300米直车道组成的路网
func buildLaneFollowWorld(t *testing.T) *lanelet.Manager {
	m := lanelet.NewManager()
	line := make([]geometry.Point, 0, 61)
	for i := 0; i <= 60; i++ {
		line = append(line, geometry.Point{X: float64(i) * 5, Y: 0})
	}
	_, err := m.AddLanelet(1, line)
	assert.NoError(t, err)
	assert.NoError(t, m.SetRoute(1))
	return m
}

func TestCreateGeometryProfileLaneFollow(t *testing.T) {
	wm := buildLaneFollowWorld(t)
	general := config.ComposeGeneralTrajConfig("inlanecruising", 0, 0)
	detailed := config.ComposeDetailedTrajConfig(0, 0, 0, 0, 0, 0, 0, 0, 0)
	state := entity.VehicleState{XYZ: geometry.Point{X: 0, Y: 0}, V: 5.0}
	maneuvers := []entity.Maneuver{{
		Type:       entity.ManeuverLaneFollow,
		StartDist:  0,
		EndDist:    100,
		StartSpeed: 5.0,
		EndSpeed:   10.0,
	}}

	profile, endingState, err := waypoint.CreateGeometryProfile(
		maneuvers, 0, wm, state, general, detailed)
	assert.NoError(t, err)
	assert.NotEmpty(t, profile)

	// test: geometry extends past the maneuver end by the ending buffer
	last := profile[len(profile)-1]
	assert.InDelta(t, 120.0, last.Point.X, 1e-6)

	// test: speeds ramp from start speed towards end speed, while the
	// trailing point carries the current vehicle speed
	assert.InDelta(t, 5.0, profile[0].Speed, 1e-9)
	assert.InDelta(t, state.V, last.Speed, 1e-9)
	for i := 1; i < len(profile)-1; i++ {
		assert.GreaterOrEqual(t, profile[i].Speed+1e-9, profile[i-1].Speed)
	}

	// test: ending state is reported at the maneuver end, not the buffer end
	assert.InDelta(t, 100.0, endingState.XYZ.X, 1e-6)
	assert.InDelta(t, 10.0, endingState.V, 1e-9)
	assert.InDelta(t, 0.0, endingState.Yaw, 1e-9)
}

func TestCreateGeometryProfileInvalidInput(t *testing.T) {
	wm := buildLaneFollowWorld(t)
	general := config.ComposeGeneralTrajConfig("inlanecruising", 0, 0)
	detailed := config.ComposeDetailedTrajConfig(0, 0, 0, 0, 0, 0, 0, 0, 0)
	state := entity.VehicleState{}

	// test: empty maneuver sequence
	_, _, err := waypoint.CreateGeometryProfile(nil, 0, wm, state, general, detailed)
	assert.Error(t, err)

	// test: vehicle already past the first maneuver
	maneuvers := []entity.Maneuver{{
		Type:      entity.ManeuverLaneFollow,
		StartDist: 0,
		EndDist:   50,
	}}
	_, _, err = waypoint.CreateGeometryProfile(maneuvers, 60, wm, state, general, detailed)
	assert.Error(t, err)
}

func TestComposeLaneFollowTrajectoryFromPath(t *testing.T) {
	wm := buildLaneFollowWorld(t)
	general := config.ComposeGeneralTrajConfig("inlanecruising", 0, 0)
	detailed := config.ComposeDetailedTrajConfig(0, 0, 0, 0, 0, 0, 0, 0, 0)
	rc := config.NewRuntimeConfig(config.Config{
		Trajectory: config.Trajectory{General: general, Detailed: detailed},
	})
	state := entity.VehicleState{XYZ: geometry.Point{X: 0, Y: 0}, V: 5.0}
	maneuvers := []entity.Maneuver{{
		Type:       entity.ManeuverLaneFollow,
		StartDist:  0,
		EndDist:    200,
		StartSpeed: 5.0,
		EndSpeed:   10.0,
	}}
	profile, _, err := waypoint.CreateGeometryProfile(
		maneuvers, 0, wm, state, general, detailed)
	assert.NoError(t, err)

	trajectory, pairs, err := waypoint.ComposeLaneFollowTrajectoryFromPath(
		profile, state, 10.0, nil, rc)
	assert.NoError(t, err)
	assert.Greater(t, len(trajectory), 2)
	assert.NotEmpty(t, pairs)
	assert.InDelta(t, 10.0, trajectory[0].TargetTime, 1e-9)
	for i := 1; i < len(trajectory); i++ {
		assert.Greater(t, trajectory[i].TargetTime, trajectory[i-1].TargetTime)
	}

	// test: replanning against previously published points keeps continuity
	state.XYZ = pairs[1].Point
	trajectory2, _, err := waypoint.ComposeLaneFollowTrajectoryFromPath(
		profile, state, 11.0, pairs[2:], rc)
	assert.NoError(t, err)
	assert.Greater(t, len(trajectory2), 2)
}
