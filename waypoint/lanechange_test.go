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

// 两条平行直车道组成的路网，路线为先源车道后相邻目标车道
func buildLaneChangeWorld(t *testing.T) *lanelet.Manager {
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
	return m
}

func laneChangeConfigs() (config.GeneralTrajConfig, config.DetailedTrajConfig) {
	general := config.ComposeGeneralTrajConfig("cooperative_lanechange", 0, 0)
	detailed := config.ComposeDetailedTrajConfig(0, 0, 0, 0, 0, 5, 0, 0, 20)
	return general, detailed
}

func TestCreateLaneChangePath(t *testing.T) {
	wm := buildLaneChangeWorld(t)
	start, err := wm.Get(106)
	assert.NoError(t, err)
	end, err := wm.Get(111)
	assert.NoError(t, err)

	path, err := waypoint.CreateLaneChangePath(start, end)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(path), 4)

	// test: the path starts at the source centerline front and ends at the
	// target centerline back
	assert.InDelta(t, start.CenterLine()[0].X, path[0].X, 1e-6)
	assert.InDelta(t, start.CenterLine()[0].Y, path[0].Y, 1e-6)
	endLine := end.CenterLine()
	assert.InDelta(t, endLine[len(endLine)-1].X, path[len(path)-1].X, 1e-6)
	assert.InDelta(t, endLine[len(endLine)-1].Y, path[len(path)-1].Y, 1e-6)

	// test: lateral position moves monotonically towards the target lane
	for i := 1; i < len(path); i++ {
		assert.GreaterOrEqual(t, path[i].Y+1e-9, path[i-1].Y)
	}
}

func TestCreateRouteGeom(t *testing.T) {
	wm := buildLaneChangeWorld(t)

	path, err := waypoint.CreateRouteGeom(0, 106, wm.RouteLength(), wm)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(path), 4)

	// test: unknown source lanelet
	_, err = waypoint.CreateRouteGeom(0, 999, wm.RouteLength(), wm)
	assert.Error(t, err)

	// test: source and target resolve to the same lanelet
	_, err = waypoint.CreateRouteGeom(0, 111, wm.RouteLength(), wm)
	assert.Error(t, err)
}

func TestLaneChangeEndToEnd(t *testing.T) {
	wm := buildLaneChangeWorld(t)
	general, detailed := laneChangeConfigs()

	startLanelet, err := wm.Get(106)
	assert.NoError(t, err)
	state := entity.VehicleState{
		XYZ: startLanelet.CenterLine()[0],
		V:   8.0,
	}
	maneuvers := []entity.Maneuver{{
		Type:              entity.ManeuverLaneChange,
		StartDist:         0,
		EndDist:           wm.RouteLength(),
		StartSpeed:        5.0,
		EndSpeed:          25.0,
		StartingLaneletID: 106,
		EndingLaneletID:   111,
	}}

	profile, endingState, err := waypoint.CreateGeometryProfile(
		maneuvers, 0, wm, state, general, detailed)
	assert.NoError(t, err)
	assert.NotEmpty(t, profile)

	// test: lane change is executed at the current vehicle speed
	assert.InDelta(t, state.V, profile[len(profile)-1].Speed, 1e-9)
	assert.InDelta(t, 25.0, endingState.V, 1e-9)

	rc := config.NewRuntimeConfig(config.Config{
		Trajectory: config.Trajectory{General: general, Detailed: detailed},
	})
	trajectory, err := waypoint.ComposeLaneChangeTrajectoryFromPath(
		profile, state, 100.0, wm, endingState, rc)
	assert.NoError(t, err)
	assert.Greater(t, len(trajectory), 2)

	// test: target times start at the given start time and strictly increase
	assert.InDelta(t, 100.0, trajectory[0].TargetTime, 1e-9)
	for i := 1; i < len(trajectory); i++ {
		assert.Greater(t, trajectory[i].TargetTime, trajectory[i-1].TargetTime)
	}
}
