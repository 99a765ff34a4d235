package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
)

func TestComposeDetailedTrajConfigDefaults(t *testing.T) {
	// test: zero-valued parameters fall back to defaults
	d := config.ComposeDetailedTrajConfig(0, 0, 0, 0, 0, 5, 0, 0, 20)
	assert.InDelta(t, 6.0, d.TrajectoryTimeLength, 1e-9)
	assert.InDelta(t, 1.0, d.CurveResampleStepSize, 1e-9)
	assert.InDelta(t, 2.2352, d.MinimumSpeed, 1e-9)
	assert.InDelta(t, 44.704, d.MaxSpeed, 1e-9)
	assert.InDelta(t, 1.5, d.MaxAccel, 1e-9)
	assert.InDelta(t, 2.5, d.LateralAccelLimit, 1e-9)
	assert.Equal(t, 5, d.SpeedMovingAverageWindowSize)
	assert.Equal(t, 9, d.CurvatureMovingAverageWindowSize)
	assert.InDelta(t, 20.0, d.BackDistance, 1e-9)
	assert.InDelta(t, 20.0, d.BufferEndingDowntrack, 1e-9)

	// test: explicit values are kept
	d = config.ComposeDetailedTrajConfig(8, 0.5, 1, 2, 3, 7, 11, 10, 30)
	assert.InDelta(t, 8.0, d.TrajectoryTimeLength, 1e-9)
	assert.InDelta(t, 0.5, d.CurveResampleStepSize, 1e-9)
	assert.InDelta(t, 2.0, d.MaxAccel, 1e-9)
	assert.Equal(t, 11, d.CurvatureMovingAverageWindowSize)
}

func TestComposeGeneralTrajConfig(t *testing.T) {
	g := config.ComposeGeneralTrajConfig("cooperative_lanechange", 2, 3)
	assert.Equal(t, "cooperative_lanechange", g.TrajectoryType)
	assert.Equal(t, 2, g.DefaultDownsampleRatio)
	assert.Equal(t, 3, g.TurnDownsampleRatio)
}

func TestNewRuntimeConfig(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{})
	assert.InDelta(t, 0.1, rc.C.Step.Interval, 1e-9)
	assert.Equal(t, int32(1), rc.C.Step.Total)
	assert.Equal(t, "inlanecruising", rc.G.TrajectoryType)
	assert.InDelta(t, 6.0, rc.D.TrajectoryTimeLength, 1e-9)
}

func TestConfigYAML(t *testing.T) {
	data := `
control:
  step:
    start: 0
    total: 100
    interval: 0.1
trajectory:
  general:
    trajectory_type: cooperative_lanechange
    default_downsample_ratio: 2
    turn_downsample_ratio: 1
  detailed:
    trajectory_time_length: 6.0
    max_accel: 2.0
`
	var c config.Config
	assert.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	assert.Equal(t, int32(100), c.Control.Step.Total)
	assert.Equal(t, "cooperative_lanechange", c.Trajectory.General.TrajectoryType)
	assert.InDelta(t, 2.0, c.Trajectory.Detailed.MaxAccel, 1e-9)

	// test: unknown keys are rejected
	assert.Error(t, yaml.UnmarshalStrict([]byte("unknown: 1"), &c))
}
