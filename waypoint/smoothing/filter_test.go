package smoothing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/waypoint/smoothing"
)

func TestMovingAverageFilter(t *testing.T) {
	input := []float64{1, 2, 3, 4, 5}

	// test: centered window, clipped at the edges
	output := smoothing.MovingAverageFilter(input, 3)
	assert.Equal(t, len(input), len(output))
	assert.InDelta(t, 1.5, output[0], 1e-9)
	assert.InDelta(t, 2.0, output[1], 1e-9)
	assert.InDelta(t, 3.0, output[2], 1e-9)
	assert.InDelta(t, 4.0, output[3], 1e-9)
	assert.InDelta(t, 4.5, output[4], 1e-9)

	// test: window <= 1 returns a copy
	output = smoothing.MovingAverageFilter(input, 1)
	assert.Equal(t, input, output)
	output[0] = 100
	assert.InDelta(t, 1.0, input[0], 1e-9)

	// test: empty input
	assert.Empty(t, smoothing.MovingAverageFilter(nil, 3))
}

func TestMovingAverageFilterConstant(t *testing.T) {
	input := []float64{2, 2, 2, 2, 2, 2, 2}
	output := smoothing.MovingAverageFilter(input, 5)
	for _, v := range output {
		assert.InDelta(t, 2.0, v, 1e-9)
	}
}
