package main

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// delayingTool behaves like a capture tool that holds back fence signals. Counting calls, every
// query of a pending fence uses up one unit. Counting frames, every frame boundary does.
type delayingTool struct {
	delay     int
	unit      delayUnit
	threshold time.Duration
	pending   [2]int

	frames int
}

func (d *delayingTool) query(fence int) bool {
	if d.pending[fence] == 0 {
		return true
	}
	if d.unit == unitCalls {
		d.pending[fence]--
	}
	return false
}

func (d *delayingTool) Status(fence int) (common.VkResult, error) {
	if d.query(fence) {
		return core1_0.VKSuccess, nil
	}
	return core1_0.VKNotReady, nil
}

func (d *delayingTool) Wait(fences []int, timeout time.Duration) (common.VkResult, error) {
	if timeout > d.threshold {
		for _, fence := range fences {
			d.pending[fence] = 0
		}
		return core1_0.VKSuccess, nil
	}

	ready := true
	for _, fence := range fences {
		if !d.query(fence) {
			ready = false
		}
	}
	if ready {
		return core1_0.VKSuccess, nil
	}
	return core1_0.VKTimeout, nil
}

func (d *delayingTool) Resubmit(fence int) error {
	d.pending[fence] = d.delay
	return nil
}

func (d *delayingTool) SubmitFrame() error {
	d.frames++
	if d.unit == unitFrames {
		for i := range d.pending {
			if d.pending[i] > 0 {
				d.pending[i]--
			}
		}
	}
	return nil
}

func TestScenarioAgainstDelayingTool(t *testing.T) {
	tests := map[string]struct {
		delay int
		unit  delayUnit
	}{
		"NoDelay":      {delay: 0, unit: unitCalls},
		"OneCall":      {delay: 1, unit: unitCalls},
		"ThreeCalls":   {delay: 3, unit: unitCalls},
		"FourCalls":    {delay: 4, unit: unitCalls},
		"OneFrame":     {delay: 1, unit: unitFrames},
		"ThreeFrames":  {delay: 3, unit: unitFrames},
		"SixFrames":    {delay: 6, unit: unitFrames},
		"NoDelayFrame": {delay: 0, unit: unitFrames},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tool := &delayingTool{delay: test.delay, unit: test.unit, threshold: 50}
			s := &scenario{ops: tool, delay: test.delay, unit: test.unit, threshold: 50}
			require.NoError(t, s.run())
		})
	}
}

func TestScenarioFrameCount(t *testing.T) {
	tool := &delayingTool{}
	s := &scenario{ops: tool}
	require.NoError(t, s.run())
	// only the calls unit step submits a frame without a delay
	require.Equal(t, 1, tool.frames)

	tool = &delayingTool{delay: 2}
	s = &scenario{ops: tool, delay: 2}
	require.NoError(t, s.run())
	require.Equal(t, 20, tool.frames)
}

func TestScenarioWrongDelay(t *testing.T) {
	tool := &delayingTool{delay: 2, unit: unitCalls}
	s := &scenario{ops: tool, delay: 1, unit: unitCalls}

	err := s.run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "single fence status")
}

type failingFrames struct {
	delayingTool
}

func (f *failingFrames) SubmitFrame() error {
	return errors.New("device lost")
}

func TestScenarioStopsAtFirstError(t *testing.T) {
	tool := &failingFrames{delayingTool{delay: 1}}
	s := &scenario{ops: tool, delay: 1}

	err := s.run()
	require.EqualError(t, err, "device lost")
}
