package main

import (
	"time"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type delayUnit int

const (
	unitCalls delayUnit = iota
	unitFrames
)

var delayUnits = map[string]delayUnit{
	"calls":  unitCalls,
	"frames": unitFrames,
}

// fenceOps is the fence traffic the scenario drives. Fences are indices 0 and 1.
type fenceOps interface {
	Status(fence int) (common.VkResult, error)
	Wait(fences []int, timeout time.Duration) (common.VkResult, error)
	// Resubmit resets a fence and signals it again with an empty submit
	Resubmit(fence int) error
	// SubmitFrame submits nothing but a frame boundary
	SubmitFrame() error
}

// scenario checks that a capture tool delaying fences by delay units behaves consistently.
// Waits with a timeout at or below threshold count as delayed queries, longer waits do not.
type scenario struct {
	ops       fenceOps
	delay     int
	unit      delayUnit
	threshold time.Duration
}

type fenceCheck struct {
	s    *scenario
	step string
	err  error
}

func (c *fenceCheck) status(fence int, expected common.VkResult) {
	if c.err != nil {
		return
	}
	res, err := c.s.ops.Status(fence)
	c.err = errors.Wrapf(toolstest.CheckResult(expected, res, err), "%s: status of fence %d", c.step, fence)
}

func (c *fenceCheck) wait(fences []int, timeout time.Duration, expected common.VkResult) {
	if c.err != nil {
		return
	}
	res, err := c.s.ops.Wait(fences, timeout)
	c.err = errors.Wrapf(toolstest.CheckResult(expected, res, err), "%s: waiting for fences %v", c.step, fences)
}

func (c *fenceCheck) resubmit(fences ...int) {
	for _, fence := range fences {
		if c.err != nil {
			return
		}
		c.err = c.s.ops.Resubmit(fence)
	}
}

func (c *fenceCheck) frame() {
	if c.err != nil {
		return
	}
	c.err = c.s.ops.SubmitFrame()
}

func (s *scenario) run() error {
	c := &fenceCheck{s: s}
	n := s.delay
	under := s.threshold
	over := s.threshold + 1

	c.step = "single fence status"
	c.resubmit(0)
	for i := 0; i < n; i++ {
		c.status(0, core1_0.VKNotReady)
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)

	c.step = "delay unit"
	c.resubmit(0)
	switch s.unit {
	case unitCalls:
		for i := 0; i < n+1; i++ {
			c.frame()
		}
	case unitFrames:
		// without a delay nothing is ever held back
		for i := 0; n > 0 && i < n+1; i++ {
			c.status(0, core1_0.VKNotReady)
		}
	}
	for i := 0; i < n; i++ {
		c.status(0, core1_0.VKNotReady)
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)

	c.step = "wait under threshold"
	c.resubmit(0)
	for i := 0; i < n; i++ {
		c.wait([]int{0}, under, core1_0.VKTimeout)
		c.frame()
	}
	c.wait([]int{0}, under, core1_0.VKSuccess)

	c.step = "wait over threshold"
	c.resubmit(0)
	c.wait([]int{0}, over, core1_0.VKSuccess)
	c.status(0, core1_0.VKSuccess)
	c.wait([]int{0}, under, core1_0.VKSuccess)

	c.step = "mixed status and wait"
	c.resubmit(0, 1)
	for i := 0; i < n; i++ {
		if i&1 != 0 {
			c.wait([]int{0}, under, core1_0.VKTimeout)
			c.status(1, core1_0.VKNotReady)
		} else {
			c.status(0, core1_0.VKNotReady)
			c.wait([]int{1}, under, core1_0.VKTimeout)
		}
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)
	c.status(1, core1_0.VKSuccess)

	c.step = "one fence queried first"
	c.resubmit(0, 1)
	for i := 0; i < n; i++ {
		c.status(0, core1_0.VKNotReady)
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)
	for i := 0; i < n; i++ {
		c.status(0, core1_0.VKSuccess)
		if s.unit == unitCalls {
			c.status(1, core1_0.VKNotReady)
		} else {
			// the frames above already released both fences
			c.status(1, core1_0.VKSuccess)
		}
	}
	c.status(0, core1_0.VKSuccess)
	c.status(1, core1_0.VKSuccess)

	c.step = "one fence waited over threshold"
	c.resubmit(0, 1)
	c.wait([]int{0}, over, core1_0.VKSuccess)
	for i := 0; i < n; i++ {
		c.status(0, core1_0.VKSuccess)
		c.status(1, core1_0.VKNotReady)
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)
	c.status(1, core1_0.VKSuccess)

	c.step = "two fences waited under threshold"
	c.resubmit(0, 1)
	for i := 0; i < n; i++ {
		if i&1 != 0 {
			c.wait([]int{0, 1}, under, core1_0.VKTimeout)
		} else {
			c.status(0, core1_0.VKNotReady)
			c.status(1, core1_0.VKNotReady)
		}
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)
	c.status(1, core1_0.VKSuccess)

	c.step = "two fences waited over threshold"
	c.resubmit(0, 1)
	c.wait([]int{0, 1}, over, core1_0.VKSuccess)
	c.status(0, core1_0.VKSuccess)
	c.status(1, core1_0.VKSuccess)

	c.step = "staggered submits"
	c.resubmit(0)
	for i := 0; i < n/2; i++ {
		c.status(0, core1_0.VKNotReady)
		c.status(1, core1_0.VKSuccess)
		c.frame()
	}
	c.resubmit(1)
	for i := 0; i < n-n/2; i++ {
		c.status(0, core1_0.VKNotReady)
		c.status(1, core1_0.VKNotReady)
		c.frame()
	}
	for i := 0; i < n/2; i++ {
		c.status(0, core1_0.VKSuccess)
		c.status(1, core1_0.VKNotReady)
		c.frame()
	}
	c.status(0, core1_0.VKSuccess)
	c.status(1, core1_0.VKSuccess)

	return c.err
}
