package main

import (
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/mocks"
)

func TestSubmitInfosChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	commandBuffers := []core1_0.CommandBuffer{mocks.EasyMockCommandBuffer(ctrl), mocks.EasyMockCommandBuffer(ctrl), mocks.EasyMockCommandBuffer(ctrl)}
	semaphores := []core1_0.Semaphore{mocks.EasyMockSemaphore(ctrl), mocks.EasyMockSemaphore(ctrl), mocks.EasyMockSemaphore(ctrl)}

	c := &chain{}
	submits := c.submitInfos(4, commandBuffers, semaphores, true)
	require.Len(t, submits, 3)

	require.Empty(t, submits[0].WaitSemaphores)
	require.Equal(t, semaphores[:1], submits[0].SignalSemaphores)
	require.Nil(t, submits[0].Next)

	require.Equal(t, semaphores[:1], submits[1].WaitSemaphores)
	require.Equal(t, []core1_0.PipelineStageFlags{core1_0.PipelineStageTransfer}, submits[1].WaitDstStageMask)
	require.Equal(t, semaphores[1:2], submits[1].SignalSemaphores)

	require.Equal(t, semaphores[1:2], submits[2].WaitSemaphores)
	require.Empty(t, submits[2].SignalSemaphores)
	require.Equal(t, vkext.FrameBoundary{Flags: vkext.FrameBoundaryFrameEnd, FrameID: 4}, submits[2].Next)

	for i, submit := range submits {
		require.Equal(t, commandBuffers[i:i+1], submit.CommandBuffers)
	}
}

func TestSubmitInfosWithoutFrameBoundary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	commandBuffers := []core1_0.CommandBuffer{mocks.EasyMockCommandBuffer(ctrl)}
	semaphores := []core1_0.Semaphore{mocks.EasyMockSemaphore(ctrl)}

	submits := (&chain{}).submitInfos(0, commandBuffers, semaphores, false)
	require.Len(t, submits, 1)
	require.Empty(t, submits[0].WaitSemaphores)
	require.Empty(t, submits[0].SignalSemaphores)
	require.Nil(t, submits[0].Next)
}

func TestQueueAlternation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	queue1 := mocks.EasyMockQueue(ctrl)
	queue2 := mocks.EasyMockQueue(ctrl)

	tests := map[string]struct {
		queueVariant int
		expected     []core1_0.Queue
	}{
		"TwoQueues": {queueVariant: 0, expected: []core1_0.Queue{queue1, queue2, queue1, queue2}},
		"OneQueue":  {queueVariant: 1, expected: []core1_0.Queue{queue1, queue1, queue1, queue1}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c := &chain{options: options{queueVariant: test.queueVariant}, queue1: queue1, queue2: queue2}
			for i, expected := range test.expected {
				require.Same(t, expected, c.queueFor(i))
			}
		})
	}
}
