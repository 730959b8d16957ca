package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionalMutexDisabled(t *testing.T) {
	var m OptionalMutex
	m.Lock()
	require.False(t, m.Held())
	m.Lock()
	m.Unlock()
	m.Unlock()
}

func TestOptionalMutexEnabled(t *testing.T) {
	m := OptionalMutex{Enabled: true}
	require.False(t, m.Held())
	m.Lock()
	require.True(t, m.Held())
	m.Unlock()
	require.False(t, m.Held())
}
