package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTexels(t *testing.T) {
	data := texels(width * height)
	require.Len(t, data, width*height*4)

	require.Equal(t, []byte{0, 255, 42, 255}, data[:4])
	require.Equal(t, []byte{15, 240, 42, 255}, data[60:])
}
