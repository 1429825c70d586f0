package probe

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseServerTiming(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, float64(0), parseServerTiming(resp), "missing header yields 0")

	resp.Header.Set("Server-Timing", "cfRequestDuration;dur=12.345")
	assert.InDelta(t, 12.345, parseServerTiming(resp), 0.001)

	resp.Header.Set("Server-Timing", "cfCacheStatus;desc=\"HIT\"")
	assert.Equal(t, float64(0), parseServerTiming(resp), "unrelated Server-Timing entries yield 0")
}
