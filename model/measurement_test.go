package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLossRate(t *testing.T) {
	tests := []struct {
		name     string
		m        Measurement
		expected float64
	}{
		{"no attempts", Measurement{Sent: 0, Received: 0}, 1},
		{"all succeeded", Measurement{Sent: 4, Received: 4}, 0},
		{"half succeeded", Measurement{Sent: 4, Received: 2}, 0.5},
		{"all failed", Measurement{Sent: 4, Received: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.m.LossRate())
		})
	}
}

func TestQualifies(t *testing.T) {
	base := Measurement{Sent: 4, Received: 4, AvgDelayMs: 50, Colo: "SJC"}

	assert.True(t, base.Qualifies(0, 2000, 1.0, nil), "defaults should admit")

	unreceived := Measurement{Sent: 4, Received: 0, AvgDelayMs: 0}
	assert.False(t, unreceived.Qualifies(0, 2000, 1.0, nil), "zero Received never qualifies")

	tooSlow := Measurement{Sent: 4, Received: 4, AvgDelayMs: 3000}
	assert.False(t, tooSlow.Qualifies(0, 2000, 1.0, nil), "above delayMax should be rejected")

	tooFast := Measurement{Sent: 4, Received: 4, AvgDelayMs: 5}
	assert.False(t, tooFast.Qualifies(10, 2000, 1.0, nil), "below delayMin should be rejected")

	lossy := Measurement{Sent: 4, Received: 1, AvgDelayMs: 50}
	assert.False(t, lossy.Qualifies(0, 2000, 0.5, nil), "loss above lossMax should be rejected")

	allowed := map[string]struct{}{"SJC": {}}
	assert.True(t, base.Qualifies(0, 2000, 1.0, allowed), "colo in allowed set should admit")

	disallowed := map[string]struct{}{"LAX": {}}
	assert.False(t, base.Qualifies(0, 2000, 1.0, disallowed), "colo outside allowed set should reject")
}

func mbs(v float64) *float64 { return &v }

func TestLess(t *testing.T) {
	fast := Measurement{DownloadMBs: mbs(50), AvgDelayMs: 20}
	slow := Measurement{DownloadMBs: mbs(10), AvgDelayMs: 20}
	noSpeed := Measurement{DownloadMBs: nil, AvgDelayMs: 5}

	assert.True(t, Less(fast, slow), "higher DownloadMBs ranks first")
	assert.False(t, Less(slow, fast))
	assert.True(t, Less(slow, noSpeed), "any Some ranks above None regardless of delay")
	assert.False(t, Less(noSpeed, slow))

	sameSpeedLowerDelay := Measurement{DownloadMBs: mbs(50), AvgDelayMs: 5}
	assert.True(t, Less(sameSpeedLowerDelay, fast), "tie on speed breaks on delay ascending")

	tie := Measurement{DownloadMBs: mbs(50), AvgDelayMs: 20, Sent: 4, Received: 4}
	tieLossier := Measurement{DownloadMBs: mbs(50), AvgDelayMs: 20, Sent: 4, Received: 2}
	assert.True(t, Less(tie, tieLossier), "tie on speed and delay breaks on loss rate ascending")
}

func TestDelayLess(t *testing.T) {
	low := Measurement{AvgDelayMs: 10, Sent: 4, Received: 4}
	high := Measurement{AvgDelayMs: 50, Sent: 4, Received: 4}
	assert.True(t, DelayLess(low, high))
	assert.False(t, DelayLess(high, low))

	tieA := Measurement{AvgDelayMs: 10, Sent: 4, Received: 4}
	tieB := Measurement{AvgDelayMs: 10, Sent: 4, Received: 2}
	assert.True(t, DelayLess(tieA, tieB), "equal delay breaks on loss rate")
}
