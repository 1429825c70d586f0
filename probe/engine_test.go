package probe

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekobres/edgerank/model"
)

func TestRunningAverage(t *testing.T) {
	avg := runningAverage(0, 1, 10)
	assert.Equal(t, float64(10), avg)

	avg = runningAverage(avg, 2, 20)
	assert.Equal(t, float64(15), avg)

	avg = runningAverage(avg, 3, 30)
	assert.InDelta(t, 20, avg, 0.0001)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2345))
	assert.Equal(t, 1.24, round2(1.236))
	assert.Equal(t, float64(0), round2(0))
}

func TestDelaySetAddAndSort(t *testing.T) {
	d := &DelaySet{}
	assert.Equal(t, 0, d.Len())

	addr := netip.MustParseAddr("198.51.100.1")
	d.Add(model.Measurement{Endpoint: model.Endpoint{Addr: addr}, AvgDelayMs: 50, Sent: 4, Received: 4})
	d.Add(model.Measurement{Endpoint: model.Endpoint{Addr: addr}, AvgDelayMs: 10, Sent: 4, Received: 4})
	d.Add(model.Measurement{Endpoint: model.Endpoint{Addr: addr}, AvgDelayMs: 30, Sent: 4, Received: 4})
	require.Equal(t, 3, d.Len())

	sorted := d.SortedByDelay()
	require.Len(t, sorted, 3)
	assert.Equal(t, 10.0, sorted[0].AvgDelayMs)
	assert.Equal(t, 30.0, sorted[1].AvgDelayMs)
	assert.Equal(t, 50.0, sorted[2].AvgDelayMs)
}
