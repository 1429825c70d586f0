package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopSinkDiscards(t *testing.T) {
	var sink ProgressSink = NoopSink{}
	assert.NotPanics(t, func() { sink.Report(Progress{Attempted: 1}) })
}

func TestFuncSinkInvokesFunc(t *testing.T) {
	var got Progress
	var sink ProgressSink = FuncSink(func(p Progress) { got = p })
	sink.Report(Progress{Attempted: 5, Qualified: 2})
	assert.Equal(t, int64(5), got.Attempted)
	assert.Equal(t, int64(2), got.Qualified)
}
