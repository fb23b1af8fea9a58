package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), "a", 1))
	require.NoError(t, r.Publish(context.Background(), "b", 2))

	got := r.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Topic)
	assert.Equal(t, 2, got[1].Payload)
}

func TestNewAMQPPublisher_BadURL(t *testing.T) {
	_, err := NewAMQPPublisher("not-a-url")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), "x", nil))
	assert.NoError(t, Noop{}.Close())
}
