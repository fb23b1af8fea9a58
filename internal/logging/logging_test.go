package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "debug", "json"))
	t.Cleanup(func() { _ = Setup(&bytes.Buffer{}, "info", "text") })

	log.WithField("op", "reply").Debug("model call")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "model call", entry["msg"])
	assert.Equal(t, "reply", entry["op"])
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "warn", "text"))
	t.Cleanup(func() { _ = Setup(&bytes.Buffer{}, "info", "text") })

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_RejectsBadInput(t *testing.T) {
	assert.Error(t, Setup(&bytes.Buffer{}, "loud", "text"))
	assert.Error(t, Setup(&bytes.Buffer{}, "info", "xml"))
}
