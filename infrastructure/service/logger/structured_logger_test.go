package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fleetlog/fleetlog/pkg/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestStructuredLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "debug", Format: "json", ServiceName: "fleetlog", Output: &buf})

	ctx := requestctx.WithCorrelationID(context.Background(), "cid-1")
	log.Error(ctx, "resolve failed", errors.New("boom"), map[string]interface{}{"request_id": 7})

	line := decodeLine(t, &buf)
	assert.Equal(t, "resolve failed", line["msg"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "cid-1", line["correlation_id"])
	assert.Equal(t, "fleetlog", line["service"])
	assert.EqualValues(t, 7, line["request_id"])
	assert.Contains(t, line["caller"], "structured_logger_test.go")
}

func TestStructuredLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown", nil)
	assert.NotZero(t, buf.Len())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewStructuredLogger(LoggerConfig{Level: "info", Format: "json", Output: &buf})

	base.WithFields(map[string]interface{}{"component": "notify"}).Info(context.Background(), "sent", nil)

	assert.Equal(t, "notify", decodeLine(t, &buf)["component"])
}

func TestLogWorkflowEvent(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "info", Format: "json", Output: &buf})

	LogWorkflowEvent(context.Background(), log, "request_approved", 12, 1, map[string]interface{}{"type": "DRIVER_UPDATE"})

	line := decodeLine(t, &buf)
	assert.Equal(t, "workflow", line["event_type"])
	assert.Equal(t, "request_approved", line["workflow_event"])
	assert.EqualValues(t, 12, line["request_id"])
	assert.EqualValues(t, 1, line["actor_id"])
	assert.Equal(t, "DRIVER_UPDATE", line["type"])
}

func TestLogAuthEvent_FailureIsWarning(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructuredLogger(LoggerConfig{Level: "info", Format: "json", Output: &buf})

	LogAuthEvent(context.Background(), log, "login_failed", "3", "10.0.0.1", false, nil)

	line := decodeLine(t, &buf)
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, false, line["success"])
}
