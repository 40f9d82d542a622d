package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, getLogLevel(in), in)
	}
}

func TestJSONOutputInReleaseMode(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")
	log.WithComponent("payments").LogWebhookSkipped(context.Background(), "evt_1", "payment_intent.payment_failed", "no booking reference")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Payment Webhook Skipped", record["msg"])
	assert.Equal(t, "payments", record["component"])
	assert.Equal(t, "evt_1", record["event_id"])
	assert.Equal(t, "no booking reference", record["reason"])
}

func TestLevelFiltering(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "error")
	log.LogBookingCreated(context.Background(), "BK-2025-ABC123", "act_1", "guest_1")
	assert.Empty(t, buf.String())

	log.LogBookingFailed(context.Background(), "BK-2025-ABC123", "guest_1", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}
