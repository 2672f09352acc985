package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lorrc/triage-desk/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewLogger_AddsServiceAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{
		Level:       "info",
		Format:      "json",
		Output:      &buf,
		ServiceName: "triage-desk",
		Environment: "test",
	})

	ctx := logging.WithRequestID(context.Background(), "req-1")
	ctx = logging.WithTicketID(ctx, "42")
	ctx = logging.WithOperation(ctx, "status")
	logger.InfoContext(ctx, "ticket updated")
	logger.Debug("hidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "triage-desk", lines[0]["service"])
	assert.Equal(t, "test", lines[0]["environment"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "42", lines[0]["ticket_id"])
	assert.Equal(t, "status", lines[0]["operation"])

	_, err := time.Parse(time.RFC3339Nano, lines[0]["time"].(string))
	assert.NoError(t, err)
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewLogger(logging.Config{Format: "json", Output: &buf})

	logger := logging.LoggerFromContext(logging.WithTicketID(context.Background(), "7"), base)
	logger.Info("scoped")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "7", lines[0]["ticket_id"])
	assert.Equal(t, "", logging.GetRequestID(context.Background()))
}

func TestHTTPRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			l := &logging.HTTPRequestLogger{Logger: logging.NewLogger(logging.Config{Format: "json", Output: &buf})}
			l.LogRequest(context.Background(), logging.RequestInfo{Method: "GET", Path: "/x", StatusCode: tt.status})

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.level, lines[0]["level"])
		})
	}
}
