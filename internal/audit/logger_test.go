package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) Entry {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &wrapper), "output: %s", buf.String())

	raw, ok := wrapper["audit"]
	require.True(t, ok, "no 'audit' field in %s", buf.String())

	var entry Entry
	require.NoError(t, json.Unmarshal(raw, &entry))
	return entry
}

func TestLoggerLogSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithZerolog(zerolog.New(&buf))

	logger.LogSuccess("user.deleted", "01HYX3KQW7ERTV9XNBM2P8QJZF", "user", "01HYX3KQW7ERTV9XNBM2P8QJZG", "10.0.0.1", map[string]string{"username": "ana"})

	entry := decodeEntry(t, &buf)
	require.Equal(t, "user.deleted", entry.Action)
	require.Equal(t, "01HYX3KQW7ERTV9XNBM2P8QJZF", entry.Actor)
	require.Equal(t, "user", entry.ResourceType)
	require.Equal(t, "success", entry.Status)
	require.Equal(t, "ana", entry.Details["username"])
	require.False(t, entry.Timestamp.IsZero())
}

func TestLoggerLogFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithZerolog(zerolog.New(&buf))

	logger.LogFailure("user.password_reset", "ana", "", nil)

	entry := decodeEntry(t, &buf)
	require.Equal(t, "failure", entry.Status)
	require.Equal(t, "ana", entry.Actor)
}

func TestNilLoggerIsNoop(t *testing.T) {
	var logger *Logger
	logger.LogSuccess("noop", "", "", "", "", nil)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.10:4321"
	require.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	require.Equal(t, "203.0.113.5", ClientIP(req))
}

func TestIPAddressContext(t *testing.T) {
	ctx := WithIPAddress(context.Background(), "203.0.113.5")
	require.Equal(t, "203.0.113.5", IPAddress(ctx))
	require.Empty(t, IPAddress(context.Background()))
}
