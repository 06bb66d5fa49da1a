package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesTerminalAndJSON(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	l, err := New(Options{Dir: dir, Prefix: "test", Output: &out})
	require.NoError(t, err)

	l.LogOrder("CREATE", "order-1", "pending order stored")
	l.Close()

	assert.Contains(t, out.String(), "[CREATE] order-1 - pending order stored")

	files, err := filepath.Glob(filepath.Join(dir, "test-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "ORDER", entry.Category)
	assert.Equal(t, "logger_test.go", entry.File)
}

func TestLoggerMinLevel(t *testing.T) {
	var out bytes.Buffer
	l, err := New(Options{Output: &out, MinLevel: WARN})
	require.NoError(t, err)

	l.Info("APP", "hidden")
	l.Warn("APP", "shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Error("APP", "nothing to see")
		l.Close()
	})
}

func TestMiddlewareLogsStatus(t *testing.T) {
	var out bytes.Buffer
	l, err := New(Options{Output: &out})
	require.NoError(t, err)

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/ticket/quote", nil))

	assert.Contains(t, out.String(), "POST /api/ticket/quote - 418")
}
