package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igapi/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug json", &config.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"empty level defaults to info", &config.LoggingConfig{}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "igapi.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
			if tt.cfg.File != "" {
				_, statErr := os.Stat(tt.cfg.File)
				assert.NoError(t, statErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	l, err := New(&config.LoggingConfig{Level: "info"})
	require.NoError(t, err)

	parent := l.(*zerologLogger)
	child := parent.WithField("username", "alice").(*zerologLogger)

	assert.Empty(t, parent.fields)
	assert.Equal(t, "alice", child.fields["username"])
	assert.Same(t, l, l.WithError(nil))
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()
	boom := errors.New("boom")

	tl.WithField("username", "alice").WithError(boom).Warn("skipping post")
	tl.InfoWithFields("fetched", map[string]interface{}{"count": 3})

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "WARN", msgs[0].Level)
	assert.Equal(t, "alice", msgs[0].Fields["username"])
	assert.Equal(t, boom, msgs[0].Error)
	assert.Equal(t, 3, msgs[1].Fields["count"])

	assert.True(t, tl.HasMessage("skipping post"))
	assert.Len(t, tl.GetMessagesByLevel("INFO"), 1)

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestLogRequestLevels(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "/api/v1/health", 200, 3*time.Millisecond, "req-1")
	LogRequest(tl, "GET", "/api/v1/profile/x y", 400, time.Millisecond, "")
	LogRequest(tl, "GET", "/api/v1/posts/alice", 503, time.Millisecond, "")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "INFO", msgs[0].Level)
	assert.Equal(t, "req-1", msgs[0].Fields["request_id"])
	assert.Equal(t, 3.0, msgs[0].Fields["duration_ms"])
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.NotContains(t, msgs[1].Fields, "request_id")
	assert.Equal(t, "ERROR", msgs[2].Level)
}
