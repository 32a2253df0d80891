package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewAndWith(t *testing.T) {
	logger := New("debug")
	assert.NotNil(t, logger)

	child := logger.With("component", "test")
	assert.NotNil(t, child)
	assert.NotSame(t, logger.Logger, child.Logger)
}

func TestDefault(t *testing.T) {
	assert.NotNil(t, Default())
}
