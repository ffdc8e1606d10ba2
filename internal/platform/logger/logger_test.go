package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNew(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	require.NotNil(t, l)

	child := l.With(String("component", "test"))
	assert.NotSame(t, l, child)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Debug("debug")
	l.Info("info", Int("n", 1))
	l.Warn("warn", Err(errors.New("boom")))
	l.Error("error", Bool("ok", false))
	_ = l.Sync()
}
