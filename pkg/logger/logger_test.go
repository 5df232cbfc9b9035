package logger

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "chatty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int8(tt.want), got)
		})
	}
}

func TestGetReturnsSameInstance(t *testing.T) {
	l1 := Get(0)
	l2 := Get(-1)
	require.NotNil(t, l1)
	assert.Same(t, l1, l2)
}

func TestGetReturnsNoopWhenUninitialized(t *testing.T) {
	Get(0)
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Get(0))
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	l := Get(0)
	withL := WithLogger(ctx, l)
	assert.Same(t, l, withL.Value(loggerContextKey{}))
	assert.Equal(t, withL, WithLogger(withL, l))

	other := logr.Discard()
	replaced := WithLogger(withL, &other)
	assert.Same(t, &other, FromContext(replaced))
}

func TestFromContextFallbacks(t *testing.T) {
	global := Get(0)
	assert.Same(t, global, FromContext(context.Background()))

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestForCommandTagsLogger(t *testing.T) {
	var lines []string
	l := funcr.New(func(prefix, args string) { lines = append(lines, args) }, funcr.Options{})
	ctx := WithLogger(context.Background(), &l)

	ForCommand(ctx, "filter").Info("done")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"command"="filter"`)
}

func TestSyncWithoutLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}
