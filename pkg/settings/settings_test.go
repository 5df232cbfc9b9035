package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	assert.Equal(t, &Run{OutputFormat: "yaml"}, got)
}

func TestContextRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		settings *Run
	}{
		{name: "empty", settings: &Run{}},
		{name: "with values", settings: &Run{NoColor: true, OutputFormat: "json", Window: Window{Limit: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.settings)
			got, ok := FromContext(ctx)
			require.True(t, ok)
			assert.Same(t, tt.settings, got)
			assert.Same(t, tt.settings, FromContextOrDefault(ctx))
		})
	}
}

func TestFromContextMissing(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, "yaml", FromContextOrDefault(context.Background()).OutputFormat)
}
