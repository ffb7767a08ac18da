package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"-a", "http://10.0.0.1:8000", "-t", "30", "-o", "out"},
			expected: &Config{ServerURL: "http://10.0.0.1:8000", RequestTimeout: 30 * time.Second, ReportsDir: "out"}},
		{name: "config flag ignored", args: []string{"-c", "x.json", "-o", "out"},
			expected: &Config{ServerURL: "http://127.0.0.1:8000", RequestTimeout: 10 * time.Second, ReportsDir: "out"}},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			cfg := &Config{}
			cfg.LoadDefaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
