package dictionary_test

import (
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/require"

	"foamdict/pkg/dictionary"
)

// testConfig returns a configuration whose log output is captured in memory
func testConfig() (*dictionary.Config, *memory.Handler) {
	h := memory.New()
	cfg := dictionary.DefaultConfig()
	cfg.Logger = &log.Logger{Handler: h, Level: log.DebugLevel}
	return cfg, h
}

func mustParse(t *testing.T, text string) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.Parse("test", text, nil)
	require.NoError(t, err)
	return d
}

func mustParseWith(t *testing.T, text string, cfg *dictionary.Config) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.Parse("test", text, cfg)
	require.NoError(t, err)
	return d
}

func entriesAt(h *memory.Handler, level log.Level) []*log.Entry {
	var out []*log.Entry
	for _, e := range h.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
