package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDefaults(t *testing.T) Config {
	t.Helper()
	v := viper.New()
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestDefaultsDecode(t *testing.T) {
	cfg := decodeDefaults(t)

	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, "posts.json", cfg.Manifest)
	assert.Equal(t, "post", cfg.PostsDir)
	assert.Equal(t, 5, cfg.RecentLimit)
	assert.Equal(t, "filename", cfg.TieBreak)
	assert.True(t, cfg.EscapeText)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("unknown tie-break", func(t *testing.T) {
		cfg := decodeDefaults(t)
		cfg.TieBreak = "shuffle"
		assert.ErrorContains(t, cfg.Validate(), "tieBreak")
	})

	t.Run("negative recent limit", func(t *testing.T) {
		cfg := decodeDefaults(t)
		cfg.RecentLimit = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative concurrency", func(t *testing.T) {
		cfg := decodeDefaults(t)
		cfg.Concurrency = -2
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing output dir", func(t *testing.T) {
		cfg := decodeDefaults(t)
		cfg.OutputDir = ""
		assert.Error(t, cfg.Validate())
	})
}
