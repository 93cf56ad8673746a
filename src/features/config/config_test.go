package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("MONKEYPRESS_DB_PATH", filepath.Join(dir, "data", "site.db"))

	m, err := Load(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config must be written")
	assert.Equal(t, 2, m.Get().Listing.Features)
	assert.Equal(t, filepath.Join(dir, "data", "site.db"), m.Get().Database.Path)

	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.NoError(t, err, "database directory must exist")
}

func TestParse_FillsMissingPageSizes(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
database:
  path: ./site.db
listing:
  reviews: 5
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Listing.Reviews)
	assert.Equal(t, 2, cfg.Listing.Features)
	assert.Equal(t, 10, cfg.Listing.Authors)
	assert.Equal(t, "Monkeypress", cfg.Site.Name)
	assert.Equal(t, uint32(3535), cfg.Server.Port)
}

func TestParse_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing database path", "site:\n  name: x\n"},
		{"negative page size", "database:\n  path: a.db\nlisting:\n  news: -1\n"},
		{"unknown log level", "database:\n  path: a.db\nlogger:\n  level: loud\n"},
		{"not yaml", "database: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_TelegramTokenFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	cfg, err := Parse(strings.NewReader("database:\n  path: a.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)

	m := NewManager(cfg)
	assert.NotContains(t, m.GetYAML(), "123:abc")
	assert.NotContains(t, m.GetJSON(), "123:abc")
}

func TestListingPageSize(t *testing.T) {
	l := createDefaultConfig().Listing
	assert.Equal(t, 2, l.PageSize("features"))
	assert.Equal(t, 10, l.PageSize("reviews"))
	assert.Equal(t, defaultPageSize, l.PageSize("podcasts"))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: a.db\n"), 0644))

	cfg, err := readFile(path)
	require.NoError(t, err)
	m := NewManager(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := Watch(ctx, path, m)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: a.db\nlisting:\n  reviews: 3\n"), 0644))
	assert.Eventually(t, func() bool {
		return m.Get().Listing.Reviews == 3
	}, 5*time.Second, 50*time.Millisecond)

	// An invalid file keeps the running configuration.
	require.NoError(t, os.WriteFile(path, []byte("listing:\n  reviews: 7\n"), 0644))
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, 3, m.Get().Listing.Reviews)
}
