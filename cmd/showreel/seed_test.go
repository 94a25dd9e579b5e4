package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/docstore"
)

const seedYAML = `
site_content:
  en:
    heroTitle: "JANE\nDOE"
    clients: [Acme, Globex]
projects:
  - title: Launch film
    category: Tijorat
    stats: 1.2M views
  - title: Daily reel
    category: Reels
process:
  - {step: "02", title: Shoot}
  - {step: "01", title: Brief}
equipment:
  - title: Camera
    items: [Sony FX3, DJI RS3]
`

func newSeedHub(t *testing.T) (*docstore.Hub, *content.Editor) {
	t.Helper()
	store, err := docstore.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	hub := docstore.NewHub(store, nil)
	t.Cleanup(func() {
		hub.Close()
		store.Close()
	})
	return hub, content.NewEditor(hub, nil)
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	hub, ed := newSeedHub(t)

	s, err := loadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	n, err := applySeed(ctx, hub, ed, s, false)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	st, err := content.Load(ctx, hub, content.English, content.ViewOptions{})
	require.NoError(t, err)
	require.Equal(t, "JANE\nDOE", st.Content.HeroTitle)
	require.Equal(t, []string{"Acme", "Globex"}, st.Content.Clients)
	require.Len(t, st.Projects, 2)
	require.Equal(t, "01", st.Process[0].Step)
	require.Equal(t, []string{"Sony FX3", "DJI RS3"}, st.Equipment[0].Items)

	// reset replaces instead of appending
	_, err = applySeed(ctx, hub, ed, s, true)
	require.NoError(t, err)
	projects, err := hub.List(ctx, content.CollectionProjects)
	require.NoError(t, err)
	require.Len(t, projects, 2)
}

func TestLoadSeedRejectsUnknownInput(t *testing.T) {
	_, err := loadSeed(strings.NewReader("site_content:\n  de:\n    heroTitle: Hallo\n"))
	require.Error(t, err)

	_, err = loadSeed(strings.NewReader("videos: []\n"))
	require.Error(t, err)
}

func TestApplySeedValidates(t *testing.T) {
	hub, ed := newSeedHub(t)
	s, err := loadSeed(strings.NewReader("projects:\n  - title: Film\n    category: Cinema\n"))
	require.NoError(t, err)
	_, err = applySeed(context.Background(), hub, ed, s, false)
	require.ErrorIs(t, err, content.ErrInvalidInput)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLogLevel("debug").String())
	require.Equal(t, "WARN", parseLogLevel("Warning").String())
	require.Equal(t, "INFO", parseLogLevel("").String())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SHOWREEL_ADDR", ":8080")
	t.Setenv("SHOWREEL_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SHOWREEL_LOGIN_WINDOW", "2m")

	c, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Addr)
	require.Equal(t, "redis://localhost:6379/0", c.Redis.URL)
	require.Equal(t, docstore.DefaultChannel, c.Redis.Channel)
	require.Equal(t, 2*time.Minute, c.Login.Window)

	site := c.siteConfig()
	require.Equal(t, c.Redis.URL, site.RedisURL)
	require.Equal(t, 5, site.LoginMaxAttempts)
}
