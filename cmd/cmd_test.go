package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"portfolio/devserver/database"
)

const fixtureAnalytics = `{
  "events": [
    {"event": "page_view", "page": "/", "timestamp": 1760000000000, "visitor_hash": "v1", "ip_hash": "i1"},
    {"event": "audio_play", "page": "/music.html", "timestamp": 1760000001000, "visitor_hash": "v1", "ip_hash": "i1"},
    {"event": "page_view", "page": "/music.html", "timestamp": 1760000002000, "visitor_hash": "v2", "ip_hash": "i2"}
  ],
  "dailyStats": {},
  "totalVisits": 1234
}`

const fixtureTracks = `[
  {"id": "amorak", "title": "Amorak", "artist": "Igor", "tags": ["game"], "year": 2024, "sources": [{"url": "assets/audio/amorak.mp3"}]},
  {"id": "akantilado", "title": "Akantilado", "tags": ["film"]}
]`

// newWorkspace lays out a site root with fixtures and a config file pointing
// at it, returning the config path.
func newWorkspace(t *testing.T, extraYAML string) (string, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "analytics.json"), []byte(fixtureAnalytics), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "js", "tracks.json"), []byte(fixtureTracks), 0o644))

	yml := fmt.Sprintf("root_dir: %q\nanalytics_file: %q\ntimezone: UTC\n%s",
		root, filepath.Join(root, "analytics.json"), extraYAML)
	cfgPath := filepath.Join(root, "devserver.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yml), 0o644))
	return root, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCounterCommand(t *testing.T) {
	_, cfgPath := newWorkspace(t, "")

	out, err := run(t, "--config", cfgPath, "counter")
	require.NoError(t, err)
	assert.Equal(t, "Total visits: 1,234\n", out)
}

func TestSummaryCommand(t *testing.T) {
	_, cfgPath := newWorkspace(t, "")

	out, err := run(t, "--config", cfgPath, "summary", "--range", "30d")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "real_data"`)
	assert.Contains(t, out, `"totalVisits": 1234`)

	_, err = run(t, "--config", cfgPath, "summary", "--range", "1y")
	assert.ErrorContains(t, err, "invalid range")
}

func TestTracksCommand(t *testing.T) {
	_, cfgPath := newWorkspace(t, "")

	out, err := run(t, "--config", cfgPath, "tracks", "game")
	require.NoError(t, err)
	assert.Contains(t, out, `Tracks with tag "game":`)
	assert.Contains(t, out, "1. Amorak")
	assert.Contains(t, out, "Audio: assets/audio/amorak.mp3")
	assert.NotContains(t, out, "Akantilado")
	assert.Contains(t, out, "Available tags: film, game")

	out, err = run(t, "--config", cfgPath, "tracks")
	require.NoError(t, err)
	assert.Contains(t, out, "All tracks (2 total):")
	assert.Contains(t, out, "Artist: Unknown")
}

func TestHashpwCommand(t *testing.T) {
	_, cfgPath := newWorkspace(t, "")

	out, err := run(t, "--config", cfgPath, "hashpw", "hunter2")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
}

func TestMirrorCommand(t *testing.T) {
	root, cfgPath := newWorkspace(t, "")
	_, err := run(t, "--config", cfgPath, "mirror", "--event", "")
	assert.ErrorContains(t, err, "no sinks configured")

	dbPath := filepath.Join(root, "mirror.db")
	_, cfgPath = newWorkspace(t, fmt.Sprintf("sinks:\n  sqlite:\n    path: %q\n", dbPath))

	out, err := run(t, "--config", cfgPath, "mirror", "--event", "page_view")
	require.NoError(t, err)
	assert.Equal(t, "Mirrored 2 events to 1 sinks\n", out)

	client, err := database.NewSQLiteDB(context.Background(), dbPath, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	var n int
	require.NoError(t, client.DB.QueryRow("SELECT COUNT(*) FROM analytics").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestInvalidConfigRejected(t *testing.T) {
	_, cfgPath := newWorkspace(t, "gin_mode: loud\n")

	_, err := run(t, "--config", cfgPath, "counter")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestBareCommandServes(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	_, cfgPath := newWorkspace(t, fmt.Sprintf("port: %d\ngin_mode: test\n", port))

	_, err = run(t, "--config", cfgPath)
	assert.ErrorContains(t, err, "dev server failed to start")
}
