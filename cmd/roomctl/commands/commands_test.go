package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/repository"
	"github.com/noah-isme/peerroom-api/pkg/config"
)

func useMemoryApp(t *testing.T) {
	t.Helper()
	color.NoColor = true
	cfg := &config.Config{StorageDriver: config.StorageMemory, Rooms: config.RoomsConfig{DraftTTL: time.Hour, PlaceholderImage: "/static/p.png"}}
	backends, err := repository.OpenBackends(context.Background(), cfg, nil)
	require.NoError(t, err)
	shared := newApp(cfg, zap.NewNop(), backends)

	original := openApp
	openApp = func(context.Context) (*app, error) { return shared, nil }
	t.Cleanup(func() { openApp = original })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSeedThenList(t *testing.T) {
	useMemoryApp(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 4 events and 2 rooms")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	out, err = run(t, "rooms", "list", "--sort", "enrolled")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ENROLLED")
	assert.Contains(t, lines[1], "UI/UX Design")
	assert.Contains(t, lines[2], "Cybersecurity 101")
	assert.Contains(t, lines[3], "2 rooms")
}

func TestEventsDayAndExport(t *testing.T) {
	useMemoryApp(t)
	_, err := run(t, "seed")
	require.NoError(t, err)

	out, err := run(t, "events", "day", "2026-02-18")
	require.NoError(t, err)
	assert.Contains(t, out, "Connect with mentor")

	out, err = run(t, "events", "day", "2026-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "no events on 2026-03-01")

	out, err = run(t, "events", "export", "--from", "2026-02-01", "--to", "2026-02-28", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Equal(t, 4, strings.Count(out, "BEGIN:VEVENT"))
}

func TestMigrateNeedsPostgres(t *testing.T) {
	useMemoryApp(t)

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER=postgres")
}

func TestPrintTableDropsExtraCells(t *testing.T) {
	color.NoColor = true
	buf := &bytes.Buffer{}

	require.NotPanics(t, func() {
		printTable(buf, []string{"ID", "NAME"}, [][]string{{"r-1", "Go 101", "surplus"}, {"r-2"}})
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Go 101")
	assert.NotContains(t, buf.String(), "surplus")
	assert.Contains(t, lines[2], "r-2")
}
