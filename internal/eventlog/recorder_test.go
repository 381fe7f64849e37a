package eventlog

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/lirancohen/portal/internal/bridge"
	"github.com/lirancohen/portal/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setup(t *testing.T, cfg Config) (*Recorder, *bridge.Bus) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate())

	bus := bridge.NewBus(discard)
	b := bridge.New(nil, bus, discard)
	r := New(database, b, cfg, discard)
	r.Start()
	return r, bus
}

func TestRecorder(t *testing.T) {
	t.Run("records the normalized payload", func(t *testing.T) {
		r, bus := setup(t, Config{Events: []string{"ScoreChanged"}})

		bus.Dispatch(&bridge.Event{Type: "ScoreChanged", Detail: map[string]any{"arr": []any{1, 2, 3}}})

		events, err := r.List("", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "ScoreChanged", events[0].Name)
		assert.Equal(t, "[1,2,3]", events[0].Payload)
	})

	t.Run("records the raw event without arr", func(t *testing.T) {
		r, bus := setup(t, Config{Events: []string{"GameOver"}})

		bus.Dispatch(&bridge.Event{Type: "GameOver", Detail: map[string]any{"score": 7}})

		events, err := r.List("GameOver", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.JSONEq(t, `{"type":"GameOver","detail":{"score":7}}`, events[0].Payload)
	})

	t.Run("ignores unconfigured events", func(t *testing.T) {
		r, bus := setup(t, Config{Events: []string{"ScoreChanged", ""}})

		bus.Dispatch(&bridge.Event{Type: "Other"})

		events, err := r.List("", 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("keeps a bounded history", func(t *testing.T) {
		r, bus := setup(t, Config{Events: []string{"Tick"}, Keep: 2})

		for i := 0; i < 5; i++ {
			bus.Dispatch(&bridge.Event{Type: "Tick", Detail: map[string]any{"arr": []any{i}}})
		}

		events, err := r.List("", 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "[4]", events[0].Payload)
		assert.Equal(t, "[3]", events[1].Payload)
	})

	t.Run("stop removes listeners", func(t *testing.T) {
		r, bus := setup(t, Config{Events: []string{"Tick"}})
		assert.Equal(t, 1, bus.ListenerCount("Tick"))

		r.Stop()
		assert.Equal(t, 0, bus.ListenerCount("Tick"))

		bus.Dispatch(&bridge.Event{Type: "Tick"})
		events, err := r.List("", 10)
		require.NoError(t, err)
		assert.Empty(t, events)

		// Start again re-registers exactly once
		r.Start()
		r.Start()
		assert.Equal(t, 1, bus.ListenerCount("Tick"))
	})
}
