package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slate/pkg/adapters/fs"
	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/store"
)

func setupBackend(t *testing.T) (*fs.Backend, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	b := fs.NewBackend(fs.Config{Path: dir})
	require.NoError(t, b.Initialize(context.Background()))
	return b, dir
}

func TestBackend_GetSet(t *testing.T) {
	ctx := context.Background()
	b, dir := setupBackend(t)

	_, ok, err := b.Get(ctx, "slate.roles")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "slate.roles", `[{"code":"A"}]`))

	v, ok, err := b.Get(ctx, "slate.roles")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"code":"A"}]`, v)

	_, err = os.Stat(filepath.Join(dir, "slate.roles.json"))
	assert.NoError(t, err)
}

func TestBackend_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	b, _ := setupBackend(t)

	for _, key := range []string{"", "../escape", "a/b", ".hidden", "sp ace"} {
		assert.ErrorIs(t, b.Set(ctx, key, "x"), core.ErrInvalidKey, key)
		_, _, err := b.Get(ctx, key)
		assert.ErrorIs(t, err, core.ErrInvalidKey, key)
	}
}

func TestBackend_MustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	b := fs.NewBackend(fs.Config{Path: missing, MustExist: true})
	assert.Error(t, b.Initialize(context.Background()))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	b = fs.NewBackend(fs.Config{Path: file, MustExist: true})
	assert.Error(t, b.Initialize(context.Background()))
}

func TestBackend_CustomExt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := fs.NewBackend(fs.Config{Path: dir, Ext: ".yaml"})
	require.NoError(t, b.Set(ctx, "slate.users", "- code: A\n"))

	_, err := os.Stat(filepath.Join(dir, "slate.users.yaml"))
	assert.NoError(t, err)

	key, ok := b.KeyFor(filepath.Join(dir, "slate.users.yaml"))
	assert.True(t, ok)
	assert.Equal(t, "slate.users", key)

	_, ok = b.KeyFor(filepath.Join(dir, "slate.users.json"))
	assert.False(t, ok)
}

// The store's corrupt-slot recovery over real files: a hand-edited broken
// file serves the default and stays as it was.
func TestBackend_CorruptFileThroughStore(t *testing.T) {
	ctx := context.Background()
	b, dir := setupBackend(t)
	path := filepath.Join(dir, "slate.roles.json")
	require.NoError(t, os.WriteFile(path, []byte("[{broken"), 0644))

	s := store.New(store.Config{Backend: b})
	def := []core.Role{{Code: "ADMIN_ROOT"}}
	got, err := store.Load(ctx, s, "slate.roles", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[{broken", string(raw))
}

func TestBackend_RoundTripAcrossStores(t *testing.T) {
	ctx := context.Background()
	b, dir := setupBackend(t)

	first := store.New(store.Config{Backend: b})
	want := []core.Role{{Code: "A", Name: "a"}, {Code: "B", Name: "b"}}
	require.NoError(t, store.Update(ctx, first, "slate.roles", want))

	second := store.New(store.Config{Backend: fs.NewBackend(fs.Config{Path: dir})})
	got, err := store.Load(ctx, second, "slate.roles", []core.Role(nil))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBackend_Watch(t *testing.T) {
	b, dir := setupBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Watch(ctx, "slate.*")
	require.NoError(t, err)

	// Not a slot of interest.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0644))
	// Written by "another process".
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slate.roles.json"), []byte("[]"), 0644))

	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "events channel closed early")
			require.Equal(t, "slate.roles", e.Key, "unexpected event %s", e)
			assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, e.Type)

			state := b.State().(fs.BackendState)
			assert.True(t, state.WatcherActive)
			return
		case <-timeout:
			t.Fatal("timeout waiting for watch event")
		}
	}
}

func TestBackend_WatchClosesOnCancel(t *testing.T) {
	b, _ := setupBackend(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := b.Watch(ctx, "*")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(3 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestBackend_WatchInvalidPattern(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.Watch(context.Background(), "[")
	assert.Error(t, err)
}

func TestBackend_State(t *testing.T) {
	ctx := context.Background()
	b, dir := setupBackend(t)

	state := b.State().(fs.BackendState)
	assert.Equal(t, dir, state.Path)
	assert.Equal(t, ".json", state.Ext)
	assert.Nil(t, state.LastWrite)

	require.NoError(t, b.Set(ctx, "k", "v"))
	state = b.State().(fs.BackendState)
	assert.NotNil(t, state.LastWrite)
	assert.Equal(t, "fs", b.ComponentType())
}
