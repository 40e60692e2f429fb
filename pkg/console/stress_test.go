package console_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slate/pkg/adapters/fs"
	"github.com/aretw0/slate/pkg/adapters/memory"
	"github.com/aretw0/slate/pkg/console"
	"github.com/aretw0/slate/pkg/store"
)

// TestConcurrency_CreateUnderNoise creates roles with the same name from many
// goroutines while another actor writes unrelated files into the slot
// directory and a watcher invalidates snapshots. Every role must survive
// with a distinct code.
func TestConcurrency_CreateUnderNoise(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	dir := t.TempDir()
	backend := fs.NewBackend(fs.Config{Path: dir, Logger: quietLogger()})
	require.NoError(t, backend.Initialize(context.Background()))
	svc := newService(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := svc.Watch(ctx)
	require.NoError(t, err)

	var bg sync.WaitGroup
	bg.Add(2)
	go func() {
		defer bg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				path := filepath.Join(dir, fmt.Sprintf("noise-%d.json", rand.Intn(10)))
				_ = os.WriteFile(path, []byte(`{"noise":true}`), 0644)
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			}
		}
	}()
	go func() {
		defer bg.Done()
		for range events {
		}
	}()

	const workers = 8
	const perWorker = 5
	var wg sync.WaitGroup
	codes := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				role, err := svc.CreateRole(context.Background(), console.RoleInput{Name: "Worker"})
				if !assert.NoError(t, err) {
					return
				}
				codes <- role.Code
			}
		}()
	}
	wg.Wait()
	close(codes)
	cancel()
	bg.Wait()

	seen := make(map[string]bool)
	for c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	require.Len(t, seen, workers*perWorker)
	assert.True(t, seen["WORKER"])
	assert.True(t, seen[fmt.Sprintf("WORKER_%d", workers*perWorker-1)])

	fresh := newService(backend)
	roles, err := fresh.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, len(console.DefaultRoles())+workers*perWorker)
}

// TestConcurrency_AssignKeepsEveryRole grants a distinct role to the same
// user from several goroutines at once; none of the grants may be lost.
func TestConcurrency_AssignKeepsEveryRole(t *testing.T) {
	ctx := context.Background()
	backend := fs.NewBackend(fs.Config{Path: t.TempDir(), Logger: quietLogger()})
	require.NoError(t, backend.Initialize(ctx))

	grants := []string{"ADMIN_ROOT", "PERM_VIEW_USERS", "PERM_CREATE_ROLE", "USER_STANDARD"}
	for round := 0; round < 20; round++ {
		svc := newService(backend)
		user, err := svc.CreateUser(ctx, console.UserInput{
			Name:  fmt.Sprintf("Round %d", round),
			Email: fmt.Sprintf("round%d@example.com", round),
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, role := range grants {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.AssignRoles(ctx, user.Code, role)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := newService(backend).GetUser(ctx, user.Code)
		require.NoError(t, err)
		require.ElementsMatch(t, grants, got.Roles, "round %d", round)
	}
}

// TestConcurrency_EmailStaysUnique submits the same email from many
// goroutines; exactly one user may get it.
func TestConcurrency_EmailStaysUnique(t *testing.T) {
	ctx := context.Background()
	var ids atomic.Int64
	svc := console.NewService(console.Config{
		Store:  store.New(store.Config{Backend: memory.New(), Logger: quietLogger()}),
		Logger: quietLogger(),
		NewID:  func() string { return fmt.Sprintf("id-%d", ids.Add(1)) },
	})

	const n = 32
	var wg sync.WaitGroup
	var created atomic.Int64
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateUser(ctx, console.UserInput{Name: "Clone", Email: "clone@example.com"})
			if err == nil {
				created.Add(1)
				return
			}
			var ve *console.ValidationError
			assert.ErrorAs(t, err, &ve)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load())
	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(console.DefaultUsers())+1)
}
