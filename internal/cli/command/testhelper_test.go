package command

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/server/cacheserver"
	"github.com/yndnr/microcache-go/internal/storage/memory"
)

type cacheEnv struct {
	addr  string
	srv   *cacheserver.Server
	store *memory.Store
	disp  *dispatch.Dispatcher
	pool  *dispatch.Pool
}

// startCache starts a cache server on a loopback port.
func startCache(t *testing.T) *cacheEnv {
	t.Helper()

	cfg := cacheserver.DefaultConfig()
	cfg.MaxConnections = 16

	store := memory.New()
	disp := dispatch.NewDispatcher()
	pool := dispatch.NewPool(disp, store, dispatch.WithSize(2))
	srv := cacheserver.New(cfg, disp, pool)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background(), ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		if err := <-errCh; err != nil && !errors.Is(err, cacheserver.ErrServerClosed) {
			t.Errorf("Serve() error = %v", err)
		}
	})
	return &cacheEnv{addr: ln.Addr().String(), srv: srv, store: store, disp: disp, pool: pool}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the application with args after isolating it from the
// user's configuration, history and environment.
func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return runCLIEnv(t, nil, stdin, args...)
}

func runCLIEnv(t *testing.T, env map[string]string, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"MICROCACHE_SERVER", "MICROCACHE_ADMIN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := []string{"microcache-cli", "--config", filepath.Join(t.TempDir(), "cli.yaml")}
	full = append(full, args...)
	err := app.Run(full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
