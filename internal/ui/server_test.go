package ui

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/leapstack-labs/viewgen/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type runningServer struct {
	srv    *Server
	base   string
	client *http.Client
	cancel context.CancelFunc
	done   chan error
}

func startServer(t *testing.T, store *scaffold.Store, watch bool) *runningServer {
	t.Helper()

	srv := NewServer(Config{
		Store:           store,
		Watch:           watch,
		SessionSecret:   "test-secret-key-32-bytes-long!!",
		ShutdownTimeout: time.Second,
		Logger:          testutil.NewTestLogger(t),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ServeListener(ctx, ln)
		close(done) // later stops return at once
	}()

	rs := &runningServer{
		srv:    srv,
		base:   "http://" + ln.Addr().String(),
		client: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
		cancel: cancel,
		done:   done,
	}
	t.Cleanup(rs.stop)
	return rs
}

func (rs *runningServer) stop() {
	rs.cancel()
	select {
	case <-rs.done:
	case <-time.After(5 * time.Second):
	}
}

func (rs *runningServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := rs.client.Get(rs.base + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func newStore(t *testing.T, overlay string) *scaffold.Store {
	t.Helper()
	opts := []scaffold.StoreOption{scaffold.WithLogger(testutil.NewTestLogger(t))}
	if overlay != "" {
		opts = append(opts, scaffold.WithOverlay(overlay))
	}
	store, err := scaffold.NewStore(opts...)
	require.NoError(t, err)
	return store
}

func TestServer_Routes(t *testing.T) {
	rs := startServer(t, newStore(t, ""), false)

	code, body := rs.get(t, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `href="/views/customers"`)

	code, body = rs.get(t, "/views/customers")
	assert.Equal(t, http.StatusOK, code)
	view, _, found := strings.Cut(body, `<pre class="source">`)
	require.True(t, found, "view page lists the template source")
	assert.NotContains(t, view, "Users for")

	code, _ = rs.get(t, "/views/kanban")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = rs.get(t, "/static/preview.css")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "aria-selected")

	code, _ = rs.get(t, "/reload")
	assert.Equal(t, http.StatusNotFound, code, "reload stream only exists in watch mode")

	resp, err := rs.client.Post(rs.base+"/views/customers/select/1", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	body2, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body2), "Users for Globex")

	assert.NotNil(t, rs.srv.Addr())
}

func TestServer_StopsOnCancel(t *testing.T) {
	rs := startServer(t, newStore(t, ""), false)

	rs.cancel()
	select {
	case err := <-rs.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_WatchReloadsPages(t *testing.T) {
	overlay := t.TempDir()
	store := newStore(t, overlay)
	rs := startServer(t, store, true)

	req, err := http.NewRequest(http.MethodGet, rs.base+"/reload", nil)
	require.NoError(t, err)
	resp, err := rs.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	content := "export default () => null; // edited\n"
	target := filepath.Join(overlay, "default.view.tsx")

	// The watcher starts asynchronously; keep touching the file until a
	// reload arrives.
	deadline := time.After(5 * time.Second)
	reloaded := false
	for !reloaded {
		require.NoError(t, os.WriteFile(target, []byte(content), 0600))
		tick := time.After(300 * time.Millisecond)
	wait:
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatal("reload stream closed")
				}
				if strings.Contains(line, "window.location.reload()") {
					reloaded = true
					break wait
				}
			case <-tick:
				break wait
			case <-deadline:
				t.Fatal("no reload event after editing a template")
			}
		}
	}

	got, err := store.Get("default")
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	// Stop the server first so the stream ends and the reader exits.
	rs.stop()
	for range lines {
	}
}

func TestServer_HotReloadEndpoint(t *testing.T) {
	rs := startServer(t, newStore(t, t.TempDir()), true)

	ch, cancel := rs.srv.Notifier().Subscribe()
	defer cancel()

	resp, err := rs.client.Post(rs.base+"/hotreload", "text/plain", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("hotreload did not broadcast")
	}
}

func TestServer_NoReloadAfterStop(t *testing.T) {
	overlay := t.TempDir()
	rs := startServer(t, newStore(t, overlay), true)

	ch, unsubscribe := rs.srv.Notifier().Subscribe()
	defer unsubscribe()

	target := filepath.Join(overlay, "default.view.tsx")

	// Wait for the watcher to pick up a first change.
	deadline := time.After(5 * time.Second)
	for ready := false; !ready; {
		require.NoError(t, os.WriteFile(target, []byte("export default () => null;\n"), 0600))
		select {
		case <-ch:
			ready = true
		case <-time.After(300 * time.Millisecond):
		case <-deadline:
			t.Fatal("watcher never reported a change")
		}
	}

	// A change still inside the debounce window when the server stops must
	// not reload after Serve has returned.
	require.NoError(t, os.WriteFile(target, []byte("export default () => 1;\n"), 0600))
	time.Sleep(debounceDelay / 4)
	rs.stop()

	select {
	case <-ch:
		t.Fatal("reload broadcast after the server stopped")
	case <-time.After(3 * debounceDelay):
	}
}
