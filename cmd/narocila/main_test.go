package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/narocila/internal/logging"
)

// resetLogging points the standard logger back at stdout/stderr so later
// tests don't write through a closed log file.
func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if _, err := logging.Setup("info", "text", ""); err != nil {
			t.Errorf("resetting logging: %v", err)
		}
	})
}

func TestRunSeed(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	resetLogging(t)

	logPath := filepath.Join(dir, "narocila.log")
	code := run([]string{"seed", "-d", filepath.Join(dir, "demo.sqlite3"), "-l", logPath})
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "demo data created")
}

func TestRunFailureReturnsCodeAndKeepsLog(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	resetLogging(t)

	logPath := filepath.Join(dir, "narocila.log")
	code := run([]string{"seed", "-d", filepath.Join(dir, "missing", "demo.sqlite3"), "-l", logPath})
	assert.Equal(t, 1, code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "failed to open database")
}

func TestRunFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.Equal(t, 0, run([]string{"-h"}))
	assert.Equal(t, 1, run([]string{"serve", "-driver", "oracle"}))
	assert.Equal(t, 1, run([]string{"seed", "extra"}))
}

func TestServeUntilWaitsForInFlightRequests(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		io.WriteString(w, "done")
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- serveUntil(ctx, server, ln) }()

	type result struct {
		body string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		got <- result{body: string(body), err: err}
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}

	cancel()

	select {
	case err := <-served:
		t.Fatalf("serveUntil returned while a request was in flight: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntil did not return after the request finished")
	}

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, "done", r.body)
}
