package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/suggest-cli/internal/engine"
)

// getFreePort returns a free TCP port on localhost.
func getFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

// waitReady polls /health until the server answers.
func waitReady(t *testing.T, port int) {
	t.Helper()
	for i := 0; i < 20; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not become ready in time")
}

func TestBuildRouterHealthAndErrorMapping(t *testing.T) {
	// An engine with no store maps to 503 on the API surface.
	r := buildRouter(engine.New(nil, nil, nil))

	port := getFreePort(t)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: r}
	go srv.ListenAndServe()
	defer srv.Shutdown(context.Background())

	waitReady(t, port)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	resp2, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/funds/fund-1/suggestions", port))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestDrainOnDoneFinishesInflightRequests(t *testing.T) {
	// A request in flight when the signal context cancels must be allowed
	// to finish rather than being aborted with the canceled context.
	var served atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(150 * time.Millisecond)
		served.Store(true)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "done")
	})

	port := getFreePort(t)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	go drainOnDone(ctx, srv)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	for i := 0; i < 20; i++ {
		conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	respCh := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/slow", port))
		if err == nil {
			respCh <- resp
		}
		close(respCh)
	}()

	// Cancel while the slow request is still in flight.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case resp, ok := <-respCh:
		require.True(t, ok, "in-flight request was aborted by shutdown")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, served.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request never completed")
	}

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
