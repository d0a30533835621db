package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cjb-incidents/config"
	"cjb-incidents/core/utils"
)

const feedDoc = `{"success":true,"count":2,"lastUpdate":"2025-07-03T12:00:00Z","data":[{"Id":1,"Cuadrante":"B1"},{"Id":2,"Cuadrante":"B3"}]}`

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCascadeFallsBackToLocal(t *testing.T) {
	remote := jsonServer(t, http.StatusNotFound, `{"error":"missing"}`)
	local := jsonServer(t, http.StatusOK, feedDoc)
	c := NewCascade(time.Second, true, utils.Discard(),
		NewHTTPSource("remote", remote.URL+"/data.json", 0, utils.Discard()),
		NewHTTPSource("local", local.URL+"/api/incidentes", 0, utils.Discard()),
	)
	res, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Source != "local" || res.Snapshot.Count != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCascadeTimesOutSlowSource(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)
	fast := jsonServer(t, http.StatusOK, feedDoc)

	c := NewCascade(100*time.Millisecond, true, utils.Discard(),
		NewHTTPSource("remote", slow.URL, 0, utils.Discard()),
		NewHTTPSource("local", fast.URL, 0, utils.Discard()),
	)
	start := time.Now()
	res, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Source != "local" {
		t.Fatalf("expected local source, got %s", res.Source)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestCascadeRequiresManualUpload(t *testing.T) {
	broken := jsonServer(t, http.StatusOK, `{"data":`)
	empty := jsonServer(t, http.StatusOK, `{"data":[]}`)
	c := NewCascade(time.Second, true, utils.Discard(),
		NewHTTPSource("remote", broken.URL, 0, utils.Discard()),
		NewHTTPSource("local", empty.URL, 0, utils.Discard()),
	)
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, ErrManualUploadRequired) {
		t.Fatalf("expected manual upload, got %v", err)
	}
	if !errors.Is(err, ErrMalformedSnapshot) || !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected per-source causes in %v", err)
	}

	c = NewCascade(time.Second, false, utils.Discard())
	if _, err := c.Fetch(context.Background()); !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("expected all sources failed, got %v", err)
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(feedDoc))
	}))
	defer srv.Close()
	snap, err := NewHTTPSource("remote", srv.URL, 1, utils.Discard()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if calls != 2 || snap.Count != 2 {
		t.Fatalf("expected one retry, calls=%d count=%d", calls, snap.Count)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(feedDoc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap, err := FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if snap.Count != 2 || snap.LastUpdate.IsZero() {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, err := (FileSource{Path: path + ".missing"}).Fetch(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
}

func TestCascadeFromConfig(t *testing.T) {
	cfg := &config.AppConfig{Feed: config.FeedConfig{RemoteURL: "https://example.org/data.json", LocalURL: "http://localhost:3001/api/incidentes"}}
	c := NewCascadeFromConfig(cfg, utils.Discard())
	names := c.Sources()
	if len(names) != 2 || names[0] != "remote" || names[1] != "local" {
		t.Fatalf("unexpected sources %v", names)
	}
}
