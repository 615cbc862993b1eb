package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tofuwabohu/clubist/internal/blogservice"
	"github.com/tofuwabohu/clubist/internal/commentservice"
	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/likeservice"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

// newTestApplication wires the application against an in-memory store so
// handler tests need no external services.
func newTestApplication(t *testing.T) (*application, *common.MemStore) {
	t.Helper()

	store := common.NewMemStore()
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &Config{
		Port:        ":4000",
		Environment: "test",
		Version:     "test",
	}

	stats := statservice.NewStatService(store, cache, logger)

	app := &application{
		config:   cfg,
		logger:   logger,
		cache:    cache,
		stats:    stats,
		blogs:    blogservice.NewBlogService(store, cache),
		likes:    likeservice.NewLikeService(store, cache, stats),
		comments: commentservice.NewCommentService(store, stats, nil),
	}

	return app, store
}

// setIdentity adds the headers the auth proxy would inject for u.
func setIdentity(req *http.Request, u *user) {
	if u == nil {
		return
	}

	req.Header.Set("X-User-Id", u.ID)
	req.Header.Set("X-User-Name", u.Username)
	req.Header.Set("X-User-Email", u.Email)
}

func (ts *testServer) post(t *testing.T, path string, data any, u *user) (int, http.Header, envelope) {
	var body io.Reader
	if data != nil {
		jsonPayload, err := json.Marshal(data)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	setIdentity(req, u)

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, u *user) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	setIdentity(req, u)

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) put(t *testing.T, path string, data any, u *user) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPut, ts.URL+path, bytes.NewReader(jsonPayload))
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	setIdentity(req, u)

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) delete(t *testing.T, path string, u *user) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	setIdentity(req, u)

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}
