package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverPanic(t *testing.T) {
	app, _ := newTestApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestAuthenticate(t *testing.T) {
	app, _ := newTestApplication(t)

	testCases := []struct {
		name         string
		headers      map[string]string
		wantUser     string
		wantUsername string
	}{
		{
			name:     "no identity headers",
			headers:  nil,
			wantUser: "",
		},
		{
			name: "full identity",
			headers: map[string]string{
				"X-User-Id":    "u1",
				"X-User-Name":  "testuser",
				"X-User-Email": "testuser@example.com",
			},
			wantUser:     "u1",
			wantUsername: "testuser",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got *user

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = app.getUserContext(r)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			res := httptest.NewRecorder()

			app.authenticate(handler).ServeHTTP(res, req)

			assert.Equal(t, tc.wantUser, got.ID)
			assert.Equal(t, tc.wantUsername, got.Username)
			assert.Equal(t, tc.wantUser == "", got.isAnonymous())
		})
	}
}

func TestRequireAuthUser(t *testing.T) {
	app, _ := newTestApplication(t)

	handler := app.requireAuthUser(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// anonymous request is refused
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	app.authenticate(handler).ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// identified request passes through
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "u1")
	res = httptest.NewRecorder()
	app.authenticate(handler).ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}
