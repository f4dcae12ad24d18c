package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/websession/internal/clock"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	handler := NewHandler()

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestGetSession_Anonymous(t *testing.T) {
	handler := NewHandler()

	req := httptest.NewRequest("GET", "/session", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{}`, rr.Body.String())

	req = httptest.NewRequest("GET", "/session", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "unknown"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestLogin_Validation(t *testing.T) {
	handler := NewHandler()

	for _, body := range []string{`not json`, `{}`, `{"accountId":"  "}`} {
		req := httptest.NewRequest("POST", "/session/login", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestSessionLifecycle(t *testing.T) {
	fc := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	server := NewServer(WithTTL(time.Minute), WithClock(fc), WithCookieName("sid"))
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	client := service.NewClient()
	resp, err := client.Post(ts.URL+"/session/login", "application/json", strings.NewReader(`{"accountId":"a1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, server.Len())

	svc := service.New(ts.URL+"/session", service.WithClient(client))
	ctx := context.Background()

	data, err := svc.Get(ctx)
	require.NoError(t, err)
	id, ok := data.AccountID()
	require.True(t, ok)
	assert.Equal(t, "a1", id)
	ttl, ok := data.TTL()
	require.True(t, ok)
	assert.Equal(t, time.Minute, ttl)

	// Every GET renews the idle deadline.
	fc.Advance(50 * time.Second)
	_, err = svc.Get(ctx)
	require.NoError(t, err)
	fc.Advance(50 * time.Second)
	data, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, data.IsAuthenticated())

	require.NoError(t, svc.Logout(ctx))
	assert.Zero(t, server.Len())

	data, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Snapshot{}, data)
}

func TestSessionIdleExpiry(t *testing.T) {
	fc := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	server := NewServer(WithTTL(time.Minute), WithClock(fc))
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	client := service.NewClient()
	resp, err := client.Post(ts.URL+"/session/login", "application/json", strings.NewReader(`{"accountId":"a1"}`))
	require.NoError(t, err)
	resp.Body.Close()

	fc.Advance(time.Minute)
	assert.Zero(t, server.Len())

	svc := service.New(ts.URL+"/session", service.WithClient(client))
	data, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, data.IsAuthenticated())
}

func TestSnapshot_NoTTLWhenDisabled(t *testing.T) {
	handler := NewHandler()

	req := httptest.NewRequest("POST", "/session/login", strings.NewReader(`{"accountId":"a1"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"account":{"id":"a1"}}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestDeleteSession_ClearsCookie(t *testing.T) {
	handler := NewHandler()

	req := httptest.NewRequest("DELETE", "/session", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
