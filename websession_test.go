package websession_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/websession"
	httpAdapter "github.com/aretw0/websession/pkg/adapters/http"
	"github.com/aretw0/websession/pkg/adapters/memory"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/service"
	"github.com/aretw0/websession/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEndpoint(t *testing.T, opts ...httpAdapter.Option) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(httpAdapter.NewHandler(opts...))
	t.Cleanup(ts.Close)
	return ts
}

func TestResolveURL(t *testing.T) {
	u, err := websession.ResolveURL("https://example.com/app/", websession.DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/session", u)

	u, err = websession.ResolveURL("https://example.com/app/", "api/session")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/app/api/session", u)

	_, err = websession.ResolveURL("://bad", websession.DefaultPath)
	assert.Error(t, err)
}

func TestNew_EndToEnd(t *testing.T) {
	ts := newEndpoint(t, httpAdapter.WithTTL(time.Minute))
	client := service.NewClient()

	sess, err := websession.New(ts.URL, websession.WithClient(client), websession.WithTimeout(time.Second))
	require.NoError(t, err)
	defer sess.Close()

	var events []*domain.ChangeEvent
	_, err = sess.OnChange(func(ctx context.Context, e *domain.ChangeEvent) error {
		events = append(events, e)
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sess.Refresh(ctx))
	assert.Empty(t, events)

	resp, err := client.Post(ts.URL+"/session/login", "application/json", strings.NewReader(`{"accountId":"a1"}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, sess.Refresh(ctx, session.WithAuthentication("password")))
	require.Len(t, events, 1)
	assert.Equal(t, "password", events[0].Authentication)
	id, ok := sess.Data().AccountID()
	require.True(t, ok)
	assert.Equal(t, "a1", id)
	assert.True(t, sess.ExpiryPending())

	require.NoError(t, sess.End(ctx))
	require.Len(t, events, 2)
	assert.True(t, events[1].Ended)
	assert.Equal(t, domain.Snapshot{}, sess.Data())
	assert.False(t, sess.ExpiryPending())
}

func TestCreateSession_Duplicate(t *testing.T) {
	ts := newEndpoint(t)
	store := memory.NewStore[*session.Session]()
	ctx := context.Background()

	first, err := websession.CreateSession(ctx, store, "", ts.URL)
	require.NoError(t, err)
	defer first.Close()

	stored, err := store.Get(ctx, websession.DefaultSessionID)
	require.NoError(t, err)
	assert.Same(t, first, stored)

	_, err = websession.CreateSession(ctx, store, websession.DefaultSessionID, ts.URL)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestGetSession(t *testing.T) {
	ts := newEndpoint(t)
	store := memory.NewStore[*session.Session]()
	ctx := context.Background()

	sess, err := websession.GetSession(ctx, store, "", ts.URL)
	require.NoError(t, err)
	defer sess.Close()
	assert.Equal(t, domain.Snapshot{}, sess.Data())

	again, err := websession.GetSession(ctx, store, websession.DefaultSessionID, ts.URL)
	require.NoError(t, err)
	assert.Same(t, sess, again)

	other, err := websession.GetSession(ctx, store, "session.other", ts.URL)
	require.NoError(t, err)
	defer other.Close()
	assert.NotSame(t, sess, other)
}

func TestGetSession_RefreshError(t *testing.T) {
	ts := newEndpoint(t)
	ts.Close()

	store := memory.NewStore[*session.Session]()
	_, err := websession.GetSession(context.Background(), store, "", ts.URL)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(websession.Version))
}
