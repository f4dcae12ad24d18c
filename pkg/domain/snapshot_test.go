package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot(t *testing.T) {
	t.Run("Empty Body", func(t *testing.T) {
		s, err := DecodeSnapshot(strings.NewReader(""))
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Empty(t, s)
	})

	t.Run("JSON Null", func(t *testing.T) {
		s, err := DecodeSnapshot(strings.NewReader("null"))
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Empty(t, s)
	})

	t.Run("Numbers Are Preserved", func(t *testing.T) {
		s, err := ParseSnapshot([]byte(`{"ttl": 1000, "account": {"id": "a1"}}`))
		require.NoError(t, err)
		assert.Equal(t, json.Number("1000"), s["ttl"])
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := DecodeSnapshot(strings.NewReader("{"))
		assert.Error(t, err)
	})
}

func TestSnapshot_Equal(t *testing.T) {
	a, err := ParseSnapshot([]byte(`{"account": {"id": "a1", "name": "alice"}, "ttl": 1000}`))
	require.NoError(t, err)
	b, err := ParseSnapshot([]byte(`{"ttl": 1000, "account": {"name": "alice", "id": "a1"}}`))
	require.NoError(t, err)
	c, err := ParseSnapshot([]byte(`{"ttl": 1001, "account": {"name": "alice", "id": "a1"}}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b), "key order must not matter")
	assert.False(t, a.Equal(c), "values must match exactly")
	assert.True(t, Snapshot(nil).Equal(Snapshot{}))
	assert.False(t, Snapshot{}.Equal(a))
}

func TestSnapshot_Account(t *testing.T) {
	anon := Snapshot{}
	assert.False(t, anon.IsAuthenticated())
	_, ok := anon.AccountID()
	assert.False(t, ok)

	s, err := ParseSnapshot([]byte(`{"account": {"id": "a1"}}`))
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	id, ok := s.AccountID()
	assert.True(t, ok)
	assert.Equal(t, "a1", id)

	numeric, err := ParseSnapshot([]byte(`{"account": {"id": 42}}`))
	require.NoError(t, err)
	id, ok = numeric.AccountID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	noID := Snapshot{"account": map[string]any{}}
	assert.True(t, noID.IsAuthenticated())
	_, ok = noID.AccountID()
	assert.False(t, ok)
}

func TestSnapshot_TTL(t *testing.T) {
	s, err := ParseSnapshot([]byte(`{"ttl": 1500}`))
	require.NoError(t, err)
	ttl, ok := s.TTL()
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, ttl)

	_, ok = Snapshot{"ttl": "soon"}.TTL()
	assert.False(t, ok)

	_, ok = Snapshot{}.TTL()
	assert.False(t, ok)
}

func TestSnapshot_Clone(t *testing.T) {
	s := Snapshot{"account": map[string]any{"id": "a1", "roles": []any{"admin"}}}
	c := s.Clone()
	assert.True(t, s.Equal(c))

	c["account"].(map[string]any)["id"] = "a2"
	c["account"].(map[string]any)["roles"].([]any)[0] = "user"
	assert.Equal(t, "a1", s["account"].(map[string]any)["id"])
	assert.Equal(t, "admin", s["account"].(map[string]any)["roles"].([]any)[0])
}

func TestEventType_Valid(t *testing.T) {
	for _, et := range EventTypes {
		assert.True(t, et.Valid(), et)
	}
	assert.False(t, EventType("logout").Valid())
	assert.Equal(t, EventChange, (&ChangeEvent{}).Type())
	assert.Equal(t, EventExpire, (&ExpireEvent{}).Type())
}
