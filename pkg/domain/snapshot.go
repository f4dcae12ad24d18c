package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"
)

// Snapshot is the session payload returned by the remote endpoint at a point in time.
// Numbers are kept as json.Number so equality is exact on the wire representation.
type Snapshot map[string]any

// DecodeSnapshot reads a JSON object from r. An empty body decodes to the empty snapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// ParseSnapshot decodes a snapshot from raw JSON bytes.
func ParseSnapshot(data []byte) (Snapshot, error) {
	return DecodeSnapshot(bytes.NewReader(data))
}

// Equal reports deep equality: keys are compared regardless of order, values exactly.
// A nil snapshot equals an empty one.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) == 0 && len(other) == 0 {
		return true
	}
	return reflect.DeepEqual(s, other)
}

// IsAuthenticated reports whether the snapshot carries an account.
func (s Snapshot) IsAuthenticated() bool {
	v, ok := s[KeyAccount]
	return ok && v != nil
}

// AccountID returns the authenticated account identifier.
func (s Snapshot) AccountID() (string, bool) {
	account, ok := s[KeyAccount].(map[string]any)
	if !ok {
		return "", false
	}
	switch id := account[KeyAccountID].(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	}
	return "", false
}

// TTL returns the numeric ttl field (milliseconds) as a duration.
func (s Snapshot) TTL() (time.Duration, bool) {
	var ms float64
	switch v := s[KeyTTL].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		ms = f
	case float64:
		ms = v
	case int:
		ms = float64(v)
	case int64:
		ms = float64(v)
	default:
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return cloneValue(map[string]any(s)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Snapshot:
		return Snapshot(cloneValue(map[string]any(t)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
