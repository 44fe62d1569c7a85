package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *fakeConn) TrySend(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) lastOfType(t *testing.T, typ string) (map[string]any, bool) {
	t.Helper()
	var found map[string]any
	ok := false
	for _, m := range c.messages(t) {
		if m["type"] == typ {
			found = m
			ok = true
		}
	}
	return found, ok
}

func (c *fakeConn) countOfType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, m := range c.messages(t) {
		if m["type"] == typ {
			n++
		}
	}
	return n
}
