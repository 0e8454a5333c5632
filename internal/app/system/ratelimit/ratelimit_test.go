package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func keyed(t *testing.T, burst int, per time.Duration) (*Keyed, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	k := NewKeyed(burst, per)
	k.now = c.now
	t.Cleanup(k.Close)
	return k, c
}

func TestKeyed_BurstThenRefill(t *testing.T) {
	k, c := keyed(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, k.Allow("203.0.113.1"), "attempt %d", i+1)
	}
	assert.False(t, k.Allow("203.0.113.1"))
	assert.Equal(t, 0, k.Remaining("203.0.113.1"))
	assert.True(t, k.Allow("203.0.113.2"), "keys are independent")
	assert.Equal(t, 3, k.Remaining("never-seen"))

	c.advance(21 * time.Second)
	assert.True(t, k.Allow("203.0.113.1"), "one token back after a third of the window")
	assert.False(t, k.Allow("203.0.113.1"))

	k.Reset("203.0.113.1")
	assert.Equal(t, 3, k.Remaining("203.0.113.1"))
}

func TestKeyed_SweepDropsIdle(t *testing.T) {
	k, c := keyed(t, 1, time.Minute)
	k.Allow("old")
	c.advance(90 * time.Second)
	k.Allow("fresh")
	c.advance(45 * time.Second)

	k.sweep()
	k.mu.Lock()
	defer k.mu.Unlock()
	assert.NotContains(t, k.buckets, "old")
	assert.Contains(t, k.buckets, "fresh")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name, xff, xri, remote, want string
	}{
		{"first forwarded hop", "203.0.113.1, 10.0.0.1", "198.51.100.7", "10.0.0.2:1234", "203.0.113.1"},
		{"blank forwarded falls through", " ,10.0.0.1", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"real ip trimmed", "", " 198.51.100.7 ", "10.0.0.2:1234", "198.51.100.7"},
		{"remote host", "", "", "192.0.2.5:5555", "192.0.2.5"},
		{"remote ipv6", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"remote without port", "", "", "192.0.2.5", "192.0.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter(4, time.Minute)
	defer l.Close()

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	for i := 0; i < 2; i++ {
		ok, _ := l.Check(r, "Ana@Example.com")
		require.True(t, ok)
	}
	ok, reason := l.Check(r, " ana@example.com")
	assert.False(t, ok)
	assert.Equal(t, msgTooManyForAccount, reason)

	l.ResetEmail("ANA@example.com")
	ok, _ = l.Check(r, "ana@example.com")
	assert.True(t, ok, "email bucket refilled")

	ok, reason = l.Check(r, "someone@example.com")
	assert.False(t, ok)
	assert.Equal(t, msgTooManyFromIP, reason)
}
