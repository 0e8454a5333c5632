// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keyed holds one token bucket per key. Each bucket starts full with
// burst tokens and refills completely over per. Safe for concurrent use.
type Keyed struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewKeyed allows burst events per key, refilled evenly across per. A
// goroutine drops buckets untouched for two periods; Close stops it.
func NewKeyed(burst int, per time.Duration) *Keyed {
	k := &Keyed{
		buckets: make(map[string]*bucket),
		every:   rate.Every(per / time.Duration(burst)),
		burst:   burst,
		idle:    2 * per,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go k.prune()
	return k
}

func (k *Keyed) get(key string) *bucket {
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.every, k.burst)}
		k.buckets[key] = b
	}
	b.seen = k.now()
	return b
}

// Allow spends one token for key and reports whether one was available.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	b := k.get(key)
	return b.lim.AllowN(b.seen, 1)
}

// Remaining reports the whole tokens key has left.
func (k *Keyed) Remaining(key string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, ok := k.buckets[key]
	if !ok {
		return k.burst
	}
	n := int(b.lim.TokensAt(k.now()))
	if n < 0 {
		return 0
	}
	return n
}

// Reset refills key's bucket.
func (k *Keyed) Reset(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.buckets, key)
}

func (k *Keyed) prune() {
	t := time.NewTicker(k.idle)
	defer t.Stop()
	for {
		select {
		case <-k.stop:
			return
		case <-t.C:
			k.sweep()
		}
	}
}

func (k *Keyed) sweep() {
	k.mu.Lock()
	defer k.mu.Unlock()
	cutoff := k.now().Add(-k.idle)
	for key, b := range k.buckets {
		if b.seen.Before(cutoff) {
			delete(k.buckets, key)
		}
	}
}

// Close stops pruning. Allow keeps working.
func (k *Keyed) Close() {
	k.stopOnce.Do(func() { close(k.stop) })
}

// ClientIP is the first X-Forwarded-For hop, else X-Real-IP, else the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

const (
	msgTooManyFromIP      = "Too many login attempts. Please wait a minute before trying again."
	msgTooManyForAccount  = "Too many login attempts for this account. Please wait a few minutes."
	emailWindowMultiplier = 5
)

// LoginLimiter guards POST /api/auth/login with a bucket per client IP and
// a smaller, slower one per email, so one account cannot be hammered from
// many addresses.
type LoginLimiter struct {
	byIP    *Keyed
	byEmail *Keyed
}

// NewLoginLimiter allows perIP attempts per IP per window, and half that
// (at least one) per email per five windows.
func NewLoginLimiter(perIP int, window time.Duration) *LoginLimiter {
	perEmail := max(perIP/2, 1)
	return &LoginLimiter{
		byIP:    NewKeyed(perIP, window),
		byEmail: NewKeyed(perEmail, emailWindowMultiplier*window),
	}
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Check spends an attempt for r's IP and for email. When refused, reason
// is the message to show.
func (l *LoginLimiter) Check(r *http.Request, email string) (ok bool, reason string) {
	if !l.byIP.Allow(ClientIP(r)) {
		return false, msgTooManyFromIP
	}
	if key := emailKey(email); key != "" && !l.byEmail.Allow(key) {
		return false, msgTooManyForAccount
	}
	return true, ""
}

// ResetEmail refills email's bucket after a successful login.
func (l *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		l.byEmail.Reset(key)
	}
}

func (l *LoginLimiter) Close() {
	l.byIP.Close()
	l.byEmail.Close()
}
