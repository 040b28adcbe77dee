// Package loader keeps the set of in-flight request tokens behind the global
// busy signal.
package loader

import (
	"encoding/base64"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/servicecall/internal/metrics"
)

// Token identifies one in-flight request.
type Token string

// Tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	active map[Token]struct{}
	subs   map[int]func(busy bool)
	nextID int
	seq    atomic.Uint64
	now    func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[Token]struct{}),
		subs:   make(map[int]func(bool)),
		now:    time.Now,
	}
}

// Mint derives a token from url and the current time without registering it.
func (t *Tracker) Mint(url string) Token {
	n := t.seq.Add(1)
	name := url + "#" + strconv.FormatInt(t.now().UnixNano(), 10) + "#" + strconv.FormatUint(n, 10)
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
	return Token(base64.RawURLEncoding.EncodeToString(id[:]))
}

// Begin mints and registers a token for url.
func (t *Tracker) Begin(url string) Token {
	tok := t.Mint(url)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[tok] = struct{}{}
	metrics.RequestsInFlight.Inc()
	if len(t.active) == 1 {
		t.notify(true)
	}
	return tok
}

// End unregisters tok. Unknown or already-ended tokens are ignored.
func (t *Tracker) End(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[tok]; !ok {
		return
	}
	delete(t.active, tok)
	metrics.RequestsInFlight.Dec()
	if len(t.active) == 0 {
		t.notify(false)
	}
}

// Busy reports whether any token is registered.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active) > 0
}

// Len returns the number of registered tokens.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Subscribe registers fn for busy/idle transitions. fn runs synchronously
// inside the tracker's lock and must not call back into the tracker.
func (t *Tracker) Subscribe(fn func(busy bool)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// notify must be called with mu held so transitions are delivered in order.
func (t *Tracker) notify(busy bool) {
	for _, fn := range t.subs {
		fn(busy)
	}
}
