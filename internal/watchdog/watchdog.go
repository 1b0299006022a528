// Package watchdog keeps a client-side eye on session liveness. It polls
// the server's introspection endpoint and forces a logout the moment the
// session stops being valid.
package watchdog

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultInitialDelay     = 5 * time.Second
	defaultMinInterval      = 30 * time.Second
	defaultExpiryLead       = time.Minute
	defaultFallbackInterval = 5 * time.Minute
)

type introspectResponse struct {
	Valid   bool   `json:"valid"`
	Expires string `json:"expires"`
}

// Watchdog runs a single goroutine with one reschedulable timer plus one
// fallback ticker (for missed wakeups, e.g. device sleep). Both are torn
// down together on Stop, so checks never overlap.
type Watchdog struct {
	IntrospectURL    string
	Token            string
	Client           *http.Client
	Logger           logrus.FieldLogger
	InitialDelay     time.Duration
	MinInterval      time.Duration
	ExpiryLead       time.Duration
	FallbackInterval time.Duration

	onExpired func()

	mu      sync.Mutex
	done    chan struct{}
	running bool
}

// New builds a watchdog for a session token. onExpired fires at most once
// per Start, on the first invalid introspection or network failure.
func New(introspectURL string, token string, onExpired func()) *Watchdog {
	return &Watchdog{
		IntrospectURL:    introspectURL,
		Token:            token,
		Client:           &http.Client{Timeout: 10 * time.Second},
		InitialDelay:     defaultInitialDelay,
		MinInterval:      defaultMinInterval,
		ExpiryLead:       defaultExpiryLead,
		FallbackInterval: defaultFallbackInterval,
		onExpired:        onExpired,
	}
}

func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.done = make(chan struct{})
	go w.run(w.done)
}

func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.done)
}

func (w *Watchdog) run(done chan struct{}) {
	timer := time.NewTimer(w.InitialDelay)
	ticker := time.NewTicker(w.FallbackInterval)
	defer timer.Stop()
	defer ticker.Stop()

	// Scoped to this run so a restart gets a fresh once and a stale
	// goroutine from a previous run cannot consume it.
	var expired sync.Once
	expire := func() {
		expired.Do(func() {
			if w.onExpired != nil {
				w.onExpired()
			}
		})
	}

	for {
		select {
		case <-done:
			return
		case <-timer.C:
		case <-ticker.C:
		}

		expires, ok := w.check()

		// A Stop issued while the check was in flight wins over its result.
		select {
		case <-done:
			return
		default:
		}

		if !ok {
			expire()
			return
		}

		if !expires.IsZero() {
			// Check again shortly before expiry, but never sooner than the
			// minimum interval.
			next := time.Until(expires) - w.ExpiryLead
			if next < w.MinInterval {
				next = w.MinInterval
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(next)
		}
	}
}

// check reports whether the session is still valid and, when known, its
// expiry instant. Any transport or decode failure counts as invalid.
func (w *Watchdog) check() (time.Time, bool) {
	request, err := http.NewRequest(http.MethodPost, w.IntrospectURL, nil)
	if err != nil {
		return time.Time{}, false
	}
	request.Header.Set("Authorization", "Bearer "+w.Token)

	response, err := w.Client.Do(request)
	if err != nil {
		w.logWarn(err, "session check request failed")
		return time.Time{}, false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return time.Time{}, false
	}

	var payload introspectResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		w.logWarn(err, "session check decode failed")
		return time.Time{}, false
	}
	if !payload.Valid {
		return time.Time{}, false
	}

	if payload.Expires == "" {
		return time.Time{}, true
	}
	expires, err := time.Parse(time.RFC3339, payload.Expires)
	if err != nil {
		return time.Time{}, true
	}
	return expires, true
}

func (w *Watchdog) logWarn(err error, message string) {
	if w.Logger == nil {
		return
	}
	w.Logger.WithError(err).Warn(message)
}
