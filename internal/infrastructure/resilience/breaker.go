package resilience

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures breaker behavior
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// Cooldown is how long an open breaker rejects calls before probing again
	Cooldown time.Duration
	// OnStateChange is called whenever a breaker changes state
	OnStateChange func(name string, from, to State)
	// Now overrides the clock
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 3
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Breaker guards calls to one destination
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	return &Breaker{
		name:     name,
		settings: settings.withDefaults(),
		state:    StateClosed,
	}
}

// Name returns the name of the breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, moving an expired open breaker to half-open
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Failures returns the current consecutive failure count
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Call runs fn unless the breaker is open. Only one call probes a
// half-open breaker at a time; concurrent calls are rejected meanwhile.
func (b *Breaker) Call(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	succeeded := false
	defer func() {
		b.record(succeeded)
	}()

	err := fn()
	succeeded = err == nil
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	b.probing = false

	if success {
		b.failures = 0
		if state != StateClosed {
			b.transition(StateClosed)
		}
		return
	}

	b.failures++
	if state == StateHalfOpen || b.failures >= b.settings.FailureThreshold {
		b.openedAt = b.settings.Now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) current() State {
	if b.state == StateOpen && !b.settings.Now().Before(b.openedAt.Add(b.settings.Cooldown)) {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// HostBreakers lazily creates one breaker per host
type HostBreakers struct {
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewHostBreakers creates an empty set sharing settings
func NewHostBreakers(settings Settings) *HostBreakers {
	return &HostBreakers{
		settings: settings,
		breakers: make(map[string]*Breaker),
	}
}

// For returns the breaker for host. Host names are case-insensitive.
func (h *HostBreakers) For(host string) *Breaker {
	host = strings.ToLower(host)

	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.breakers[host]
	if !ok {
		b = New(host, h.settings)
		h.breakers[host] = b
	}
	return b
}

// States returns a snapshot of every breaker's state keyed by host
func (h *HostBreakers) States() map[string]State {
	h.mu.Lock()
	breakers := make([]*Breaker, 0, len(h.breakers))
	for _, b := range h.breakers {
		breakers = append(breakers, b)
	}
	h.mu.Unlock()

	out := make(map[string]State, len(breakers))
	for _, b := range breakers {
		out[b.Name()] = b.State()
	}
	return out
}
