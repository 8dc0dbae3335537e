package cookies

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

var (
	ErrNoDomain      = errors.New("cookie has no domain")
	ErrPublicSuffix  = errors.New("cookie domain is a public suffix")
	ErrInvalidCookie = errors.New("invalid cookie")
)

type key struct {
	domain string
	path   string
	name   string
}

type entry struct {
	cookie  Cookie
	changed bool
	dead    bool
}

// Store is the cookie jar
type Store struct {
	entries map[key]*entry
	changed bool
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for expiry decisions
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty jar
func NewStore(logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		entries: make(map[key]*entry),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores c. A cookie that is already expired removes any entry with
// the same domain, path and name. markChanged controls whether the
// mutation shows up in the next ChangedCookies diff. Names, values,
// domains and paths outside the Set-Cookie grammar are rejected with
// ErrInvalidCookie.
func (s *Store) Set(c Cookie, markChanged bool) error {
	c = normalize(c)
	if c.Domain == "" {
		return ErrNoDomain
	}
	if err := c.Valid(); err != nil {
		return err
	}

	k := key{domain: c.Domain, path: c.Path, name: c.Name}
	existing, ok := s.entries[k]

	if c.ExpiredAt(s.now()) {
		if !ok || existing.dead {
			return nil
		}
		existing.cookie = c
		existing.dead = true
		s.mark(existing, markChanged)
		return nil
	}

	if ok && !existing.dead && existing.cookie.equal(c) {
		return nil
	}
	if !ok {
		existing = &entry{}
		s.entries[k] = existing
	}
	existing.cookie = c
	existing.dead = false
	s.mark(existing, markChanged)
	return nil
}

func (s *Store) mark(e *entry, markChanged bool) {
	if markChanged {
		e.changed = true
		s.changed = true
	}
}

// SetCookies parses newline separated Set-Cookie lines and stores them as
// changes. Lines that do not parse or carry no domain are skipped.
func (s *Store) SetCookies(raw string) {
	s.setLines(raw, "")
}

// SetCookiesFromHost is SetCookies with host as the default domain.
// A Domain attribute naming a public suffix other than host itself is
// rejected.
func (s *Store) SetCookiesFromHost(raw, host string) {
	s.setLines(raw, host)
}

func (s *Store) setLines(raw, host string) {
	host = strings.ToLower(host)
	now := s.now()
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c, err := Parse(line, now)
		if err != nil {
			s.logger.Debug("skipping unparsable cookie", zap.String("line", line), zap.Error(err))
			continue
		}
		if c.Domain == "" {
			c.Domain = host
		}
		if host != "" && c.Domain != host {
			if err := checkDomain(c.Domain); err != nil {
				s.logger.Warn("rejecting host cookie", zap.String("name", c.Name), zap.String("domain", c.Domain), zap.Error(err))
				continue
			}
		}
		if err := s.Set(c, true); err != nil {
			s.logger.Debug("skipping cookie", zap.String("name", c.Name), zap.Error(err))
		}
	}
}

func checkDomain(domain string) error {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	if suffix == domain {
		return fmt.Errorf("%w: %s", ErrPublicSuffix, domain)
	}
	return nil
}

// Cookies returns the live cookies ordered by domain, path and name
func (s *Store) Cookies() []Cookie {
	return s.collect(func(c Cookie) bool { return true })
}

// PersistentCookies returns the live cookies that have an expiry
func (s *Store) PersistentCookies() []Cookie {
	return s.collect(func(c Cookie) bool { return !c.IsSession() })
}

// Lookup returns the live cookie stored under domain, path and name
func (s *Store) Lookup(domain, path, name string) (Cookie, bool) {
	c := normalize(Cookie{Domain: domain, Path: path})
	e, ok := s.entries[key{domain: c.Domain, path: c.Path, name: name}]
	if !ok || e.dead || e.cookie.ExpiredAt(s.now()) {
		return Cookie{}, false
	}
	return e.cookie, true
}

// Len returns the number of live cookies
func (s *Store) Len() int {
	return len(s.Cookies())
}

func (s *Store) collect(keep func(Cookie) bool) []Cookie {
	now := s.now()
	out := make([]Cookie, 0, len(s.entries))
	for _, e := range s.entries {
		if e.dead || e.cookie.ExpiredAt(now) || !keep(e.cookie) {
			continue
		}
		out = append(out, e.cookie)
	}
	sortCookies(out)
	return out
}

// AllCookies renders every live cookie, one Set-Cookie line each
func (s *Store) AllCookies() string {
	return join(s.Cookies())
}

// HasChanges reports whether ChangedCookies would return anything
func (s *Store) HasChanges() bool {
	return s.changed
}

// ChangedCookies renders the cookies changed since the last clearing call,
// including removals as already-expired lines. With clear set, the change
// flags are reset and removed entries are dropped for good.
func (s *Store) ChangedCookies(clear bool) string {
	if !s.changed {
		return ""
	}

	var changed []Cookie
	for k, e := range s.entries {
		if !e.changed {
			continue
		}
		changed = append(changed, e.cookie)
		if clear {
			e.changed = false
			if e.dead {
				delete(s.entries, k)
			}
		}
	}
	if clear {
		s.changed = false
	}

	sortCookies(changed)
	return join(changed)
}

// Clear empties the jar without recording changes
func (s *Store) Clear() {
	s.entries = make(map[key]*entry)
	s.changed = false
}

func sortCookies(cs []Cookie) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})
}

func join(cs []Cookie) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
