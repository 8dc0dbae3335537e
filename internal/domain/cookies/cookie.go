package cookies

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cookie is one entry of the jar
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time // zero for session cookies
	Secure   bool
	HTTPOnly bool
	Quoted   bool
}

// IsSession reports whether the cookie lives only as long as the process
func (c Cookie) IsSession() bool {
	return c.Expires.IsZero()
}

// ExpiredAt reports whether a persistent cookie has expired at now
func (c Cookie) ExpiredAt(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c Cookie) equal(o Cookie) bool {
	return c.Name == o.Name && c.Value == o.Value &&
		c.Domain == o.Domain && c.Path == o.Path &&
		c.Expires.Equal(o.Expires) &&
		c.Secure == o.Secure && c.HTTPOnly == o.HTTPOnly && c.Quoted == o.Quoted
}

// Valid checks the cookie against the Set-Cookie grammar, so that its
// String form parses back to the same cookie and cannot split into more
// than one line or attribute.
func (c Cookie) Valid() error {
	hc := http.Cookie{
		Name:    c.Name,
		Value:   c.Value,
		Domain:  c.Domain,
		Path:    c.Path,
		Expires: c.Expires,
		Quoted:  c.Quoted,
	}
	if err := hc.Valid(); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCookie, c.Name, err)
	}
	return nil
}

// String renders the cookie as a canonical Set-Cookie line
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	if c.Quoted {
		b.WriteByte('"')
		b.WriteString(c.Value)
		b.WriteByte('"')
	} else {
		b.WriteString(c.Value)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; expires=")
		b.WriteString(c.Expires.UTC().Format(http.TimeFormat))
	}
	b.WriteString("; domain=")
	b.WriteString(c.Domain)
	b.WriteString("; path=")
	b.WriteString(c.Path)
	if c.Secure {
		b.WriteString("; secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	return b.String()
}

// Parse reads one Set-Cookie line. Max-Age takes precedence over Expires.
func Parse(line string, now time.Time) (Cookie, error) {
	hc, err := http.ParseSetCookie(strings.TrimSpace(line))
	if err != nil {
		return Cookie{}, err
	}

	c := Cookie{
		Name:     hc.Name,
		Value:    hc.Value,
		Domain:   hc.Domain,
		Path:     hc.Path,
		Expires:  hc.Expires,
		Secure:   hc.Secure,
		HTTPOnly: hc.HttpOnly,
		Quoted:   hc.Quoted,
	}
	switch {
	case hc.MaxAge > 0:
		c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
	case hc.MaxAge < 0:
		c.Expires = now.Add(-time.Second)
	}
	return normalize(c), nil
}

func normalize(c Cookie) Cookie {
	c.Domain = strings.ToLower(strings.TrimPrefix(c.Domain, "."))
	if c.Path == "" {
		c.Path = "/"
	}
	if !c.Expires.IsZero() {
		c.Expires = c.Expires.UTC().Truncate(time.Second)
	}
	if needsQuoting(c.Value) {
		c.Quoted = true
	}
	return c
}

func needsQuoting(v string) bool {
	return strings.ContainsAny(v, " ,")
}
