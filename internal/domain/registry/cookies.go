package registry

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/cookies"
	"github.com/GriffinCanCode/AgentOS/media/internal/domain/session"
	"go.uber.org/zap"
)

// Cookies returns the jar. It must only be used from the frame goroutine.
func (r *Registry) Cookies() *cookies.Store {
	return r.jar
}

// ReportCookie records a Set-Cookie line observed by a renderer of s
func (r *Registry) ReportCookie(s *session.Session, line string) {
	r.jar.SetCookiesFromHost(line, s.CookieHost())
}

// AddCookie stores a persistent cookie
func (r *Registry) AddCookie(name, value, domain string, expires time.Time, path string, secure bool) error {
	return r.jar.Set(cookies.Cookie{
		Name:    name,
		Value:   value,
		Domain:  domain,
		Path:    path,
		Expires: expires,
		Secure:  secure,
	}, true)
}

// AddSessionCookie stores a cookie that is never persisted
func (r *Registry) AddSessionCookie(name, value, domain, path string, secure bool) error {
	return r.AddCookie(name, value, domain, time.Time{}, path, secure)
}

// RemoveCookie expires a cookie, which removes it from the jar and from
// every renderer on the next tick
func (r *Registry) RemoveCookie(name, domain, path string) error {
	return r.AddCookie(name, "", domain, r.now().Add(-time.Second), path, false)
}

// SetCookiesFromHost stores raw Set-Cookie lines, defaulting their domain
// to host
func (r *Registry) SetCookiesFromHost(raw, host string) {
	r.jar.SetCookiesFromHost(raw, host)
}

// LoadCookies replaces the jar with the snapshot on disk. Renderers drop
// their cookies and receive the loaded set with the next tick.
func (r *Registry) LoadCookies() error {
	if r.cookieFile == "" {
		return nil
	}
	if err := r.jar.Replace(r.cookieFile); err != nil {
		r.logger.Warn("failed to load cookie snapshot, continuing in memory", zap.Error(err))
		return err
	}
	r.each((*session.Session).ClearCookies)
	r.logger.Info("cookie snapshot loaded", zap.String("path", r.cookieFile), zap.Int("cookies", r.jar.Len()))
	return nil
}

// SaveCookies writes the persistent cookies to disk
func (r *Registry) SaveCookies() error {
	if r.cookieFile == "" {
		return nil
	}
	if err := r.jar.Save(r.cookieFile); err != nil {
		r.logger.Warn("failed to save cookie snapshot", zap.Error(err))
		return err
	}
	return nil
}

// FetchHostCookies requests rawURL in the background and stores the
// cookies it sets. The result is applied on a later tick.
func (r *Registry) FetchHostCookies(ctx context.Context, rawURL string) error {
	if r.fetcher == nil {
		return fmt.Errorf("fetch cookies for %s: no fetcher configured", rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("fetch cookies for %s: %w", rawURL, err)
	}
	host := u.Hostname()

	fetcher, inbox, logger := r.fetcher, r.inbox, r.logger
	r.background.Go(func() error {
		lines, err := fetcher.FetchCookies(ctx, rawURL)
		if err != nil {
			logger.Warn("cookie fetch failed", zap.String("url", rawURL), zap.Error(err))
			return nil
		}
		inbox.Post(func() {
			r.jar.SetCookiesFromHost(lines, host)
		})
		return nil
	})
	return nil
}
