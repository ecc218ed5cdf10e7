package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Jar is an http.CookieJar that mirrors every accepted cookie into the
// Store, so a login survives across process restarts the same way browser
// cookies survive a page reload.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	cookies Cookies
	log     *slog.Logger
	now     func() time.Time
}

// NewJar builds a jar and replays the persisted cookies into it. Cookies that
// expired while the process was not running are deleted.
func NewJar(ctx context.Context, cookies Cookies, log *slog.Logger) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	j := &Jar{
		inner:   inner,
		cookies: cookies,
		log:     log,
		now:     time.Now,
	}

	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) load(ctx context.Context) error {
	stored, err := j.cookies.ListCookies(ctx)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}

	now := j.now()
	for _, sc := range stored {
		if sc.Expires != nil && !sc.Expires.After(now) {
			if err := j.cookies.DeleteCookie(ctx, sc.Origin, sc.Name, sc.Path); err != nil {
				return fmt.Errorf("delete expired cookie %q: %w", sc.Name, err)
			}
			continue
		}

		u, err := url.Parse(sc.Origin + "/")
		if err != nil {
			j.log.Warn("skipping cookie with bad origin", "origin", sc.Origin, "name", sc.Name)
			continue
		}

		c := &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Domain:   sc.Domain,
			Secure:   sc.Secure,
			HttpOnly: sc.HTTPOnly,
		}
		if sc.Expires != nil {
			c.Expires = *sc.Expires
		}
		if c.Path == "" {
			c.Path = "/"
		}
		j.inner.SetCookies(u, []*http.Cookie{c})
	}
	return nil
}

// SetCookies implements http.CookieJar. Persistence failures are logged; the
// in-memory jar stays authoritative for the running process.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	origin := originOf(u)
	ctx := context.Background()
	now := j.now()

	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}

		path := cookiePath(u, c)

		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			if err := j.cookies.DeleteCookie(ctx, origin, c.Name, path); err != nil {
				j.log.Warn("failed to delete persisted cookie", "name", c.Name, "error", err)
			}
			continue
		}

		sc := StoredCookie{
			Origin:   origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge > 0:
			exp := now.Add(time.Duration(c.MaxAge) * time.Second)
			sc.Expires = &exp
		case !c.Expires.IsZero():
			exp := c.Expires
			sc.Expires = &exp
		}

		if err := j.cookies.UpsertCookie(ctx, sc); err != nil {
			j.log.Warn("failed to persist cookie", "name", c.Name, "error", err)
		}
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// cookiePath is the path the in-memory jar files c under: its Path
// attribute, or else the directory of the request path.
func cookiePath(u *url.URL, c *http.Cookie) string {
	if strings.HasPrefix(c.Path, "/") {
		return c.Path
	}
	p := u.Path
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}
