package remote

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// SessionCookie is the name of the backend's session cookie.
const SessionCookie = "jwt"

// sessionJar is a cookie jar that keeps the session cookie apart from the
// rest. The backend marks the cookie Secure, which a standard jar would
// withhold from plain-http backends; the session cookie is therefore
// attached to every request to the backend regardless of scheme.
type sessionJar struct {
	inner *cookiejar.Jar

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newSessionJar() (*sessionJar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &sessionJar{inner: inner}, nil
}

// SetCookies implements http.CookieJar.
func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	rest := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Name != SessionCookie {
			rest = append(rest, ck)
			continue
		}
		j.mu.Lock()
		if ck.Value == "" || ck.MaxAge < 0 {
			j.token = ""
			j.expiry = time.Time{}
		} else {
			j.token = ck.Value
			j.expiry = cookieExpiry(ck)
		}
		j.mu.Unlock()
	}
	if len(rest) > 0 {
		j.inner.SetCookies(u, rest)
	}
}

// Cookies implements http.CookieJar.
func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	cookies := j.inner.Cookies(u)
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.token != "" {
		cookies = append(cookies, &http.Cookie{Name: SessionCookie, Value: j.token})
	}
	return cookies
}

// SetToken replaces the session token.
func (j *sessionJar) SetToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.token = token
	j.expiry = time.Time{}
}

// Token returns the session token and its expiry (zero when unknown).
func (j *sessionJar) Token() (string, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.token, j.expiry
}

// Clear drops the session token.
func (j *sessionJar) Clear() {
	j.SetToken("")
}

func cookieExpiry(ck *http.Cookie) time.Time {
	if ck.MaxAge > 0 {
		return time.Now().Add(time.Duration(ck.MaxAge) * time.Second)
	}
	if !ck.Expires.IsZero() {
		return ck.Expires
	}
	return time.Time{}
}
