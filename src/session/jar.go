// cookie jar的持久化实现
// 请求时的cookie匹配交给标准库cookiejar处理，这里额外保存一份可以序列化的cookie列表，
// 用于判断登录状态以及在多次运行之间保存session
package session

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const infinity = "Infinity"

// cookie过期时间，零值表示永不过期（session cookie）
type Expiry struct {
	at time.Time
}

func ExpiresAt(t time.Time) Expiry {
	return Expiry{at: t}
}

func (e Expiry) Infinite() bool {
	return e.at.IsZero()
}

func (e Expiry) Time() time.Time {
	return e.at
}

func (e Expiry) ValidAt(now time.Time) bool {
	return e.Infinite() || now.Before(e.at)
}

func (e Expiry) MarshalJSON() ([]byte, error) {
	if e.Infinite() {
		return json.Marshal(infinity)
	}
	return json.Marshal(e.at.UTC().Format(time.RFC3339Nano))
}

func (e *Expiry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" || s == infinity {
		e.at = time.Time{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	e.at = t
	return nil
}

type Cookie struct {
	Name     string `json:"key"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	HostOnly bool   `json:"hostOnly"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Expires  Expiry `json:"expires"`
}

func (c Cookie) key() string {
	return c.Domain + ";" + c.Path + ";" + c.Name
}

// 域名匹配，host-only的cookie要求完全相等
func (c Cookie) matchHost(host string) bool {
	host = strings.ToLower(host)
	if c.HostOnly {
		return host == c.Domain
	}
	return host == c.Domain || strings.HasSuffix(host, "."+c.Domain)
}

// Jar 实现了 http.CookieJar，可以直接交给 http.Client 使用
type Jar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	entries map[string]Cookie
	now     func() time.Time
}

func NewJar() *Jar {
	// cookiejar.New仅在options非法时报错
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &Jar{
		jar:     jar,
		entries: make(map[string]Cookie),
		now:     time.Now,
	}
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	for _, c := range cookies {
		entry := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if entry.Path == "" || !strings.HasPrefix(entry.Path, "/") {
			entry.Path = defaultPath(u.Path)
		}
		domain, hostOnly, ok := cookieDomain(u.Hostname(), c.Domain)
		if !ok {
			// cookiejar同样会丢弃该cookie，不能记录为已登录
			continue
		}
		entry.Domain, entry.HostOnly = domain, hostOnly

		switch {
		case c.MaxAge < 0:
			delete(j.entries, entry.key())
			continue
		case c.MaxAge > 0:
			entry.Expires = ExpiresAt(now.Add(time.Duration(c.MaxAge) * time.Second))
		case !c.Expires.IsZero():
			if !c.Expires.After(now) {
				delete(j.entries, entry.key())
				continue
			}
			entry.Expires = ExpiresAt(c.Expires)
		}
		j.entries[entry.key()] = entry
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// 返回host下名称以prefix开头、且尚未过期的cookie，按名称排序
func (j *Jar) Find(u *url.URL, prefix string) []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	var found []Cookie
	for _, c := range j.entries {
		if !c.matchHost(u.Hostname()) || !strings.HasPrefix(c.Name, prefix) {
			continue
		}
		if !c.Expires.ValidAt(now) {
			continue
		}
		found = append(found, c)
	}
	sort.Slice(found, func(a, b int) bool { return found[a].Name < found[b].Name })
	return found
}

// 导出当前所有未过期的cookie
func (j *Jar) Snapshot() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	out := make([]Cookie, 0, len(j.entries))
	for _, c := range j.entries {
		if c.Expires.ValidAt(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].key() < out[b].key() })
	return out
}

// 将持久化的cookie重新放入jar，已过期的直接丢弃
func (j *Jar) Restore(cookies []Cookie) {
	now := j.now()
	for _, c := range cookies {
		if c.Name == "" || c.Domain == "" || !c.Expires.ValidAt(now) {
			continue
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if !c.HostOnly {
			hc.Domain = c.Domain
		}
		if !c.Expires.Infinite() {
			hc.Expires = c.Expires.Time()
		}
		j.SetCookies(&url.URL{Scheme: "https", Host: c.Domain, Path: path}, []*http.Cookie{hc})
	}
}

// 按cookiejar的规则计算cookie所属域名：
// 不能是公共后缀（如 app），且请求的host必须属于该域名
func cookieDomain(host, domain string) (string, bool, bool) {
	host = strings.ToLower(host)
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	if domain == "" {
		return host, true, true
	}
	if net.ParseIP(host) != nil {
		return host, true, host == domain
	}
	if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
		return host, true, host == domain
	}
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return "", false, false
	}
	return domain, false, true
}

func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
