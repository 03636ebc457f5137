package session

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

func TestJarSnapshotRestore(t *testing.T) {
	u, _ := url.Parse("https://omnipedia.app/wiki/2049/09/28/Main_Page")
	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	jar := NewJar()
	jar.SetCookies(u, []*http.Cookie{
		{Name: "SSESSabc", Value: "token", Path: "/", Expires: expires},
		{Name: "has_js", Value: "1"},
		{Name: "gone", Value: "x", MaxAge: -1},
	})

	snap := jar.Snapshot()
	require.Len(t, snap, 2)

	restored := NewJar()
	restored.Restore(snap)
	assert.Equal(t, snap, restored.Snapshot())

	found := restored.Find(u, "SSESS")
	require.Len(t, found, 1)
	assert.Equal(t, "token", found[0].Value)
	assert.True(t, found[0].Expires.Time().Equal(expires))

	var names []string
	for _, c := range restored.Cookies(u) {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"SSESSabc", "has_js"}, names)

	for _, c := range snap {
		if c.Name == "has_js" {
			assert.True(t, c.Expires.Infinite())
			assert.Equal(t, "/wiki/2049/09/28", c.Path)
			assert.True(t, c.HostOnly)
		}
	}
}

func TestJarRejectsForeignDomains(t *testing.T) {
	login, _ := url.Parse("https://omnipedia.app/user/login")
	sub, _ := url.Parse("https://www.omnipedia.app/")

	tests := []struct {
		name     string
		domain   string
		accepted bool
		hostOnly bool
	}{
		{name: "host only", domain: "", accepted: true, hostOnly: true},
		{name: "own domain", domain: ".omnipedia.app", accepted: true},
		{name: "public suffix", domain: "app", accepted: false},
		{name: "other site", domain: "example.com", accepted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jar := NewJar()
			jar.SetCookies(login, []*http.Cookie{{Name: "SSESSx", Value: "token", Path: "/", Domain: tt.domain}})

			found := jar.Find(login, "SSESS")
			if !tt.accepted {
				assert.Empty(t, found)
				assert.Empty(t, jar.Snapshot())
				assert.Empty(t, jar.Cookies(login))
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, "omnipedia.app", found[0].Domain)
			assert.Equal(t, tt.hostOnly, found[0].HostOnly)
			assert.Len(t, jar.Cookies(login), 1)
			assert.Equal(t, !tt.hostOnly, len(jar.Find(sub, "SSESS")) == 1)
		})
	}
}

func TestExpiryJSON(t *testing.T) {
	data, err := Expiry{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"Infinity"`, string(data))

	var e Expiry
	require.NoError(t, e.UnmarshalJSON([]byte(`"2049-09-28T10:00:00Z"`)))
	assert.False(t, e.Infinite())
	assert.Equal(t, 2049, e.Time().Year())

	require.NoError(t, e.UnmarshalJSON([]byte(`"Infinity"`)))
	assert.True(t, e.Infinite())
	assert.True(t, e.ValidAt(time.Now()))

	assert.Error(t, e.UnmarshalJSON([]byte(`"yesterday"`)))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie-jar.omni")
	store := NewFileStore(path)
	u, _ := url.Parse("https://omnipedia.app/")

	jar := NewJar()
	jar.SetCookies(u, []*http.Cookie{{Name: "SSESSabc", Value: "token", Path: "/"}})
	require.NoError(t, store.Save(jar))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Find(u, "SSESS"), 1)
}

func TestLoadCredentialFallsBackToEmptyJar(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		m, err := NewManager(newTestLogger(), NewFileStore(filepath.Join(dir, "missing")), Options{BaseURL: "https://omnipedia.app"})
		require.NoError(t, err)
		jar := m.LoadCredential()
		require.NotNil(t, jar)
		assert.Empty(t, jar.Snapshot())
	})

	t.Run("corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt")
		require.NoError(t, ioutil.WriteFile(path, []byte("{not json"), 0644))
		m, err := NewManager(newTestLogger(), NewFileStore(path), Options{BaseURL: "https://omnipedia.app"})
		require.NoError(t, err)
		jar := m.LoadCredential()
		require.NotNil(t, jar)
		assert.Empty(t, jar.Snapshot())
	})
}

type loginServer struct {
	*httptest.Server
	hits int32

	mu   sync.Mutex
	form url.Values
}

func (ls *loginServer) postedForm() url.Values {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.form
}

func newLoginServer(t *testing.T, status int) *loginServer {
	ls := &loginServer{}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ls.hits, 1)
		if r.URL.Path != "/user/login" {
			http.NotFound(w, r)
			return
		}
		assert.NoError(t, r.ParseForm())
		ls.mu.Lock()
		ls.form = r.PostForm
		ls.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:    "SSESS0123",
			Value:   "session",
			Path:    "/",
			Expires: time.Now().Add(time.Hour),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ls.Close)
	return ls
}

func newManager(t *testing.T, baseURL string) *Manager {
	m, err := NewManager(newTestLogger(), NewFileStore(filepath.Join(t.TempDir(), "jar")), Options{
		BaseURL:      baseURL,
		Username:     "tony",
		Password:     "secret",
		CookiePrefix: "SSESS",
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return m
}

func TestEnsureAuthenticatedLogsIn(t *testing.T) {
	ls := newLoginServer(t, http.StatusOK)
	m := newManager(t, ls.URL)
	jar := NewJar()

	m.EnsureAuthenticated(context.Background(), jar)

	assert.Equal(t, int32(1), atomic.LoadInt32(&ls.hits))
	form := ls.postedForm()
	assert.Equal(t, "tony", form.Get("name"))
	assert.Equal(t, "secret", form.Get("pass"))
	assert.Equal(t, "Log in", form.Get("op"))
	assert.Equal(t, "user_login_form", form.Get("form_id"))
	assert.True(t, m.Authenticated(jar))
}

func TestEnsureAuthenticatedSkipsValidCookie(t *testing.T) {
	ls := newLoginServer(t, http.StatusOK)
	m := newManager(t, ls.URL)
	u, _ := url.Parse(ls.URL)

	jar := NewJar()
	jar.SetCookies(u, []*http.Cookie{{Name: "SSESS0123", Value: "forever", Path: "/"}})

	m.EnsureAuthenticated(context.Background(), jar)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ls.hits))
}

func TestEnsureAuthenticatedRefreshesExpiredCookie(t *testing.T) {
	ls := newLoginServer(t, http.StatusOK)
	m := newManager(t, ls.URL)
	u, _ := url.Parse(ls.URL)

	past := time.Now().Add(-48 * time.Hour)
	jar := NewJar()
	jar.now = func() time.Time { return past }
	jar.SetCookies(u, []*http.Cookie{{Name: "SSESSold", Value: "stale", Path: "/", Expires: past.Add(time.Hour)}})
	require.Len(t, jar.Find(u, "SSESS"), 1)

	jar.now = time.Now
	assert.False(t, m.Authenticated(jar))

	m.EnsureAuthenticated(context.Background(), jar)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ls.hits))
	assert.True(t, m.Authenticated(jar))
}

func TestEnsureAuthenticatedAbsorbsFailure(t *testing.T) {
	ls := newLoginServer(t, http.StatusForbidden)
	m := newManager(t, ls.URL)
	jar := NewJar()

	m.EnsureAuthenticated(context.Background(), jar)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ls.hits))
	assert.False(t, m.Authenticated(jar))

	ls.Close()
	m.EnsureAuthenticated(context.Background(), jar)
	assert.False(t, m.Authenticated(jar))
}

func TestEnsureAuthenticatedUsesLoginLink(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "SSESS9", Value: "v", Path: "/"})
	}))
	defer srv.Close()

	m := newManager(t, srv.URL)
	m.opts.LoginLink = srv.URL + "/user/reset/1/abc/login"
	jar := NewJar()

	m.EnsureAuthenticated(context.Background(), jar)
	assert.Equal(t, "/user/reset/1/abc/login", gotPath.Load())
	assert.True(t, m.Authenticated(jar))
}
