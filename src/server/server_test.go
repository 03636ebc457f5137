package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"
)

const mainPage = `<html><body>
<a href="/wiki/2049/09/28/Pinball">Pinball</a>
<a href="/wiki/2049/09/28/Special%3ARandom">Random</a>
<a href="/wiki/2049/09/28/Broken">Broken</a>
<a data-omnipedia-attached-data-title="Tony" data-omnipedia-attached-data-content="Tony &amp; Friends">Tony</a>
</body></html>`

const pinballPage = `<html><body>
<a data-omnipedia-attached-data-title="Tony" data-omnipedia-attached-data-content="Tony &amp; Friends">Tony</a>
<ol class="omnipedia-wiki-page-revisions">
  <li><a href="/wiki/2049/09/28/Pinball">28</a></li>
  <li><a href="/wiki/2049/09/27/Pinball">27</a></li>
</ol>
</body></html>`

func newWikiServer(t *testing.T) *httptest.Server {
	pages := map[string]string{
		"/wiki/2049/09/28/Main_Page": mainPage,
		"/wiki/2049/09/28/Pinball":   pinballPage,
		"/wiki/2049/09/27/Pinball":   `<html><body><a href="/wiki/2049/09/28/Main_Page">home</a></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/login" && r.Method == http.MethodPost {
			if r.FormValue("name") == "tony" && r.FormValue("pass") == "secret" {
				http.SetCookie(w, &http.Cookie{Name: "SSESSabc", Value: "token", Path: "/"})
			}
			return
		}
		if c, err := r.Cookie("SSESSabc"); err != nil || c.Value != "token" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		body, ok := pages[r.URL.EscapedPath()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStart(t *testing.T) {
	srv := newWikiServer(t)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	configBody := fmt.Sprintf(`
log:
  level: error
wiki:
  base_url: %s
session:
  cookie_jar: %s
  username: tony
  password: secret
core:
  revision_delay: 1
storage:
  location: %s
  hovers_path: %s
  links_path: %s
`, srv.URL,
		filepath.Join(dir, "cookie-jar.omni"),
		filepath.Join(dir, "cache"),
		filepath.Join(dir, "omni_hovers.csv"),
		filepath.Join(dir, "omni_links.csv"))
	require.NoError(t, ioutil.WriteFile(configPath, []byte(configBody), 0644))

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", configPath, "")
	set.String("date", "2049/09/28", "")
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	require.NoError(t, NewServer().Start(ctx))

	links, err := ioutil.ReadFile(filepath.Join(dir, "omni_links.csv"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"/wiki/2049/09/28/Main_Page",
		"/wiki/2049/09/28/Pinball",
		"/wiki/2049/09/27/Pinball",
	}, "\n"), string(links))

	hovers, err := ioutil.ReadFile(filepath.Join(dir, "omni_hovers.csv"))
	require.NoError(t, err)
	assert.Equal(t, "highlight\tbody\tpages\n"+
		"Tony\tTony & Friends\t/wiki/2049/09/28/Main_Page,/wiki/2049/09/28/Pinball\n", string(hovers))

	for _, p := range []string{"2049_09_28/Main_Page.html", "2049_09_28/Pinball.html", "2049_09_27/Pinball.html"} {
		assert.FileExists(t, filepath.Join(dir, "cache", filepath.FromSlash(p)))
	}

	jarData, err := ioutil.ReadFile(filepath.Join(dir, "cookie-jar.omni"))
	require.NoError(t, err)
	var jar struct {
		Cookies []struct {
			Key     string `json:"key"`
			Expires string `json:"expires"`
		} `json:"cookies"`
	}
	require.NoError(t, json.Unmarshal(jarData, &jar))
	require.Len(t, jar.Cookies, 1)
	assert.Equal(t, "SSESSabc", jar.Cookies[0].Key)
	assert.Equal(t, "Infinity", jar.Cookies[0].Expires)
}

func TestStartRequiresDate(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", filepath.Join(t.TempDir(), "missing.yaml"), "")
	set.String("date", "", "")
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	err := NewServer().Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wiki date is required")
}
