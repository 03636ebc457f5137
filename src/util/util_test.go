package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Wiki struct {
		Date    string `mapstructure:"date"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"wiki"`
	Core struct {
		Worker uint32 `mapstructure:"worker"`
	} `mapstructure:"core"`
}

var testDefaults = map[string]interface{}{
	"wiki.date":     "",
	"wiki.base_url": "https://omnipedia.app",
	"core.worker":   1,
}

func TestReadConfigFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("wiki:\n  date: 2049/09/28\ncore:\n  worker: 4\n"), 0644))

	var cfg testConfig
	require.NoError(t, ReadConfig(path, &cfg, testDefaults, nil))
	assert.Equal(t, "2049/09/28", cfg.Wiki.Date)
	assert.Equal(t, "https://omnipedia.app", cfg.Wiki.BaseURL)
	assert.Equal(t, uint32(4), cfg.Core.Worker)
}

func TestReadConfigMissingFileUsesEnv(t *testing.T) {
	os.Setenv("WIKI_BASE_URL", "http://localhost:8080")
	os.Setenv("OMNIPEDIA_DATE", "2049/10/01")
	defer os.Unsetenv("WIKI_BASE_URL")
	defer os.Unsetenv("OMNIPEDIA_DATE")

	var cfg testConfig
	err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"), &cfg, testDefaults,
		map[string]string{"wiki.date": "OMNIPEDIA_DATE"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Wiki.BaseURL)
	assert.Equal(t, "2049/10/01", cfg.Wiki.Date)
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("/wiki/a\n\n# comment\n  /wiki/b  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/wiki/a", "/wiki/b"}, lines)
}

func TestStripFragment(t *testing.T) {
	assert.Equal(t, "/wiki/2049/09/28/A", StripFragment("/wiki/2049/09/28/A#History"))
	assert.Equal(t, "/wiki/2049/09/28/A", StripFragment("/wiki/2049/09/28/A"))
}
