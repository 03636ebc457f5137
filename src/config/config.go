package config

type Config struct {
	Log struct {
		Context bool   `mapstructure:"context"`
		Level   string `mapstructure:"level"`
	} `mapstructure:"log"`

	Wiki struct {
		BaseURL          string   `mapstructure:"base_url"`
		Date             string   `mapstructure:"date"`
		SeedPage         string   `mapstructure:"seed_page"`
		ContentPrefix    string   `mapstructure:"content_prefix"`
		ExcludedPaths    []string `mapstructure:"excluded_paths"`
		HistorySelector  string   `mapstructure:"history_selector"`
		HoverTitleAttr   string   `mapstructure:"hover_title_attr"`
		HoverContentAttr string   `mapstructure:"hover_content_attr"`
	} `mapstructure:"wiki"`

	Session struct {
		CookieJar    string `mapstructure:"cookie_jar"`
		CookiePrefix string `mapstructure:"cookie_prefix"`
		LoginURL     string `mapstructure:"login_url"`
		LoginLink    string `mapstructure:"login_link"`
		Username     string `mapstructure:"username"`
		Password     string `mapstructure:"password"`
	} `mapstructure:"session"`

	Core struct {
		SeedFilePath  string `mapstructure:"seed_file_path"`
		Worker        uint32 `mapstructure:"worker"`
		RevisionDelay uint32 `mapstructure:"revision_delay"` // 毫秒
	} `mapstructure:"core"`

	Downloader struct {
		Timeout      uint32 `mapstructure:"timeout"` // 秒
		UserAgent    string `mapstructure:"user_agent"`
		MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	} `mapstructure:"downloader"`

	Storage struct {
		Location   string `mapstructure:"location"`
		HoversPath string `mapstructure:"hovers_path"`
		LinksPath  string `mapstructure:"links_path"`
	} `mapstructure:"storage"`

	Database struct {
		URL string `mapstructure:"url"` // 为空时不记录数据库
	} `mapstructure:"database"`
}

// 所有配置项的默认值，viper需要知道全部的key才能通过环境变量覆盖
var Defaults = map[string]interface{}{
	"log.context": false,
	"log.level":   "info",

	"wiki.base_url":           "https://omnipedia.app",
	"wiki.date":               "",
	"wiki.seed_page":          "Main_Page",
	"wiki.content_prefix":     "/wiki/",
	"wiki.excluded_paths":     []string{"Special:Random", "Special%3ARandom", "/changes", "File:", "File%3A"},
	"wiki.history_selector":   ".omnipedia-wiki-page-revisions",
	"wiki.hover_title_attr":   "data-omnipedia-attached-data-title",
	"wiki.hover_content_attr": "data-omnipedia-attached-data-content",

	"session.cookie_jar":    "./cookie-jar.omni",
	"session.cookie_prefix": "SSESS",
	"session.login_url":     "",
	"session.login_link":    "",
	"session.username":      "",
	"session.password":      "",

	"core.seed_file_path": "",
	"core.worker":         1,
	"core.revision_delay": 500,

	"downloader.timeout":        30,
	"downloader.user_agent":     "omnicrawler/0.1",
	"downloader.max_body_bytes": 10 * 1024 * 1024,

	"storage.location":    ".",
	"storage.hovers_path": "./omni_hovers.csv",
	"storage.links_path":  "./omni_links.csv",

	"database.url": "",
}

// 兼容旧版本使用的环境变量名
var LegacyEnv = map[string]string{
	"wiki.date":          "OMNIPEDIA_DATE",
	"session.login_link": "LOGIN_LINK",
	"session.username":   "OMNI_USERNAME",
	"session.password":   "OMNI_PASSWORD",
}
