package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	BaseURL      string
	LoginURL     string
	LoginLink    string // 一次性登录链接，配置后优先使用
	Username     string
	Password     string
	CookiePrefix string
	Timeout      time.Duration
	UserAgent    string
}

// Manager 负责cookie jar的加载、登录以及保存
type Manager struct {
	logger *log.Logger
	store  *FileStore
	opts   Options
	base   *url.URL
}

func NewManager(logger *log.Logger, store *FileStore, opts Options) (*Manager, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fail to parse base url, err: %w", err)
	}
	if opts.LoginURL == "" {
		opts.LoginURL = strings.TrimRight(opts.BaseURL, "/") + "/user/login"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Manager{
		logger: logger,
		store:  store,
		opts:   opts,
		base:   base,
	}, nil
}

// 读取不到或者文件损坏时返回一个新的空jar，不会中断运行
func (m *Manager) LoadCredential() *Jar {
	jar, err := m.store.Load()
	if err != nil {
		entry := m.logger.WithError(err).WithField("path", m.store.Path())
		if os.IsNotExist(err) {
			entry.Info("cookie jar not found, creating a fresh one")
		} else {
			entry.Warn("fail to load cookie jar, creating a fresh one")
		}
		return NewJar()
	}
	return jar
}

func (m *Manager) SaveCredential(jar *Jar) error {
	if err := m.store.Save(jar); err != nil {
		return fmt.Errorf("fail to save cookie jar, err: %w", err)
	}
	m.logger.WithField("path", m.store.Path()).Debug("cookie jar saved")
	return nil
}

// 第一个匹配前缀的session cookie永不过期或尚未过期即视为已登录
func (m *Manager) Authenticated(jar *Jar) bool {
	return len(jar.Find(m.base, m.opts.CookiePrefix)) > 0
}

// 登录失败只记录日志，后续请求会因为未登录而自然失败
func (m *Manager) EnsureAuthenticated(ctx context.Context, jar *Jar) {
	if m.Authenticated(jar) {
		m.logger.Debug("session cookie still valid")
		return
	}

	m.logger.Info("cookie not found, or expired, fetching a new one")
	client := &http.Client{
		Jar:     jar,
		Timeout: m.opts.Timeout,
	}
	if err := m.login(ctx, client); err != nil {
		m.logger.WithError(err).Warn("fail to login")
		return
	}
	if !m.Authenticated(jar) {
		m.logger.Warn("login finished without a session cookie")
	}
}

func (m *Manager) login(ctx context.Context, client *http.Client) error {
	var (
		req *http.Request
		err error
	)
	if m.opts.LoginLink != "" {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, m.opts.LoginLink, nil)
	} else {
		form := url.Values{
			"name":    {m.opts.Username},
			"pass":    {m.opts.Password},
			"op":      {"Log in"},
			"form_id": {"user_login_form"},
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, m.opts.LoginURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return err
	}
	if m.opts.UserAgent != "" {
		req.Header.Set("User-Agent", m.opts.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("login responded with status %d", resp.StatusCode)
	}
	return nil
}
