package config

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrMissingDate    = errors.New("wiki date is required")
	ErrInvalidBaseURL = errors.New("wiki base url is invalid")
)

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Wiki.Date) == "" {
		return ErrMissingDate
	}
	u, err := url.Parse(c.Wiki.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}
	return nil
}

// 登录地址未配置时使用 <base>/user/login
func (c *Config) LoginURL() string {
	if c.Session.LoginURL != "" {
		return c.Session.LoginURL
	}
	return strings.TrimRight(c.Wiki.BaseURL, "/") + "/user/login"
}
