// 简单的http GET下载，session通过client上的cookie jar保持
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/enum"
)

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

type SimpleDownloader struct {
	base         *url.URL
	userAgent    string
	maxBodyBytes int64

	client *http.Client
}

func NewSimpleDownloader(jar http.CookieJar, opts Options) (*SimpleDownloader, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("fail to parse base url, err: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 * 1024 * 1024
	}

	return &SimpleDownloader{
		base:         base,
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
		client: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
		},
	}, nil
}

func (s *SimpleDownloader) URL(ref entity.PageRef) string {
	return s.base.String() + string(ref)
}

func (s *SimpleDownloader) Download(ctx context.Context, ref entity.PageRef) (entity.PageInfo, error) {
	fail := func(status int, err error) (entity.PageInfo, error) {
		fetchErr := &FetchError{Ref: ref, StatusCode: status, Err: err}
		return entity.PageInfo{
			Ref:    ref,
			State:  enum.PageStateFail,
			Remark: fetchErr.Error(),
		}, fetchErr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(ref), nil)
	if err != nil {
		return fail(0, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 读掉body以便连接复用
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBodyBytes))
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	// 多读一个字节用于判断是否超出上限，超出的页面不做截断缓存
	content, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes+1))
	if err != nil {
		return fail(0, err)
	}
	if int64(len(content)) > s.maxBodyBytes {
		return fail(0, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, s.maxBodyBytes))
	}

	resolved := ref
	if resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.Path != "" {
		resolved = entity.PageRef(resp.Request.URL.EscapedPath())
	}

	return entity.PageInfo{
		Ref:         ref,
		ResolvedRef: resolved,
		State:       enum.PageStateSuccess,
		Content:     string(content),
	}, nil
}
