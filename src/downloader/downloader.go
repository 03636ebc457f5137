package downloader

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrewyi/omnicrawler/src/entity"
)

var ErrBodyTooLarge = errors.New("response body too large")

type Downloader interface {
	Download(context.Context, entity.PageRef) (entity.PageInfo, error)
}

// 单个页面下载失败，由调用方决定如何处理（记入failed set），这里不重试
type FetchError struct {
	Ref        entity.PageRef
	StatusCode int // 0 表示未收到http响应
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Ref, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
