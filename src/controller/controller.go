package controller

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/andrewyi/omnicrawler/src/analyzer"
	"github.com/andrewyi/omnicrawler/src/downloader"
	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/filestorage"
)

type Controller interface {
	// 从ref开始递归抓取，返回ref、其历史版本以及所有后代页面上的hover
	Crawl(context.Context, entity.PageRef) *entity.HoverSet
	Visited() []entity.PageRef
	Failed() []entity.FailedPage
}

// 页面处理结果的记录，可以为空
type Recorder interface {
	RecordPage(entity.PageRecord) error
}

type Options struct {
	RevisionDelay time.Duration
	Worker        uint32
}

// worker大于1时使用并发版本
func NewController(
	logger *log.Logger,
	d downloader.Downloader,
	a analyzer.Analyzer,
	f filestorage.FileStorage,
	recorder Recorder,
	opts Options) Controller {

	v := visitor{
		logger:     logger,
		downloader: d,
		analyzer:   a,
		file:       f,
		recorder:   recorder,
		states:     NewPageStates(),
	}
	if opts.RevisionDelay > 0 {
		v.limiter = rate.NewLimiter(rate.Every(opts.RevisionDelay), 1)
	}

	if opts.Worker > 1 {
		return &ParallelController{visitor: v, worker: opts.Worker}
	}
	return &SimpleController{visitor: v}
}
