package controller

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/andrewyi/omnicrawler/src/analyzer"
	"github.com/andrewyi/omnicrawler/src/downloader"
	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/enum"
	"github.com/andrewyi/omnicrawler/src/filestorage"
)

// 串行与并发版本共用的单页面处理逻辑
type visitor struct {
	logger     *log.Logger
	downloader downloader.Downloader
	analyzer   analyzer.Analyzer
	file       filestorage.FileStorage
	recorder   Recorder
	limiter    *rate.Limiter // 历史版本之间的限速，为空时不限速

	states *PageStates
}

func (v *visitor) Visited() []entity.PageRef {
	return v.states.Visited()
}

func (v *visitor) Failed() []entity.FailedPage {
	return v.states.Failed()
}

// 抓取一个已经认领（fetching）的页面，并将其置为终态
// 下载失败只记录到failed集合，不向上传递
func (v *visitor) visit(ctx context.Context, ref entity.PageRef) (entity.ParsedPageInfo, bool) {
	page, err := v.downloader.Download(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			// 取消导致的失败不算作页面失败
			v.states.Release(ref)
			return entity.ParsedPageInfo{}, false
		}
		v.states.MarkFailed(ref, err.Error())
		v.logger.WithError(err).WithField("ref", ref).Warn("fail to fetch page")
		v.record(entity.PageRecord{
			Ref:    ref,
			State:  enum.PageStateFail,
			Remark: err.Error(),
		})
		return entity.ParsedPageInfo{}, false
	}

	// 在继续递归之前置为visited，避免自引用或者互相引用导致重复抓取
	v.states.MarkVisited(ref)

	if err := v.file.Store(ref, page.Content); err != nil {
		// 缓存失败不影响后续处理
		v.logger.WithError(err).WithField("ref", ref).Error("fail to store page content")
	}

	parsed := v.analyzer.Analyze(page)
	v.record(entity.PageRecord{
		Ref:        ref,
		State:      enum.PageStateSuccess,
		Links:      parsed.Links,
		Revisions:  parsed.Revisions,
		HoverCount: len(parsed.Hovers),
	})

	v.logger.WithFields(log.Fields{
		"ref":       ref,
		"links":     len(parsed.Links),
		"hovers":    len(parsed.Hovers),
		"revisions": len(parsed.Revisions),
	}).Info("page crawled")
	return parsed, true
}

// 按从旧到新的顺序抓取页面的历史版本，历史版本与普通页面一样缓存、提取并标记
// 返回页面及其历史版本上的hover，以及尚未访问过的候选链接
func (v *visitor) expand(ctx context.Context, parsed entity.ParsedPageInfo) (*entity.HoverSet, []entity.PageRef) {
	hovers := entity.NewHoverSet(parsed.Hovers...)

	var (
		seen       = make(map[entity.PageRef]struct{})
		candidates []entity.PageRef
	)
	addLinks := func(links []entity.PageRef) {
		for _, l := range links {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			candidates = append(candidates, l)
		}
	}
	addLinks(parsed.Links)

	for _, rev := range parsed.Revisions {
		if ctx.Err() != nil {
			break
		}
		if !v.states.Claim(rev) {
			continue
		}
		if err := v.wait(ctx); err != nil {
			v.states.Release(rev)
			break
		}
		revParsed, ok := v.visit(ctx, rev)
		if !ok {
			continue
		}
		hovers.Union(entity.NewHoverSet(revParsed.Hovers...))
		addLinks(revParsed.Links)
	}

	// 去掉已经处理过（或正在处理）的页面
	filtered := candidates[:0]
	for _, c := range candidates {
		if v.states.State(c) == enum.PageStateUnvisited {
			filtered = append(filtered, c)
		}
	}
	return hovers, filtered
}

func (v *visitor) wait(ctx context.Context) error {
	if v.limiter == nil {
		return nil
	}
	return v.limiter.Wait(ctx)
}

func (v *visitor) record(record entity.PageRecord) {
	if v.recorder == nil {
		return
	}
	if err := v.recorder.RecordPage(record); err != nil {
		v.logger.WithError(err).WithField("ref", record.Ref).Error("fail to record page")
	}
}
