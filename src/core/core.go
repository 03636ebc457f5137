package core

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/andrewyi/omnicrawler/src/aggregator"
	"github.com/andrewyi/omnicrawler/src/controller"
	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/session"
	"github.com/andrewyi/omnicrawler/src/util"
)

type CredentialManager interface {
	LoadCredential() *session.Jar
	EnsureAuthenticated(context.Context, *session.Jar)
	SaveCredential(*session.Jar) error
}

type Exporter interface {
	ExportHovers([]entity.AggregatedHover) error
	ExportLinks([]entity.PageRef) error
}

// 未处理的错误（包括panic）到达最上层时包装为FatalError
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

type Pipeline struct {
	Logger   *log.Logger
	Session  CredentialManager
	Exporter Exporter
	// controller依赖加载后的jar（下载时需要携带cookie），因此在运行时创建
	NewController func(*session.Jar) (controller.Controller, error)
}

// 无论成功、部分失败还是panic，最终都会保存cookie jar
func (p *Pipeline) Run(ctx context.Context, seeds []entity.PageRef) (err error) {
	jar := p.Session.LoadCredential()
	defer func() {
		if r := recover(); r != nil {
			err = &FatalError{Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			p.Logger.WithError(err).Error("crawl aborted")
		}
		if serr := p.Session.SaveCredential(jar); serr != nil {
			p.Logger.WithError(serr).Error("fail to save credential")
		}
	}()

	p.Session.EnsureAuthenticated(ctx, jar)

	ctrl, err := p.NewController(jar)
	if err != nil {
		return &FatalError{Err: err}
	}

	hovers := entity.NewHoverSet()
	for _, seed := range seeds {
		p.Logger.WithField("seed", seed).Info("crawling seed")
		hovers.Union(ctrl.Crawl(ctx, seed))
	}

	aggregated, divergences := aggregator.Aggregate(hovers.Items())
	for _, d := range divergences {
		p.Logger.WithFields(log.Fields{
			"highlight": d.Highlight,
			"page":      d.Page,
			"canonical": d.Canonical,
			"body":      d.Body,
		}).Warn("hover body differs from first occurrence")
	}

	visited := ctrl.Visited()
	if err := p.Exporter.ExportHovers(aggregated); err != nil {
		return &FatalError{Err: fmt.Errorf("fail to export hovers: %w", err)}
	}
	if err := p.Exporter.ExportLinks(visited); err != nil {
		return &FatalError{Err: fmt.Errorf("fail to export links: %w", err)}
	}

	ReportFailures(p.Logger, ctrl.Failed())
	p.Logger.WithFields(log.Fields{
		"visited": len(visited),
		"failed":  len(ctrl.Failed()),
		"hovers":  len(aggregated),
	}).Info("crawl finished")

	return ctx.Err()
}

func ReportFailures(logger *log.Logger, failed []entity.FailedPage) {
	if len(failed) == 0 {
		return
	}
	logger.WithField("count", len(failed)).Warn("some pages could not be fetched")
	for _, f := range failed {
		logger.WithField("ref", f.Ref).WithField("reason", f.Reason).Warn("unreachable page")
	}
}

// 默认的种子页面：/wiki/<date>/<page>
func SeedRef(date string, page string) entity.PageRef {
	return entity.PageRef(path.Join("/wiki", strings.Trim(date, "/"), page))
}

// 从种子文件中读取额外的页面，每行一个
func ReadSeeds(seedFilePath string) ([]entity.PageRef, error) {
	file, err := os.Open(seedFilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := util.ReadLines(file)
	if err != nil {
		return nil, err
	}

	refs := make([]entity.PageRef, 0, len(lines))
	for _, l := range lines {
		refs = append(refs, entity.PageRef(util.StripFragment(l)))
	}
	return refs, nil
}
