// 提取a标签：带href的是链接，没有href但带有hover标题属性的是hover注释
// 历史版本链接从页面上的版本列表中单独提取
package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/enum"
	"github.com/andrewyi/omnicrawler/src/util"
)

type Options struct {
	Classifier       LinkClassifier
	HistorySelector  string
	HoverTitleAttr   string
	HoverContentAttr string
}

type SimpleAnalyzer struct {
	logger *log.Logger
	opts   Options
}

func NewSimpleAnalyzer(logger *log.Logger, opts Options) Analyzer {
	return &SimpleAnalyzer{
		logger: logger,
		opts:   opts,
	}
}

func (a *SimpleAnalyzer) Analyze(page entity.PageInfo) entity.ParsedPageInfo {
	var parsedPageInfo = entity.ParsedPageInfo{
		Ref:         page.Ref,
		ResolvedRef: page.ResolvedRef,
		State:       page.State,
		Remark:      page.Remark,
		Content:     page.Content,
	}

	if page.State != enum.PageStateSuccess {
		return parsedPageInfo
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Content))
	if err != nil {
		// 解析失败等同于没有找到任何内容，不作为抓取失败处理
		a.logger.WithError(err).WithField("ref", page.Ref).Warn("fail to parse page")
		return parsedPageInfo
	}

	var (
		links  = make(map[entity.PageRef]struct{})
		hovers = entity.NewHoverSet()
	)

	doc.Find("a").Each(func(index int, element *goquery.Selection) {
		anchor, ok := a.parseAnchor(element)
		if !ok {
			return
		}
		switch anchor.Kind {
		case entity.AnchorLink:
			if anchor.Link.Kind != entity.LinkContent {
				parsedPageInfo.IgnoredLinks++
				return
			}
			if _, exists := links[anchor.Link.Ref]; !exists {
				links[anchor.Link.Ref] = struct{}{}
				parsedPageInfo.Links = append(parsedPageInfo.Links, anchor.Link.Ref)
			}
		case entity.AnchorHover:
			hovers.Add(entity.HoverOccurrence{Hover: anchor.Hover, Page: page.Ref})
		}
	})
	parsedPageInfo.Hovers = hovers.Items()
	parsedPageInfo.Revisions = a.parseRevisions(doc)

	return parsedPageInfo
}

func (a *SimpleAnalyzer) parseAnchor(element *goquery.Selection) (entity.Anchor, bool) {
	if href, exists := element.Attr("href"); exists && href != "" {
		ref := util.StripFragment(href)
		return entity.Anchor{
			Kind: entity.AnchorLink,
			Link: entity.Link{
				Ref:  entity.PageRef(ref),
				Kind: a.opts.Classifier.Classify(ref),
			},
		}, true
	}

	if title, exists := element.Attr(a.opts.HoverTitleAttr); exists && title != "" {
		body, _ := element.Attr(a.opts.HoverContentAttr)
		return entity.Anchor{
			Kind: entity.AnchorHover,
			Hover: entity.Hover{
				Highlight: Decode(title),
				Body:      Decode(body),
			},
		}, true
	}

	return entity.Anchor{}, false
}

// 版本列表按日期从新到旧排列，这里反转为从旧到新
func (a *SimpleAnalyzer) parseRevisions(doc *goquery.Document) []entity.PageRef {
	if a.opts.HistorySelector == "" {
		return nil
	}

	var (
		seen      = make(map[entity.PageRef]struct{})
		revisions []entity.PageRef
	)
	doc.Find(a.opts.HistorySelector).Find("a[href]").Each(func(index int, element *goquery.Selection) {
		href, _ := element.Attr("href")
		href = util.StripFragment(href)
		if !a.opts.Classifier.IsContent(href) {
			return
		}
		ref := entity.PageRef(href)
		if _, exists := seen[ref]; exists {
			return
		}
		seen[ref] = struct{}{}
		revisions = append(revisions, ref)
	})

	for i, j := 0, len(revisions)-1; i < j; i, j = i+1, j-1 {
		revisions[i], revisions[j] = revisions[j], revisions[i]
	}
	return revisions
}

// 属性值在解析时已经解码过一次，wiki中hover内容存在二次编码的情况，这里再解码一次
func Decode(s string) string {
	return html.UnescapeString(s)
}
