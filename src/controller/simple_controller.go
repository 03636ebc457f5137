package controller

import (
	"context"

	"github.com/andrewyi/omnicrawler/src/entity"
)

// 串行、深度优先的抓取
type SimpleController struct {
	visitor
}

// 页面总数有限且visited只增不减，因此递归一定会结束，深度不超过页面总数
func (c *SimpleController) Crawl(ctx context.Context, ref entity.PageRef) *entity.HoverSet {
	if ctx.Err() != nil || !c.states.Claim(ref) {
		return entity.NewHoverSet()
	}

	parsed, ok := c.visit(ctx, ref)
	if !ok {
		return entity.NewHoverSet()
	}

	hovers, candidates := c.expand(ctx, parsed)
	for _, link := range candidates {
		hovers.Union(c.Crawl(ctx, link))
	}
	return hovers
}
