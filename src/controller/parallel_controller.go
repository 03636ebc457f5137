package controller

import (
	"context"
	"sync"

	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/routingpool"
)

// 使用协程池同时抓取多个不同的页面
// 链接在放入队列之前就被认领（fetching），保证同一页面不会被两个worker同时抓取
type ParallelController struct {
	visitor
	worker uint32
}

// 单个页面的处理结果：页面及其历史版本上的hover，以及由它认领的子页面（按发现顺序）
type crawlNode struct {
	hovers   *entity.HoverSet
	children []entity.PageRef
}

func (c *ParallelController) Crawl(ctx context.Context, ref entity.PageRef) *entity.HoverSet {
	result := entity.NewHoverSet()
	if ctx.Err() != nil || !c.states.Claim(ref) {
		return result
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		pending sync.WaitGroup
		tasks   = make(chan entity.PageRef)
		nodes   = make(map[entity.PageRef]*crawlNode)
		crashed interface{} // worker中第一个panic，在调用方协程上重新抛出
	)

	// 启动新协程发送，防止worker互相阻塞
	enqueue := func(ref entity.PageRef) {
		pending.Add(1)
		go func() {
			select {
			case tasks <- ref:
			case <-workCtx.Done():
				c.states.Release(ref)
				pending.Done()
			}
		}()
	}

	pool := routingpool.NewSimpleRoutingPool(workCtx, c.worker, func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case ref := <-tasks:
				func() {
					defer pending.Done()
					defer func() {
						if r := recover(); r != nil {
							c.logger.WithField("ref", ref).WithField("panic", r).Error("crawl worker panicked")
							mu.Lock()
							if crashed == nil {
								crashed = r
							}
							mu.Unlock()
							cancel()
						}
					}()
					node := c.crawlOne(ctx, ref, enqueue)
					if node == nil {
						return
					}
					mu.Lock()
					nodes[ref] = node
					mu.Unlock()
				}()
			}
		}
	})
	if err := pool.Start(); err != nil {
		c.logger.WithError(err).Error("fail to start crawl workers")
		c.states.Release(ref)
		return result
	}

	enqueue(ref)
	pending.Wait()
	cancel()
	pool.Stop()

	// 协程池中的panic无法被上层recover，这里转交给调用方
	if crashed != nil {
		panic(crashed)
	}

	// 按认领关系先序合并，与串行深度优先的顺序一致，保证“第一次出现”稳定
	var merge func(entity.PageRef)
	merge = func(ref entity.PageRef) {
		node, ok := nodes[ref]
		if !ok {
			return
		}
		result.Union(node.hovers)
		for _, child := range node.children {
			merge(child)
		}
	}
	merge(ref)
	return result
}

func (c *ParallelController) crawlOne(ctx context.Context, ref entity.PageRef, enqueue func(entity.PageRef)) *crawlNode {
	parsed, ok := c.visit(ctx, ref)
	if !ok {
		return nil
	}

	hovers, candidates := c.expand(ctx, parsed)
	node := &crawlNode{hovers: hovers}
	for _, link := range candidates {
		if c.states.Claim(link) {
			node.children = append(node.children, link)
			enqueue(link)
		}
	}
	return node
}
