package controller

import (
	"sync"

	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/enum"
)

// PageStates 记录本次运行中每个页面的状态，是去重的唯一依据
// 状态只能 unvisited -> fetching -> success | fail，visited/failed集合只增不减
type PageStates struct {
	mu      sync.Mutex
	states  map[entity.PageRef]int
	visited []entity.PageRef
	failed  []entity.FailedPage
}

func NewPageStates() *PageStates {
	return &PageStates{
		states: make(map[entity.PageRef]int),
	}
}

// 只有unvisited的页面可以被认领，认领成功后进入fetching
func (p *PageStates) Claim(ref entity.PageRef) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.states[ref]; ok {
		return false
	}
	p.states[ref] = enum.PageStateFetching
	return true
}

// 放弃认领（例如ctx被取消），只对fetching状态生效
func (p *PageStates) Release(ref entity.PageRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.states[ref] == enum.PageStateFetching {
		delete(p.states, ref)
	}
}

func (p *PageStates) MarkVisited(ref entity.PageRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.states[ref] != enum.PageStateFetching {
		return
	}
	p.states[ref] = enum.PageStateSuccess
	p.visited = append(p.visited, ref)
}

func (p *PageStates) MarkFailed(ref entity.PageRef, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.states[ref] != enum.PageStateFetching {
		return
	}
	p.states[ref] = enum.PageStateFail
	p.failed = append(p.failed, entity.FailedPage{Ref: ref, Reason: reason})
}

func (p *PageStates) State(ref entity.PageRef) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[ref]
}

// 按访问顺序
func (p *PageStates) Visited() []entity.PageRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.PageRef, len(p.visited))
	copy(out, p.visited)
	return out
}

func (p *PageStates) Failed() []entity.FailedPage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.FailedPage, len(p.failed))
	copy(out, p.failed)
	return out
}
