package enum

const (
	// 页面在一次运行中的状态，只能单向迁移：
	// unvisited -> fetching -> success | fail
	// 终态（success/fail）不会再次进入fetching，失败的页面在本次运行内不重试
	PageStateUnvisited = 0
	PageStateFetching  = 1
	PageStateSuccess   = 2
	PageStateFail      = 3
)
