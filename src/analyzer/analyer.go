package analyzer

import (
	"github.com/andrewyi/omnicrawler/src/entity"
)

type Analyzer interface {
	Analyze(entity.PageInfo) entity.ParsedPageInfo
}
