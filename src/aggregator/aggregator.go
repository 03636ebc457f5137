package aggregator

import (
	"github.com/andrewyi/omnicrawler/src/entity"
)

// 同一个highlight出现了与首次出现不同的body
type Divergence struct {
	Highlight string
	Canonical string
	Body      string
	Page      entity.PageRef
}

// 按highlight分组，首次出现的body作为该组的body，页面去重并保持出现顺序
// 分组之间同样按首次出现的顺序排列
func Aggregate(occurrences []entity.HoverOccurrence) ([]entity.AggregatedHover, []Divergence) {
	var (
		index       = make(map[string]int)
		pageSeen    = make(map[string]map[entity.PageRef]struct{})
		aggregated  []entity.AggregatedHover
		divergences []Divergence
	)

	for _, o := range occurrences {
		i, ok := index[o.Highlight]
		if !ok {
			i = len(aggregated)
			index[o.Highlight] = i
			pageSeen[o.Highlight] = make(map[entity.PageRef]struct{})
			aggregated = append(aggregated, entity.AggregatedHover{
				Highlight: o.Highlight,
				Body:      o.Body,
			})
		}

		group := &aggregated[i]
		if o.Body != group.Body {
			divergences = append(divergences, Divergence{
				Highlight: o.Highlight,
				Canonical: group.Body,
				Body:      o.Body,
				Page:      o.Page,
			})
		}
		if _, seen := pageSeen[o.Highlight][o.Page]; !seen {
			pageSeen[o.Highlight][o.Page] = struct{}{}
			group.Pages = append(group.Pages, o.Page)
		}
	}

	return aggregated, divergences
}
