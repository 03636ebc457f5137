package entity

// HoverSet 是保持插入顺序的HoverOccurrence集合
// 插入顺序即“首次出现”的顺序，汇总时以此确定canonical body
type HoverSet struct {
	index map[HoverOccurrence]struct{}
	items []HoverOccurrence
}

func NewHoverSet(occurrences ...HoverOccurrence) *HoverSet {
	s := &HoverSet{index: make(map[HoverOccurrence]struct{})}
	for _, o := range occurrences {
		s.Add(o)
	}
	return s
}

// 返回是否为新加入的元素
func (s *HoverSet) Add(o HoverOccurrence) bool {
	if s.index == nil {
		s.index = make(map[HoverOccurrence]struct{})
	}
	if _, ok := s.index[o]; ok {
		return false
	}
	s.index[o] = struct{}{}
	s.items = append(s.items, o)
	return true
}

// 合并另一个集合，相同的occurrence只保留一份
func (s *HoverSet) Union(other *HoverSet) *HoverSet {
	if other == nil {
		return s
	}
	for _, o := range other.items {
		s.Add(o)
	}
	return s
}

func (s *HoverSet) Contains(o HoverOccurrence) bool {
	_, ok := s.index[o]
	return ok
}

func (s *HoverSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *HoverSet) Items() []HoverOccurrence {
	if s == nil {
		return nil
	}
	out := make([]HoverOccurrence, len(s.items))
	copy(out, s.items)
	return out
}
