package entity

import (
	"strings"
)

// 一个页面引用，对应某个日期版本下的某一篇wiki页面，例如 /wiki/2049/09/28/Article
// 相等性即字符串完全相等
type PageRef string

// 拆分出日期部分与页面名称，/wiki/2049/09/28/Article => 2049/09/28, Article
// 不符合 /wiki/<date>/<name> 形式时 ok 为 false
func (r PageRef) Split() (date string, name string, ok bool) {
	s := strings.TrimPrefix(string(r), "/wiki/")
	if s == string(r) {
		return "", "", false
	}
	idx := strings.LastIndex(s, "/")
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

type LinkKind uint8

const (
	LinkIgnored LinkKind = iota
	LinkContent
)

type Link struct {
	Ref  PageRef
	Kind LinkKind
}

type Hover struct {
	Highlight string
	Body      string
}

// 某个hover在某个页面上的一次出现，可直接作为map的key
type HoverOccurrence struct {
	Hover
	Page PageRef
}

type AnchorKind uint8

const (
	AnchorLink AnchorKind = iota + 1
	AnchorHover
)

// a标签解析结果，根据Kind只有Link或Hover之一有效
type Anchor struct {
	Kind  AnchorKind
	Link  Link
	Hover Hover
}

// 保存了下载的内容
type PageInfo struct {
	Ref         PageRef
	ResolvedRef PageRef // 跟随跳转后的实际路径
	State       uint32
	Remark      string // error description, if any
	Content     string
}

// 保存了分析后的内容，字段与PageInfo一致，额外包含解析出的链接、hover与历史版本链接
type ParsedPageInfo struct {
	Ref          PageRef
	ResolvedRef  PageRef
	State        uint32
	Remark       string
	Content      string
	Links        []PageRef // content link，已去重，保持出现顺序
	IgnoredLinks int
	Hovers       []HoverOccurrence
	Revisions    []PageRef // 最早的版本在前
}

// 一次运行中抓取失败的页面
type FailedPage struct {
	Ref    PageRef
	Reason string
}

// 汇总后的hover，按highlight分组
type AggregatedHover struct {
	Highlight string
	Body      string
	Pages     []PageRef
}

// 单个页面的处理结果，用于记录到数据库
type PageRecord struct {
	Ref        PageRef
	State      uint32
	Remark     string
	Links      []PageRef
	Revisions  []PageRef
	HoverCount int
}
