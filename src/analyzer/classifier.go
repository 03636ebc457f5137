package analyzer

import (
	"strings"

	"github.com/andrewyi/omnicrawler/src/entity"
)

// 判断链接是否属于需要抓取的wiki内容页面，只看链接本身的形式
// 1. 必须以内容前缀开头（/wiki/），站外链接、相对链接都会被忽略
// 2. 不能包含随机页面、修改记录、文件等管理页面的路径片段
type LinkClassifier struct {
	prefix   string
	excluded []string
}

func NewLinkClassifier(prefix string, excluded []string) LinkClassifier {
	return LinkClassifier{
		prefix:   prefix,
		excluded: excluded,
	}
}

func (c LinkClassifier) IsContent(href string) bool {
	if c.prefix == "" || !strings.HasPrefix(href, c.prefix) {
		return false
	}
	for _, ex := range c.excluded {
		if matchExcluded(href, ex) {
			return false
		}
	}
	return true
}

func (c LinkClassifier) Classify(href string) entity.LinkKind {
	if c.IsContent(href) {
		return entity.LinkContent
	}
	return entity.LinkIgnored
}

// 以:结尾的片段（File:、Special:）视为名称空间前缀，直接包含即匹配；
// 其余片段必须是完整的路径段，/changes 不会匹配 /changes_of_state
func matchExcluded(href string, fragment string) bool {
	if fragment == "" {
		return false
	}
	if strings.HasSuffix(fragment, ":") || strings.HasSuffix(fragment, "%3A") {
		return strings.Contains(href, fragment)
	}
	for s := href; ; {
		idx := strings.Index(s, fragment)
		if idx < 0 {
			return false
		}
		rest := s[idx+len(fragment):]
		if rest == "" || rest[0] == '/' || rest[0] == '?' {
			return true
		}
		s = s[idx+1:]
	}
}
