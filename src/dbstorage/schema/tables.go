// 数据库表，每次运行的每个页面一条记录，链接等1:N的信息通过json化方式存储
package schema

import (
	"time"
)

type Page struct {
	ID         uint64    `xorm:"bigint pk autoincr 'id'"`
	RunID      string    `xorm:"varchar(64) notnull unique(uk_run_ref) 'run_id'"`
	Ref        string    `xorm:"varchar(2048) notnull unique(uk_run_ref) 'ref'"`
	Date       string    `xorm:"varchar(64) notnull 'date'"`
	State      uint8     `xorm:"int 'state'"`
	Remark     string    `xorm:"text 'remark'"`
	Links      string    `xorm:"text 'links'"`
	Revisions  string    `xorm:"text 'revisions'"`
	HoverCount int       `xorm:"int 'hover_count'"`
	FetchedAt  time.Time `xorm:"datetime 'fetched_at'"`
	CreatedAt  time.Time `xorm:"created notnull 'created_at'"`
	UpdatedAt  time.Time `xorm:"updated notnull 'updated_at'"`
}

func (p *Page) TableName() string {
	return "pages"
}
