package filestorage

import (
	"github.com/andrewyi/omnicrawler/src/entity"
)

type FileStorage interface {
	Store(entity.PageRef, string) error
}
