package filestorage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrewyi/omnicrawler/src/entity"
)

var ErrInvalidRef = errors.New("page ref is not a dated wiki page")

type SimpleFileStorage struct {
	location string
}

func NewSimpleFileStorage(location string) FileStorage {
	return &SimpleFileStorage{
		location: location,
	}
}

// 以日期作为文件夹（/替换为_），每个页面一个文件：
// /wiki/2049/09/28/Article => <location>/2049_09_28/Article.html
func (s *SimpleFileStorage) Path(ref entity.PageRef) (string, error) {
	date, name, ok := ref.Split()
	if !ok {
		return "", ErrInvalidRef
	}
	name = filepath.Base(strings.ReplaceAll(name, string(os.PathSeparator), "_"))
	if name == "." || name == ".." {
		return "", ErrInvalidRef
	}
	dir := strings.ReplaceAll(date, "/", "_")
	return filepath.Join(s.location, dir, name+".html"), nil
}

// 同一个页面重复写入会直接覆盖，可以安全重试
func (s *SimpleFileStorage) Store(ref entity.PageRef, content string) error {
	fp, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fp), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(content)
	return err
}
