package session

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

const snapshotVersion = "omnicrawler/1"

type snapshot struct {
	Version string   `json:"version"`
	Cookies []Cookie `json:"cookies"`
}

// 以json文件保存cookie jar
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Jar, error) {
	data, err := ioutil.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("fail to decode cookie jar %s: %w", s.path, err)
	}
	jar := NewJar()
	jar.Restore(snap.Cookies)
	return jar, nil
}

// 先写临时文件再rename，避免中途退出留下半个文件
func (s *FileStore) Save(jar *Jar) error {
	data, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		Cookies: jar.Snapshot(),
	})
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
