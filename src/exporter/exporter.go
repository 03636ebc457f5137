package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrewyi/omnicrawler/src/entity"
)

var HoverHeader = []string{"highlight", "body", "pages"}

// tab分隔，pages以逗号连接
func WriteHovers(w io.Writer, hovers []entity.AggregatedHover) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(HoverHeader); err != nil {
		return err
	}
	for _, h := range hovers {
		pages := make([]string, len(h.Pages))
		for i, p := range h.Pages {
			pages[i] = string(p)
		}
		if err := cw.Write([]string{h.Highlight, h.Body, strings.Join(pages, ",")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// 每行一个页面
func WriteLinks(w io.Writer, links []entity.PageRef) error {
	refs := make([]string, len(links))
	for i, l := range links {
		refs[i] = string(l)
	}
	_, err := io.WriteString(w, strings.Join(refs, "\n"))
	return err
}

type FileExporter struct {
	hoversPath string
	linksPath  string
}

func NewFileExporter(hoversPath string, linksPath string) *FileExporter {
	return &FileExporter{
		hoversPath: hoversPath,
		linksPath:  linksPath,
	}
}

func (e *FileExporter) ExportHovers(hovers []entity.AggregatedHover) error {
	return writeFile(e.hoversPath, func(w io.Writer) error {
		return WriteHovers(w, hovers)
	})
}

func (e *FileExporter) ExportLinks(links []entity.PageRef) error {
	return writeFile(e.linksPath, func(w io.Writer) error {
		return WriteLinks(w, links)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
