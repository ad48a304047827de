package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrMalformedArchive means the uploaded payload is not a readable zip
// container. It aborts the whole ingestion request.
var ErrMalformedArchive = errors.New("malformed archive")

// imageExts is the page-candidate whitelist. Extensions outside it are
// silently excluded.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PageFile is one page image entry inside the archive.
type PageFile struct {
	Name string // full path within the archive
	file *zip.File
}

func (p PageFile) Read() ([]byte, error) {
	rc, err := p.file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.Name, err)
	}
	return data, nil
}

// ChapterFolder is one chapter's worth of pages. Pages are already in
// natural reading order.
type ChapterFolder struct {
	Path   string
	Number int
	Pages  []PageFile
}

// Extract opens the archive and groups its image entries per chapter
// folder. A chapter folder is any directory-marker entry; folders without
// an embedded digit are skipped since no chapter number can be derived.
// Folders come back in natural order, as do the pages inside each.
func Extract(data []byte) ([]ChapterFolder, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}

	byName := make(map[string]*zip.File, len(zr.File))
	var folderPaths []string
	for _, f := range zr.File {
		byName[f.Name] = f
		if strings.HasSuffix(f.Name, "/") {
			folderPaths = append(folderPaths, f.Name)
		}
	}

	var folders []ChapterFolder
	for _, folderPath := range Order(folderPaths) {
		number, ok := numberToken(folderPath)
		if !ok {
			continue
		}

		// Pages sort by their path relative to the folder, so the folder's
		// own digits never shadow the page number.
		var relNames []string
		for name := range byName {
			if !strings.HasPrefix(name, folderPath) || strings.HasSuffix(name, "/") {
				continue
			}
			if !imageExts[strings.ToLower(path.Ext(name))] {
				continue
			}
			relNames = append(relNames, strings.TrimPrefix(name, folderPath))
		}

		pages := make([]PageFile, 0, len(relNames))
		for _, rel := range Order(relNames) {
			name := folderPath + rel
			pages = append(pages, PageFile{Name: name, file: byName[name]})
		}

		folders = append(folders, ChapterFolder{
			Path:   folderPath,
			Number: number,
			Pages:  pages,
		})
	}

	return folders, nil
}
