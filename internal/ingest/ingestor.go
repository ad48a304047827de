package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/Nurshot/manga-backend/internal/chapter"
	"github.com/Nurshot/manga-backend/internal/notify"
)

// PageResult records one page's outcome. Failed pages are omitted from the
// persisted list and counted in the summary instead of aborting the run.
type PageResult struct {
	Name string
	Ref  string
	Err  error
}

func (p PageResult) OK() bool { return p.Err == nil }

// Options are the orchestrator's policy knobs.
type Options struct {
	// AbortChapterOnPageError drops the whole chapter when any of its pages
	// fails, instead of persisting the pages that succeeded.
	AbortChapterOnPageError bool
	// ForceReingest rewrites the page list of chapters that already exist
	// instead of skipping them.
	ForceReingest bool
}

// Summary is the aggregate outcome of one ingestion request.
type Summary struct {
	ChaptersCreated []int `json:"chapters_created"`
	ChaptersUpdated []int `json:"chapters_updated,omitempty"`
	ChaptersSkipped []int `json:"chapters_skipped,omitempty"`
	ChaptersAborted []int `json:"chapters_aborted,omitempty"`
	PagesFailed     int   `json:"pages_failed,omitempty"`
}

// Ingestor runs the chapter ingestion pipeline: extract, dedup, transcode,
// stage, persist. One Run handles one uploaded archive, sequentially.
type Ingestor struct {
	Chapters  *chapter.Repo
	NewStager StagerFactory // nil selects inline base64 mode
	Hub       *notify.Hub   // optional
	Opts      Options
}

// Run ingests every chapter folder found in the archive. Archive-level
// failures and storage failures return an error; per-chapter and per-page
// failures degrade into the summary.
func (ing *Ingestor) Run(ctx context.Context, mangaID int64, archive []byte) (Summary, error) {
	var sum Summary

	folders, err := Extract(archive)
	if err != nil {
		return sum, err
	}

	// The remote session is opened lazily on the first staged page and
	// closed exactly once, no matter how the run ends.
	var stager Stager
	defer func() {
		if stager == nil {
			return
		}
		if err := stager.Close(); err != nil {
			log.Printf("[ingest] close staging session: %v", err)
		}
	}()

	for _, folder := range folders {
		exists, err := ing.Chapters.Exists(ctx, mangaID, folder.Number)
		if err != nil {
			return sum, err
		}
		if exists && !ing.Opts.ForceReingest {
			log.Printf("[ingest] manga %d chapter %d already ingested, skipping", mangaID, folder.Number)
			sum.ChaptersSkipped = append(sum.ChaptersSkipped, folder.Number)
			continue
		}

		if ing.NewStager != nil && stager == nil {
			stager, err = ing.NewStager()
			if err != nil {
				return sum, fmt.Errorf("open staging session: %w", err)
			}
		}

		refs, failed := ing.collectPages(stager, mangaID, folder)
		sum.PagesFailed += failed
		if failed > 0 && ing.Opts.AbortChapterOnPageError {
			log.Printf("[ingest] manga %d chapter %d aborted: %d of %d pages failed",
				mangaID, folder.Number, failed, len(folder.Pages))
			sum.ChaptersAborted = append(sum.ChaptersAborted, folder.Number)
			continue
		}

		if exists {
			ch, err := ing.Chapters.GetByNumber(ctx, mangaID, folder.Number)
			if err != nil {
				return sum, err
			}
			if ch == nil {
				// deleted since the Exists check; treat as skipped
				sum.ChaptersSkipped = append(sum.ChaptersSkipped, folder.Number)
				continue
			}
			if err := ing.Chapters.SetPages(ctx, ch.ID, refs); err != nil {
				return sum, err
			}
			sum.ChaptersUpdated = append(sum.ChaptersUpdated, folder.Number)
			continue
		}

		title := fmt.Sprintf("Chapter %d", folder.Number)
		id, err := ing.Chapters.Create(ctx, mangaID, folder.Number, title)
		if errors.Is(err, chapter.ErrDuplicateChapter) {
			// lost a race against a concurrent upload of the same chapter
			log.Printf("[ingest] manga %d chapter %d created concurrently, skipping", mangaID, folder.Number)
			sum.ChaptersSkipped = append(sum.ChaptersSkipped, folder.Number)
			continue
		}
		if err != nil {
			return sum, err
		}
		if err := ing.Chapters.SetPages(ctx, id, refs); err != nil {
			return sum, err
		}
		sum.ChaptersCreated = append(sum.ChaptersCreated, folder.Number)

		if ing.Hub != nil {
			go ing.Hub.BroadcastJSON(notify.NewChapterEvent(mangaID, folder.Number, len(refs)))
		}
	}

	return sum, nil
}

// collectPages processes the folder's pages in order and returns the
// successful references plus the failure count.
func (ing *Ingestor) collectPages(stager Stager, mangaID int64, folder ChapterFolder) ([]string, int) {
	refs := make([]string, 0, len(folder.Pages))
	failed := 0
	for _, page := range folder.Pages {
		res := ing.processPage(stager, mangaID, folder.Number, page)
		if !res.OK() {
			failed++
			log.Printf("[ingest] page %s skipped: %v", res.Name, res.Err)
			continue
		}
		refs = append(refs, res.Ref)
	}
	return refs, failed
}

func (ing *Ingestor) processPage(stager Stager, mangaID int64, chapterNumber int, page PageFile) PageResult {
	data, err := page.Read()
	if err != nil {
		return PageResult{Name: page.Name, Err: err}
	}

	if stager == nil {
		// inline mode: original bytes, base64-encoded, no transcode
		return PageResult{Name: page.Name, Ref: base64.StdEncoding.EncodeToString(data)}
	}

	out, ext, err := Transcode(data)
	if err != nil {
		return PageResult{Name: page.Name, Err: err}
	}

	base := path.Base(page.Name)
	fileName := strings.TrimSuffix(base, path.Ext(base)) + ext

	url, err := stager.Stage(mangaID, chapterNumber, fileName, out)
	if err != nil {
		return PageResult{Name: page.Name, Err: err}
	}
	return PageResult{Name: page.Name, Ref: url}
}
