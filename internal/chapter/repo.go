package chapter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/Nurshot/manga-backend/pkg/models"
)

// ErrDuplicateChapter means a chapter with the same (manga, number) already
// exists. The UNIQUE constraint is the authoritative guard against races.
var ErrDuplicateChapter = errors.New("chapter already exists")

// ErrPageIndex means a page index is outside the chapter's page list.
var ErrPageIndex = errors.New("page index out of range")

// ErrMangaNotFound means the owning manga id does not exist.
var ErrMangaNotFound = errors.New("manga not found")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Exists reports whether a chapter with this number is already persisted
// for the manga.
func (r *Repo) Exists(ctx context.Context, mangaID int64, number int) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM chapters WHERE manga_id = ? AND chapter_number = ?
	`, mangaID, number).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chapter exists: %w", err)
	}
	return true, nil
}

// Create inserts a chapter with an empty page list and returns its id.
func (r *Repo) Create(ctx context.Context, mangaID int64, number int, title string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO chapters (manga_id, title, chapter_number)
		VALUES (?, ?, ?)
	`, mangaID, title, number)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) {
			switch se.ExtendedCode {
			case sqlite3.ErrConstraintUnique:
				return 0, ErrDuplicateChapter
			case sqlite3.ErrConstraintForeignKey:
				return 0, ErrMangaNotFound
			}
		}
		return 0, fmt.Errorf("create chapter: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create chapter id: %w", err)
	}
	return id, nil
}

// SetPages atomically replaces the chapter's full page list. The single
// UPDATE is the final commit step per chapter; readers never see a partial
// list.
func (r *Repo) SetPages(ctx context.Context, chapterID int64, pages []string) error {
	if pages == nil {
		pages = []string{}
	}
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("marshal pages: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE chapters SET pages = ? WHERE id = ?
	`, string(pagesJSON), chapterID)
	if err != nil {
		return fmt.Errorf("set pages: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("set pages: chapter %d not found", chapterID)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, manga_id, title, chapter_number, release_date, is_public, pages
		FROM chapters
		WHERE id = ?
	`, id)
	return scanChapter(row)
}

func (r *Repo) GetByNumber(ctx context.Context, mangaID int64, number int) (*models.Chapter, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, manga_id, title, chapter_number, release_date, is_public, pages
		FROM chapters
		WHERE manga_id = ? AND chapter_number = ?
	`, mangaID, number)
	return scanChapter(row)
}

func scanChapter(row *sql.Row) (*models.Chapter, error) {
	var (
		ch        models.Chapter
		pagesJSON string
	)
	if err := row.Scan(
		&ch.ID, &ch.MangaID, &ch.Title, &ch.ChapterNumber, &ch.ReleaseDate, &ch.IsPublic, &pagesJSON,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan chapter: %w", err)
	}
	if err := json.Unmarshal([]byte(pagesJSON), &ch.Pages); err != nil {
		return nil, fmt.Errorf("parse pages for chapter %d: %w", ch.ID, err)
	}
	return &ch, nil
}

// ListByManga returns the manga's chapters without their page payloads,
// ordered by chapter number.
func (r *Repo) ListByManga(ctx context.Context, mangaID int64) ([]models.ChapterSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, manga_id, title, chapter_number, release_date, is_public
		FROM chapters
		WHERE manga_id = ?
		ORDER BY chapter_number ASC
	`, mangaID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var out []models.ChapterSummary
	for rows.Next() {
		var ch models.ChapterSummary
		if err := rows.Scan(&ch.ID, &ch.MangaID, &ch.Title, &ch.ChapterNumber, &ch.ReleaseDate, &ch.IsPublic); err != nil {
			return nil, fmt.Errorf("scan chapter row: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Latest returns the newest public chapters across all manga, joined with
// the owning manga's title.
func (r *Repo) Latest(ctx context.Context, limit int) ([]models.ChapterSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 6
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.manga_id, c.title, c.chapter_number, c.release_date, c.is_public, m.title
		FROM chapters c
		JOIN manga m ON m.id = c.manga_id
		ORDER BY c.release_date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("latest chapters: %w", err)
	}
	defer rows.Close()

	var out []models.ChapterSummary
	for rows.Next() {
		var ch models.ChapterSummary
		if err := rows.Scan(&ch.ID, &ch.MangaID, &ch.Title, &ch.ChapterNumber, &ch.ReleaseDate, &ch.IsPublic, &ch.MangaTitle); err != nil {
			return nil, fmt.Errorf("scan latest row: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Update applies only the fields present in upd. Returns false when the
// chapter does not exist.
func (r *Repo) Update(ctx context.Context, id int64, upd models.ChapterUpdate) (bool, error) {
	var set []string
	var args []any

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.ChapterNumber != nil {
		set = append(set, "chapter_number = ?")
		args = append(args, *upd.ChapterNumber)
	}
	if upd.ReleaseDate != nil {
		set = append(set, "release_date = ?")
		args = append(args, *upd.ReleaseDate)
	}
	if upd.IsPublic != nil {
		set = append(set, "is_public = ?")
		args = append(args, *upd.IsPublic)
	}
	if len(set) == 0 {
		// nothing to change; report existence only
		return r.exists(ctx, id)
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE chapters SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return false, ErrDuplicateChapter
		}
		return false, fmt.Errorf("update chapter: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM chapters WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chapter exists: %w", err)
	}
	return true, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM chapters WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete chapter: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) DeleteByNumber(ctx context.Context, mangaID int64, number int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM chapters WHERE manga_id = ? AND chapter_number = ?
	`, mangaID, number)
	if err != nil {
		return false, fmt.Errorf("delete chapter by number: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemovePage deletes one page reference by its list index. The
// read-modify-write runs in a transaction so concurrent edits cannot
// interleave. Returns false when the chapter does not exist.
func (r *Repo) RemovePage(ctx context.Context, chapterID int64, index int) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin remove page: %w", err)
	}
	defer tx.Rollback()

	var pagesJSON string
	err = tx.QueryRowContext(ctx, `
		SELECT pages FROM chapters WHERE id = ?
	`, chapterID).Scan(&pagesJSON)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load pages: %w", err)
	}

	var pages []string
	if err := json.Unmarshal([]byte(pagesJSON), &pages); err != nil {
		return false, fmt.Errorf("parse pages for chapter %d: %w", chapterID, err)
	}
	if index < 0 || index >= len(pages) {
		return true, ErrPageIndex
	}

	pages = append(pages[:index], pages[index+1:]...)
	updated, err := json.Marshal(pages)
	if err != nil {
		return false, fmt.Errorf("marshal pages: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE chapters SET pages = ? WHERE id = ?
	`, string(updated), chapterID); err != nil {
		return false, fmt.Errorf("update pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit remove page: %w", err)
	}
	return true, nil
}
