package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Nurshot/manga-backend/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create inserts the manga and its category links in one transaction and
// returns the new id.
func (r *Repo) Create(ctx context.Context, m models.Manga, categoryIDs []int64) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create manga: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO manga (title, author, description, cover_image, artist, language, genre, status, publisher, year, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.Title, m.Author,
		nullString(m.Description), nullString(m.CoverImage), nullString(m.Artist),
		nullString(m.Language), nullString(m.Genre), nullString(m.Status),
		nullString(m.Publisher), nullInt(m.Year), nullFloat(m.Rating))
	if err != nil {
		return 0, fmt.Errorf("insert manga: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("manga id: %w", err)
	}

	for _, catID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO manga_categories (manga_id, category_id) VALUES (?, ?)
		`, id, catID); err != nil {
			return 0, fmt.Errorf("link category %d: %w", catID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create manga: %w", err)
	}
	return id, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Manga, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, description, cover_image, artist, language, genre, status, publisher, year, rating, read_count
		FROM manga
		WHERE id = ?
	`, id)

	m, err := scanManga(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan manga: %w", err)
	}

	if m.Categories, err = r.categoriesFor(ctx, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

// BumpReadCount increments the manga's monotonically-increasing read
// counter.
func (r *Repo) BumpReadCount(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE manga SET read_count = read_count + 1 WHERE id = ?
	`, id); err != nil {
		return fmt.Errorf("bump read count: %w", err)
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM manga`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count manga: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, limit, offset int) ([]models.Manga, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, author, description, cover_image, artist, language, genre, status, publisher, year, rating, read_count
		FROM manga
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list manga: %w", err)
	}
	defer rows.Close()

	out := make([]models.Manga, 0, limit)
	for rows.Next() {
		m, err := scanManga(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan manga row: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	for i := range out {
		if out[i].Categories, err = r.categoriesFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update applies only the fields present in upd. A present CategoryIDs
// replaces the full link set. Returns false when the manga does not exist.
func (r *Repo) Update(ctx context.Context, id int64, upd models.MangaUpdate) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin update manga: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM manga WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("manga exists: %w", err)
	}

	var set []string
	var args []any
	appendSet := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if upd.Title != nil {
		appendSet("title", *upd.Title)
	}
	if upd.Author != nil {
		appendSet("author", *upd.Author)
	}
	if upd.Description != nil {
		appendSet("description", *upd.Description)
	}
	if upd.CoverImage != nil {
		appendSet("cover_image", *upd.CoverImage)
	}
	if upd.Artist != nil {
		appendSet("artist", *upd.Artist)
	}
	if upd.Language != nil {
		appendSet("language", *upd.Language)
	}
	if upd.Genre != nil {
		appendSet("genre", *upd.Genre)
	}
	if upd.Status != nil {
		appendSet("status", *upd.Status)
	}
	if upd.Publisher != nil {
		appendSet("publisher", *upd.Publisher)
	}
	if upd.Year != nil {
		appendSet("year", *upd.Year)
	}
	if upd.Rating != nil {
		appendSet("rating", *upd.Rating)
	}

	if len(set) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE manga SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
			return false, fmt.Errorf("update manga: %w", err)
		}
	}

	if upd.CategoryIDs != nil {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM manga_categories WHERE manga_id = ?
		`, id); err != nil {
			return false, fmt.Errorf("clear category links: %w", err)
		}
		for _, catID := range *upd.CategoryIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO manga_categories (manga_id, category_id) VALUES (?, ?)
			`, id, catID); err != nil {
				return false, fmt.Errorf("link category %d: %w", catID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit update manga: %w", err)
	}
	return true, nil
}

// Delete removes the manga; chapters and category links cascade.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM manga WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete manga: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) categoriesFor(ctx context.Context, mangaID int64) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.description, '')
		FROM categories c
		JOIN manga_categories mc ON mc.category_id = c.id
		WHERE mc.manga_id = ?
		ORDER BY c.name ASC
	`, mangaID)
	if err != nil {
		return nil, fmt.Errorf("categories for manga %d: %w", mangaID, err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanFunc func(dest ...any) error

func scanManga(scan scanFunc) (*models.Manga, error) {
	var (
		m           models.Manga
		description sql.NullString
		coverImage  sql.NullString
		artist      sql.NullString
		language    sql.NullString
		genre       sql.NullString
		status      sql.NullString
		publisher   sql.NullString
		year        sql.NullInt64
		rating      sql.NullFloat64
	)

	if err := scan(
		&m.ID, &m.Title, &m.Author, &description, &coverImage, &artist,
		&language, &genre, &status, &publisher, &year, &rating, &m.ReadCount,
	); err != nil {
		return nil, err
	}

	m.Description = description.String
	m.CoverImage = coverImage.String
	m.Artist = artist.String
	m.Language = language.String
	m.Genre = genre.String
	m.Status = status.String
	m.Publisher = publisher.String
	if year.Valid {
		m.Year = int(year.Int64)
	}
	if rating.Valid {
		m.Rating = rating.Float64
	}
	return &m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
