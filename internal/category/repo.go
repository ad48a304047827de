package category

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

func (r *Repo) Create(ctx context.Context, name, description string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO categories (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category id: %w", err)
	}
	return id, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM categories WHERE id = ?
	`, id)

	var cat models.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Description); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &cat, nil
}

func (r *Repo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
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

// MangasFor returns the catalog entries linked to the category.
func (r *Repo) MangasFor(ctx context.Context, categoryID int64) ([]models.Manga, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.title, m.author, COALESCE(m.description, ''), COALESCE(m.cover_image, ''), m.read_count
		FROM manga m
		JOIN manga_categories mc ON mc.manga_id = m.id
		WHERE mc.category_id = ?
		ORDER BY m.title ASC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("mangas for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var out []models.Manga
	for rows.Next() {
		var m models.Manga
		if err := rows.Scan(&m.ID, &m.Title, &m.Author, &m.Description, &m.CoverImage, &m.ReadCount); err != nil {
			return nil, fmt.Errorf("scan manga row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Update applies only the fields present in upd. Returns false when the
// category does not exist.
func (r *Repo) Update(ctx context.Context, id int64, upd models.CategoryUpdate) (bool, error) {
	var set []string
	var args []any

	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if len(set) == 0 {
		cat, err := r.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		return cat != nil, nil
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
