package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Nurshot/manga-backend/internal/testutil"
	"github.com/Nurshot/manga-backend/pkg/models"
)

func seedCategory(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	catID := seedCategory(t, db, "Action")

	id, err := repo.Create(ctx, models.Manga{
		Title:       "One Punch",
		Author:      "ONE",
		Description: "A hero for fun",
		Year:        2012,
		Rating:      4.5,
	}, []int64{catID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	m, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m == nil {
		t.Fatal("GetByID returned nil")
	}
	if m.Title != "One Punch" || m.Description != "A hero for fun" || m.Year != 2012 || m.Rating != 4.5 {
		t.Errorf("unexpected manga: %+v", m)
	}
	if len(m.Categories) != 1 || m.Categories[0].Name != "Action" {
		t.Errorf("categories = %v, want [Action]", m.Categories)
	}
}

func TestGetMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)

	m, err := repo.GetByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m != nil {
		t.Errorf("got %+v, want nil", m)
	}
}

func TestNullableFieldsStayEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.Manga{Title: "Bare", Author: "Anon"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	m, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m.Description != "" || m.Year != 0 || m.Rating != 0 {
		t.Errorf("optional fields not empty: %+v", m)
	}
}

func TestListAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		if _, err := repo.Create(ctx, models.Manga{Title: title, Author: "x"}, nil); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	total, err := repo.Count(ctx)
	if err != nil || total != 3 {
		t.Errorf("Count = (%d, %v), want (3, nil)", total, err)
	}

	page, err := repo.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].Title != "B" || page[1].Title != "C" {
		t.Errorf("page = %+v, want B then C", page)
	}
}

func TestBumpReadCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.Manga{Title: "T", Author: "A"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.BumpReadCount(ctx, id); err != nil {
			t.Fatalf("BumpReadCount: %v", err)
		}
	}
	m, _ := repo.GetByID(ctx, id)
	if m.ReadCount != 3 {
		t.Errorf("read count = %d, want 3", m.ReadCount)
	}
}

func TestUpdateNamedFieldsAndCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	cat1 := seedCategory(t, db, "Action")
	cat2 := seedCategory(t, db, "Drama")

	id, err := repo.Create(ctx, models.Manga{Title: "Old", Author: "A"}, []int64{cat1})
	if err != nil {
		t.Fatal(err)
	}

	title := "New"
	status := "completed"
	links := []int64{cat2}
	ok, err := repo.Update(ctx, id, models.MangaUpdate{
		Title:       &title,
		Status:      &status,
		CategoryIDs: &links,
	})
	if err != nil || !ok {
		t.Fatalf("Update = (%v, %v), want (true, nil)", ok, err)
	}

	m, _ := repo.GetByID(ctx, id)
	if m.Title != "New" || m.Status != "completed" || m.Author != "A" {
		t.Errorf("after update: %+v", m)
	}
	if len(m.Categories) != 1 || m.Categories[0].Name != "Drama" {
		t.Errorf("categories = %v, want [Drama] after replacement", m.Categories)
	}

	ok, err = repo.Update(ctx, 999, models.MangaUpdate{Title: &title})
	if err != nil || ok {
		t.Errorf("Update missing = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestDeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.Manga{Title: "T", Author: "A"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`
		INSERT INTO chapters (manga_id, title, chapter_number) VALUES (?, ?, ?)
	`, id, "Chapter 1", 1); err != nil {
		t.Fatalf("insert chapter: %v", err)
	}

	ok, err := repo.Delete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Delete = (%v, %v), want (true, nil)", ok, err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM chapters WHERE manga_id = ?`, id).Scan(&n); err != nil {
		t.Fatalf("count chapters: %v", err)
	}
	if n != 0 {
		t.Errorf("chapters left after delete = %d, want 0", n)
	}

	ok, err = repo.Delete(ctx, id)
	if err != nil || ok {
		t.Errorf("second Delete = (%v, %v), want (false, nil)", ok, err)
	}
}
