package chapter

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/Nurshot/manga-backend/internal/testutil"
	"github.com/Nurshot/manga-backend/pkg/models"
)

func seedManga(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO manga (title, author) VALUES (?, ?)`, "Seed Manga", "Author")
	if err != nil {
		t.Fatalf("insert manga: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestCreateAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, mangaID, 1)
	if err != nil || ok {
		t.Fatalf("Exists before create = (%v, %v), want (false, nil)", ok, err)
	}

	id, err := repo.Create(ctx, mangaID, 1, "Chapter 1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Fatal("Create returned zero id")
	}

	ok, err = repo.Exists(ctx, mangaID, 1)
	if err != nil || !ok {
		t.Errorf("Exists after create = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, mangaID, 5, "Chapter 5"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := repo.Create(ctx, mangaID, 5, "Chapter 5 again")
	if !errors.Is(err, ErrDuplicateChapter) {
		t.Errorf("got %v, want ErrDuplicateChapter", err)
	}
}

func TestCreateUnknownManga(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)

	_, err := repo.Create(context.Background(), 999, 1, "Chapter 1")
	if !errors.Is(err, ErrMangaNotFound) {
		t.Errorf("got %v, want ErrMangaNotFound", err)
	}
}

func TestSetPagesRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	id, err := repo.Create(ctx, mangaID, 1, "Chapter 1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ch, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(ch.Pages) != 0 {
		t.Errorf("new chapter pages = %v, want empty", ch.Pages)
	}

	pages := []string{"u/3.jpg", "u/1.jpg", "u/2.jpg"}
	if err := repo.SetPages(ctx, id, pages); err != nil {
		t.Fatalf("SetPages: %v", err)
	}

	ch, err = repo.GetByNumber(ctx, mangaID, 1)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if !reflect.DeepEqual(ch.Pages, pages) {
		t.Errorf("pages = %v, want %v (stored order preserved)", ch.Pages, pages)
	}
}

func TestSetPagesUnknownChapter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)

	if err := repo.SetPages(context.Background(), 42, []string{"x"}); err == nil {
		t.Error("SetPages on missing chapter succeeded, want error")
	}
}

func TestGetByNumberMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)

	ch, err := repo.GetByNumber(context.Background(), mangaID, 7)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if ch != nil {
		t.Errorf("got %+v, want nil for missing chapter", ch)
	}
}

func TestListByManga(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	for _, n := range []int{3, 1, 2} {
		if _, err := repo.Create(ctx, mangaID, n, "Chapter"); err != nil {
			t.Fatalf("create %d: %v", n, err)
		}
	}

	chapters, err := repo.ListByManga(ctx, mangaID)
	if err != nil {
		t.Fatalf("ListByManga: %v", err)
	}
	var got []int
	for _, ch := range chapters {
		got = append(got, ch.ChapterNumber)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("numbers = %v, want [1 2 3]", got)
	}
}

func TestUpdateOptionalFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	id, err := repo.Create(ctx, mangaID, 1, "Draft")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Final Title"
	public := true
	ok, err := repo.Update(ctx, id, models.ChapterUpdate{Title: &title, IsPublic: &public})
	if err != nil || !ok {
		t.Fatalf("Update = (%v, %v), want (true, nil)", ok, err)
	}

	ch, _ := repo.GetByID(ctx, id)
	if ch.Title != "Final Title" || !ch.IsPublic || ch.ChapterNumber != 1 {
		t.Errorf("after update: %+v", ch)
	}

	ok, err = repo.Update(ctx, 999, models.ChapterUpdate{Title: &title})
	if err != nil || ok {
		t.Errorf("Update missing = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestUpdateDuplicateNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, mangaID, 1, "One"); err != nil {
		t.Fatal(err)
	}
	id2, err := repo.Create(ctx, mangaID, 2, "Two")
	if err != nil {
		t.Fatal(err)
	}

	n := 1
	_, err = repo.Update(ctx, id2, models.ChapterUpdate{ChapterNumber: &n})
	if !errors.Is(err, ErrDuplicateChapter) {
		t.Errorf("got %v, want ErrDuplicateChapter", err)
	}
}

func TestDeleteByNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, mangaID, 1, "One"); err != nil {
		t.Fatal(err)
	}

	ok, err := repo.DeleteByNumber(ctx, mangaID, 1)
	if err != nil || !ok {
		t.Fatalf("DeleteByNumber = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = repo.DeleteByNumber(ctx, mangaID, 1)
	if err != nil || ok {
		t.Errorf("second DeleteByNumber = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestRemovePage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepo(db)
	mangaID := seedManga(t, db)
	ctx := context.Background()

	id, err := repo.Create(ctx, mangaID, 1, "One")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPages(ctx, id, []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}

	found, err := repo.RemovePage(ctx, id, 1)
	if err != nil || !found {
		t.Fatalf("RemovePage = (%v, %v), want (true, nil)", found, err)
	}
	ch, _ := repo.GetByID(ctx, id)
	if !reflect.DeepEqual(ch.Pages, []string{"a", "c"}) {
		t.Errorf("pages = %v, want [a c]", ch.Pages)
	}

	found, err = repo.RemovePage(ctx, id, 5)
	if !found || !errors.Is(err, ErrPageIndex) {
		t.Errorf("out of range = (%v, %v), want (true, ErrPageIndex)", found, err)
	}

	found, err = repo.RemovePage(ctx, 999, 0)
	if err != nil || found {
		t.Errorf("missing chapter = (%v, %v), want (false, nil)", found, err)
	}
}
