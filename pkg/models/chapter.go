package models

import "time"

// Chapter is one reading unit of a manga. Pages holds the ordered page
// references; its order is the authoritative reading order. Each element is
// either an absolute URL (staged mode) or a base64 payload (inline mode).
type Chapter struct {
	ID            int64     `json:"id"`
	MangaID       int64     `json:"manga_id"`
	Title         string    `json:"title"`
	ChapterNumber int       `json:"chapter_number"`
	ReleaseDate   time.Time `json:"release_date"`
	IsPublic      bool      `json:"is_public"`
	Pages         []string  `json:"pages,omitempty"`
}

// ChapterSummary is the listing shape without the page payload.
type ChapterSummary struct {
	ID            int64     `json:"id"`
	MangaID       int64     `json:"manga_id"`
	Title         string    `json:"title"`
	ChapterNumber int       `json:"chapter_number"`
	ReleaseDate   time.Time `json:"release_date"`
	IsPublic      bool      `json:"is_public"`
	MangaTitle    string    `json:"manga_title,omitempty"`
}

// ChapterUpdate carries one named optional field per updatable column;
// nil means "leave unchanged".
type ChapterUpdate struct {
	Title         *string    `json:"title"`
	ChapterNumber *int       `json:"chapter_number"`
	ReleaseDate   *time.Time `json:"release_date"`
	IsPublic      *bool      `json:"is_public"`
}
