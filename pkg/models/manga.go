package models

// Manga is the catalog entry. Optional descriptive fields are kept nullable
// at the storage layer and empty here when unset.
type Manga struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Artist      string     `json:"artist,omitempty"`
	Language    string     `json:"language,omitempty"`
	Genre       string     `json:"genre,omitempty"`
	Status      string     `json:"status,omitempty"`
	Publisher   string     `json:"publisher,omitempty"`
	Year        int        `json:"year,omitempty"`
	Rating      float64    `json:"rating,omitempty"`
	ReadCount   int        `json:"read_count"`
	Categories  []Category `json:"categories,omitempty"`
}

// MangaUpdate carries one named optional field per updatable column; nil
// means "leave unchanged". CategoryIDs, when present, replaces the full
// category link set.
type MangaUpdate struct {
	Title       *string  `json:"title"`
	Author      *string  `json:"author"`
	Description *string  `json:"description"`
	CoverImage  *string  `json:"cover_image"`
	Artist      *string  `json:"artist"`
	Language    *string  `json:"language"`
	Genre       *string  `json:"genre"`
	Status      *string  `json:"status"`
	Publisher   *string  `json:"publisher"`
	Year        *int     `json:"year"`
	Rating      *float64 `json:"rating"`
	CategoryIDs *[]int64 `json:"category_ids"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
