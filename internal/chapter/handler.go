package chapter

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nurshot/manga-backend/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/manga/:id/chapter", h.createForManga)
	rg.GET("/manga/:id/chapters", h.listForManga)
	rg.GET("/manga/:id/chapter/:num/images", h.getImages)
	rg.PUT("/manga/:id/chapter/:num/images", h.setImages)
	rg.DELETE("/manga/:id/chapter/:num/images/:index", h.removeImage)
	rg.DELETE("/manga/:id/chapter/:num", h.removeByNumber)
	rg.PUT("/chapter/:chapter_id", h.update)
	rg.DELETE("/chapter/:chapter_id", h.remove)
	rg.GET("/chapters/:chapter_id/images", h.getImagesByID)
	rg.GET("/latest-chapters", h.latest)
}

type createChapterReq struct {
	Title         string `json:"title"`
	ChapterNumber int    `json:"chapter_number"`
}

func (h *Handler) createForManga(c *gin.Context) {
	mangaID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga id"})
		return
	}

	var req createChapterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.ChapterNumber < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and chapter_number required"})
		return
	}

	id, err := h.Repo.Create(c.Request.Context(), mangaID, req.ChapterNumber, req.Title)
	if errors.Is(err, ErrMangaNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manga not found"})
		return
	}
	if errors.Is(err, ErrDuplicateChapter) {
		c.JSON(http.StatusConflict, gin.H{"error": "chapter number already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	ch, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || ch == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch created failed"})
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *Handler) listForManga(c *gin.Context) {
	mangaID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga id"})
		return
	}

	chapters, err := h.Repo.ListByManga(c.Request.Context(), mangaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if chapters == nil {
		chapters = []models.ChapterSummary{}
	}
	c.JSON(http.StatusOK, chapters)
}

// getImages returns the persisted page list verbatim, in array order.
func (h *Handler) getImages(c *gin.Context) {
	ch, ok := h.chapterByNumber(c)
	if !ok {
		return
	}
	pages := ch.Pages
	if pages == nil {
		pages = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"images": pages})
}

type setImagesReq struct {
	Images []string `json:"images"`
}

func (h *Handler) setImages(c *gin.Context) {
	ch, ok := h.chapterByNumber(c)
	if !ok {
		return
	}

	var req setImagesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Repo.SetPages(c.Request.Context(), ch.ID, req.Images); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update images failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Images updated successfully"})
}

func (h *Handler) removeImage(c *gin.Context) {
	ch, ok := h.chapterByNumber(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image index"})
		return
	}

	found, err := h.Repo.RemovePage(c.Request.Context(), ch.ID, index)
	if errors.Is(err, ErrPageIndex) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update images failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

func (h *Handler) removeByNumber(c *gin.Context) {
	mangaID, num, ok := pathMangaChapter(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.DeleteByNumber(c.Request.Context(), mangaID, num)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("chapter_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter id"})
		return
	}

	var upd models.ChapterUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), id, upd)
	if errors.Is(err, ErrDuplicateChapter) {
		c.JSON(http.StatusConflict, gin.H{"error": "chapter number already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}

	ch, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || ch == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch updated failed"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("chapter_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter id"})
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) getImagesByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("chapter_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter id"})
		return
	}

	ch, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}

	pages := ch.Pages
	if pages == nil {
		pages = []string{}
	}
	c.JSON(http.StatusOK, pages)
}

func (h *Handler) latest(c *gin.Context) {
	limit := 6
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	chapters, err := h.Repo.Latest(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if chapters == nil {
		chapters = []models.ChapterSummary{}
	}
	c.JSON(http.StatusOK, chapters)
}

// chapterByNumber loads the chapter addressed by the :id/:num path pair,
// writing the error response itself when it cannot.
func (h *Handler) chapterByNumber(c *gin.Context) (*models.Chapter, bool) {
	mangaID, num, ok := pathMangaChapter(c)
	if !ok {
		return nil, false
	}

	ch, err := h.Repo.GetByNumber(c.Request.Context(), mangaID, num)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return nil, false
	}
	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return nil, false
	}
	return ch, true
}

func pathMangaChapter(c *gin.Context) (int64, int, bool) {
	mangaID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga id"})
		return 0, 0, false
	}
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter number"})
		return 0, 0, false
	}
	return mangaID, num, true
}
