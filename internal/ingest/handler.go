package ingest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nurshot/manga-backend/internal/catalog"
)

type Handler struct {
	Ingestor *Ingestor
	Manga    *catalog.Repo
}

func NewHandler(ing *Ingestor, mangaRepo *catalog.Repo) *Handler {
	return &Handler{Ingestor: ing, Manga: mangaRepo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/upload_chapters", h.uploadChapters)
}

func (h *Handler) uploadChapters(c *gin.Context) {
	mangaID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manga id"})
		return
	}

	m, err := h.Manga.GetByID(c.Request.Context(), mangaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get manga failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manga not found"})
		return
	}

	fh, err := c.FormFile("zip_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zip_file file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	sum, err := h.Ingestor.Run(c.Request.Context(), mangaID, data)
	if err != nil {
		if errors.Is(err, ErrMalformedArchive) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read zip archive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chapter upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Chapters uploaded successfully",
		"summary": sum,
	})
}
