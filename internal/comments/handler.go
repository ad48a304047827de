package comments

import (
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
	rg.POST("", h.create)
	rg.GET("", h.list)
}

type createReq struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	MangaID  int64  `json:"manga_id"`
	Text     string `json:"text"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" || req.MangaID <= 0 || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, manga_id and text required"})
		return
	}

	cm := models.Comment{
		UserID:   req.UserID,
		Username: req.Username,
		MangaID:  req.MangaID,
		Text:     req.Text,
	}

	created, err := h.Repo.Create(c.Request.Context(), cm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment could not be created"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	mangaID, err := strconv.ParseInt(c.Query("manga_id"), 10, 64)
	if err != nil || mangaID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "manga_id required"})
		return
	}

	out, err := h.Repo.ListByManga(c.Request.Context(), mangaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if out == nil {
		out = []models.Comment{}
	}
	c.JSON(http.StatusOK, out)
}
