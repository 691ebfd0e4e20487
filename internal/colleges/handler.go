package colleges

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pathfinder/pkg/logger"
)

type Handler struct {
	Repo   *Repo
	Remote Source // when set, the list endpoint proxies it instead of the DB
	Log    *logger.Logger
}

func NewHandler(repo *Repo, remote Source, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{Repo: repo, Remote: remote, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)        // GET /colleges
	rg.GET("/:id", h.getByID) // GET /colleges/:id
}

func (h *Handler) list(c *gin.Context) {
	if h.Remote != nil {
		h.listRemote(c)
		return
	}

	q := ListQuery{
		Q:      c.Query("q"),
		State:  c.Query("state"),
		Type:   c.Query("type"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}.normalized()

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		h.Log.Error("count colleges failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch colleges"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.Log.Error("list colleges failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch colleges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) listRemote(c *gin.Context) {
	items, err := h.Remote.FetchAll(c.Request.Context())
	if err != nil {
		h.Log.Error("remote colleges fetch failed", "source", h.Remote.Name(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch remote API"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	college, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Log.Error("get college failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if college == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, college)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
