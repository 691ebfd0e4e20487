package timeline

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pathfinder/internal/apierr"
	"pathfinder/internal/httpx"
	"pathfinder/pkg/logger"
)

type Handler struct {
	Repo *Repo
	Log  *logger.Logger
}

func NewHandler(repo *Repo, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list) // GET /timeline?type=&state=
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Type:  strings.ToLower(strings.TrimSpace(c.Query("type"))),
		State: c.Query("state"),
	}
	if f.Type != "" && !ValidType(f.Type) {
		httpx.Fail(c, h.Log, apierr.Validation("type must be one of admission, scholarship, exam, counseling"))
		return
	}

	items, err := h.Repo.ListActive(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
