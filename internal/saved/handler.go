package saved

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pathfinder/internal/apierr"
	"pathfinder/internal/auth"
	"pathfinder/internal/events"
	"pathfinder/internal/httpx"
	"pathfinder/pkg/logger"
)

// Handler serves the saved-colleges and saved-materials endpoints. Routes
// must be mounted behind auth.AuthMiddleware.
type Handler struct {
	Colleges  *Reconciler
	Materials *Materials
	Events    events.Publisher
	Log       *logger.Logger
}

func NewHandler(colleges *Reconciler, materials *Materials, pub events.Publisher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{Colleges: colleges, Materials: materials, Events: pub, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/saved-colleges", h.listColleges)
	rg.POST("/saved-colleges", h.toggleCollege)
	rg.GET("/saved-materials", h.listMaterials)
	rg.POST("/saved-materials", h.toggleMaterial)
}

func (h *Handler) listColleges(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	items, err := h.Colleges.List(c.Request.Context(), claims.Email)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type toggleCollegeReq struct {
	CollegeID any             `json:"collegeId"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (h *Handler) toggleCollege(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	var req toggleCollegeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, h.Log, apierr.Validation("invalid json"))
		return
	}
	// a non-string collegeId counts as missing
	collegeID, _ := req.CollegeID.(string)

	result, err := h.Colleges.Toggle(c.Request.Context(), claims.Email, collegeID, SanitizeMetadata(req.Metadata))
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	h.publish(events.TypeSavedCollege, claims.UserID, strings.TrimSpace(collegeID), result)

	msg := "College saved successfully"
	if !result.Saved() {
		msg = "College unsaved successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "saved": result.Saved()})
}

func (h *Handler) listMaterials(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	items, err := h.Materials.List(c.Request.Context(), claims.Email)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type toggleMaterialReq struct {
	MaterialID any `json:"materialId"`
}

func (h *Handler) toggleMaterial(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	var req toggleMaterialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, h.Log, apierr.Validation("invalid json"))
		return
	}
	materialID, _ := req.MaterialID.(string)

	result, err := h.Materials.Toggle(c.Request.Context(), claims.Email, materialID)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	h.publish(events.TypeSavedMaterial, claims.UserID, materialID, result)

	msg := "Material saved successfully"
	if !result.Saved() {
		msg = "Material unsaved successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "saved": result.Saved()})
}

func (h *Handler) publish(typ, userID, itemID string, result ToggleResult) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(events.SavedEvent{
		Type:   typ,
		UserID: userID,
		ItemID: itemID,
		Saved:  result.Saved(),
		At:     time.Now().UTC(),
	})
}
