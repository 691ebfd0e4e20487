package quiz

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"pathfinder/internal/apierr"
	"pathfinder/internal/auth"
	"pathfinder/internal/httpx"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/models"
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

// RegisterRoutes mounts the result history behind requireAuth and the
// recommendation endpoint behind optionalAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	rg.GET("/quiz-results", requireAuth, h.listResults)
	rg.POST("/quiz-results", requireAuth, h.createResult)
	rg.POST("/quiz-recommendations", optionalAuth, h.recommend)
}

func (h *Handler) userID(c *gin.Context, email string) (string, bool) {
	id, err := h.Repo.UserIDByEmail(c.Request.Context(), email)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return "", false
	}
	if id == "" {
		httpx.Fail(c, h.Log, apierr.NotFound("User not found"))
		return "", false
	}
	return id, true
}

func (h *Handler) listResults(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}
	userID, ok := h.userID(c, claims.Email)
	if !ok {
		return
	}

	items, err := h.Repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type createResultReq struct {
	Answers               json.RawMessage `json:"answers"`
	Results               json.RawMessage `json:"results"`
	StreamRecommendation  *string         `json:"streamRecommendation"`
	CareerRecommendations json.RawMessage `json:"careerRecommendations"`
}

func (h *Handler) createResult(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	var req createResultReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, h.Log, apierr.Validation("invalid json"))
		return
	}
	if !isArray(req.Answers) {
		httpx.Fail(c, h.Log, apierr.Validation("answers array is required"))
		return
	}

	userID, ok := h.userID(c, claims.Email)
	if !ok {
		return
	}

	res := models.QuizResult{
		UserID:  userID,
		Answers: req.Answers,
	}
	if len(req.Results) > 0 && !bytes.Equal(bytes.TrimSpace(req.Results), []byte("null")) {
		res.Results = req.Results
	}
	if req.StreamRecommendation != nil {
		res.StreamRecommendation = *req.StreamRecommendation
	}
	// anything but an array of strings stores as an empty list
	var careers []string
	if err := json.Unmarshal(req.CareerRecommendations, &careers); err == nil {
		res.CareerRecommendations = careers
	}

	if err := h.Repo.Create(c.Request.Context(), &res); err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type recommendReq struct {
	Answers   []any      `json:"answers"`
	Questions []Question `json:"questions"`
}

func (h *Handler) recommend(c *gin.Context) {
	var req recommendReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Answers == nil || req.Questions == nil {
		httpx.Fail(c, h.Log, apierr.Validation("Missing required data"))
		return
	}

	rec, category := Recommend(req.Answers, req.Questions)

	if claims := auth.MustGetClaims(c); claims != nil {
		h.store(c, claims.Email, req.Answers, rec)
	}

	h.Log.Debug("quiz recommendation", "category", category, "questions", len(req.Questions))
	c.JSON(http.StatusOK, rec)
}

// store records the recommendation for a signed-in caller. Failures are
// logged and never fail the request.
func (h *Handler) store(c *gin.Context, email string, answers []any, rec Recommendation) {
	ctx := c.Request.Context()

	userID, err := h.Repo.UserIDByEmail(ctx, email)
	if err != nil || userID == "" {
		if err != nil {
			h.Log.Warn("quiz result not stored", "error", err)
		}
		return
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		h.Log.Warn("quiz result not stored", "error", err)
		return
	}
	resultsJSON, err := json.Marshal(rec)
	if err != nil {
		h.Log.Warn("quiz result not stored", "error", err)
		return
	}

	err = h.Repo.Create(ctx, &models.QuizResult{
		UserID:                userID,
		Answers:               answersJSON,
		Results:               resultsJSON,
		StreamRecommendation:  rec.Stream,
		CareerRecommendations: rec.Careers,
	})
	if err != nil {
		h.Log.Warn("quiz result not stored", "user_id", userID, "error", err)
	}
}

func isArray(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '['
}
