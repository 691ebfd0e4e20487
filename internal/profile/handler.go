package profile

import (
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.update)
}

func (h *Handler) get(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	p, err := h.Repo.Get(c.Request.Context(), claims.Email)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	if p == nil {
		httpx.Fail(c, h.Log, apierr.NotFound("User not found"))
		return
	}
	c.JSON(http.StatusOK, p)
}

// updateReq fields left out of the body keep their stored value.
type updateReq struct {
	Name             *string   `json:"name"`
	Age              *int      `json:"age"`
	Gender           *string   `json:"gender"`
	Class            *string   `json:"class"`
	Location         *string   `json:"location"`
	State            *string   `json:"state"`
	Interests        *[]string `json:"interests"`
	StreamPreference *string   `json:"streamPreference"`
	CareerGoals      *string   `json:"careerGoals"`
	Strengths        *[]string `json:"strengths"`
	Achievements     *[]string `json:"achievements"`
}

func (r updateReq) apply(p *models.Profile) {
	setString(&p.Name, r.Name)
	setString(&p.Gender, r.Gender)
	setString(&p.Class, r.Class)
	setString(&p.Location, r.Location)
	setString(&p.State, r.State)
	setString(&p.StreamPreference, r.StreamPreference)
	setString(&p.CareerGoals, r.CareerGoals)
	if r.Age != nil {
		age := *r.Age
		p.Age = &age
	}
	if r.Interests != nil {
		p.Interests = *r.Interests
	}
	if r.Strengths != nil {
		p.Strengths = *r.Strengths
	}
	if r.Achievements != nil {
		p.Achievements = *r.Achievements
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		httpx.Fail(c, h.Log, apierr.Unauthorized("Unauthorized"))
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, h.Log, apierr.Validation("invalid profile payload"))
		return
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 150) {
		httpx.Fail(c, h.Log, apierr.Validation("age out of range"))
		return
	}

	p, err := h.Repo.Update(c.Request.Context(), claims.Email, req.apply)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	if p == nil {
		httpx.Fail(c, h.Log, apierr.NotFound("User not found"))
		return
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": p})
}
