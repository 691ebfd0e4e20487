package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pathfinder/internal/apierr"
	"pathfinder/internal/httpx"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/models"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
	maxEmailLen    = 255
)

var (
	errInvalidJSON        = apierr.Validation("invalid json")
	errMissingCredentials = apierr.Validation("email and password required")
	errInvalidEmail       = apierr.Validation("invalid email")
	errPasswordLength     = apierr.Validation("password must be 8-72 chars")
	errBadCredentials     = apierr.Unauthorized("invalid credentials")
	errUserExists         = apierr.Conflict("User already exists")
)

// Handler is the identity provider: accounts, sessions and revocation.
type Handler struct {
	Repo   *Repo
	Tokens TokenService
	Log    *logger.Logger
}

func NewHandler(repo *Repo, tokens TokenService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{Repo: repo, Tokens: tokens, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	requireAuth := AuthMiddleware(h.Tokens, h.Repo, h.Log)

	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.POST("/change-password", requireAuth, h.changePassword)
	rg.POST("/logout", requireAuth, h.logout)
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// bindCredentials decodes the body and normalizes the email.
func bindCredentials(c *gin.Context) (credentials, error) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		return in, errInvalidJSON
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Password == "" {
		return in, errMissingCredentials
	}
	return in, nil
}

func checkPassword(p string) error {
	if len(p) < minPasswordLen || len(p) > maxPasswordLen {
		return errPasswordLength
	}
	return nil
}

func (h *Handler) register(c *gin.Context) {
	ctx := c.Request.Context()

	in, err := bindCredentials(c)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	if !strings.Contains(in.Email, "@") || len(in.Email) > maxEmailLen {
		httpx.Fail(c, h.Log, errInvalidEmail)
		return
	}
	if err := checkPassword(in.Password); err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	existing, err := h.Repo.GetByEmail(ctx, in.Email)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	if existing != nil {
		httpx.Fail(c, h.Log, errUserExists)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	u := models.User{ID: uuid.NewString(), Email: in.Email, PasswordHash: string(hash)}
	if err := h.Repo.CreateUser(ctx, u, in.Name); err != nil {
		// two racing signups: the unique email index rejects the second
		httpx.Fail(c, h.Log, err)
		return
	}

	h.Log.Info("user registered", "user_id", u.ID)
	h.respondWithToken(c, http.StatusCreated, &u, gin.H{"id": u.ID, "email": u.Email, "name": in.Name})
}

func (h *Handler) login(c *gin.Context) {
	in, err := bindCredentials(c)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	u, err := h.Repo.GetByEmail(c.Request.Context(), in.Email)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	// unknown email and wrong password look the same to the caller
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		httpx.Fail(c, h.Log, errBadCredentials)
		return
	}

	h.respondWithToken(c, http.StatusOK, u, gin.H{"id": u.ID, "email": u.Email})
}

func (h *Handler) respondWithToken(c *gin.Context, status int, u *models.User, user gin.H) {
	token, exp, err := h.Tokens.Sign(u)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(status, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// changePassword bumps the token version, so every session including the
// caller's must log in again.
func (h *Handler) changePassword(c *gin.Context) {
	ctx := c.Request.Context()
	claims := MustGetClaims(c)

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, h.Log, errInvalidJSON)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		httpx.Fail(c, h.Log, apierr.Validation("old and new password required"))
		return
	}
	if err := checkPassword(req.NewPassword); err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	u, err := h.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	if u == nil {
		httpx.Fail(c, h.Log, ErrUserNotFound)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
		httpx.Fail(c, h.Log, errBadCredentials)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	if err := h.Repo.UpdatePasswordAndBumpTokenVersion(ctx, u.ID, string(hash)); err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

func (h *Handler) logout(c *gin.Context) {
	claims := MustGetClaims(c)
	if err := h.Repo.BumpTokenVersion(c.Request.Context(), claims.UserID); err != nil {
		httpx.Fail(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
