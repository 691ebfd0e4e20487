package profile

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathfinder/internal/auth"
	"pathfinder/pkg/database/dbtest"
)

func newRouter(t *testing.T, email string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	dbtest.InsertUser(t, db, "u1", "student@example.com")

	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(auth.CtxClaimsKey, &auth.Claims{UserID: "u1", Email: email})
	})
	NewHandler(NewRepo(db), nil).RegisterRoutes(api)
	return r
}

func send(r http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/profile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProfile_GetDefaults(t *testing.T) {
	r := newRouter(t, "student@example.com")

	rec := send(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"student@example.com","interests":[]}`, rec.Body.String())
}

func TestProfile_PartialUpdate(t *testing.T) {
	r := newRouter(t, "student@example.com")

	rec := send(r, http.MethodPut, `{"name":"Asha","age":16,"interests":["math","art"],"class":"11"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(r, http.MethodPut, `{"state":"Jammu and Kashmir"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Profile updated successfully",
		"user": {
			"email": "student@example.com",
			"name": "Asha",
			"age": 16,
			"class": "11",
			"state": "Jammu and Kashmir",
			"interests": ["math", "art"]
		}
	}`, rec.Body.String())

	rec = send(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"Jammu and Kashmir"`)
}

func TestProfile_Validation(t *testing.T) {
	r := newRouter(t, "student@example.com")

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, `{"age":"sixteen"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, `{"age":-1}`).Code)
}

func TestProfile_UserMissing(t *testing.T) {
	r := newRouter(t, "ghost@example.com")

	rec := send(r, http.MethodGet, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPut, `{"name":"x"}`).Code)
}
