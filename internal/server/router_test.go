package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathfinder/internal/auth"
	"pathfinder/internal/colleges"
	"pathfinder/internal/saved"
	"pathfinder/pkg/database/dbtest"
	"pathfinder/pkg/models"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) (*testAPI, *colleges.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	static, err := colleges.LoadStaticRecords()
	require.NoError(t, err)

	router := NewRouter(Deps{
		DB:     db,
		Tokens: auth.TokenService{Secret: []byte("test-secret"), Issuer: "pathfinder", Duration: time.Hour},
		Index:  saved.NewSlugIndex(static),
	})
	return &testAPI{t: t, router: router}, colleges.NewRepo(db)
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_HealthAndReady(t *testing.T) {
	api, _ := newTestAPI(t)

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = api.do(http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, float64(0), body["ws_connections"])
}

func TestRouter_SavedCollegesFlow(t *testing.T) {
	api, repo := newTestAPI(t)

	_, err := repo.InsertMany(context.Background(), []models.College{{
		ID:       "64b7f0c2a1b2c3d4e5f60718",
		Name:     "Government Medical College",
		Location: "Karan Nagar",
		State:    "Jammu and Kashmir",
		Type:     "Medical",
		Rating:   4.6,
	}})
	require.NoError(t, err)

	w := api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "Student@Example.com", "name": "Student", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "student@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeBody[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, token)

	// unauthenticated requests never reach the store
	w = api.do(http.MethodGet, "/api/saved-colleges", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/saved-colleges", token, gin.H{"collegeId": "64b7f0c2a1b2c3d4e5f60718"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "College saved successfully", decodeBody[map[string]any](t, w)["message"])

	w = api.do(http.MethodPost, "/api/saved-colleges", token, gin.H{"collegeId": "college-government-college-of-arts"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/saved-colleges", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decodeBody[[]models.CollegeSummary](t, w)
	require.Len(t, items, 2)

	byID := map[string]models.CollegeSummary{}
	for _, it := range items {
		assert.Equal(t, it.ID, it.CollegeID)
		byID[it.ID] = it
	}
	assert.Equal(t, "Government Medical College", byID["64b7f0c2a1b2c3d4e5f60718"].Name)
	assert.Equal(t, "Government College of Arts", byID["college-government-college-of-arts"].Name)

	w = api.do(http.MethodPost, "/api/saved-colleges", token, gin.H{"collegeId": "64b7f0c2a1b2c3d4e5f60718"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "College unsaved successfully", decodeBody[map[string]any](t, w)["message"])

	w = api.do(http.MethodGet, "/api/saved-colleges", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeBody[[]models.CollegeSummary](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "college-government-college-of-arts", items[0].ID)

	w = api.do(http.MethodPost, "/api/saved-colleges", token, gin.H{"collegeId": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// logout revokes the token
	w = api.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(http.MethodGet, "/api/saved-colleges", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_PublicRoutes(t *testing.T) {
	api, repo := newTestAPI(t)

	static, err := colleges.LoadStatic()
	require.NoError(t, err)
	_, err = repo.InsertMany(context.Background(), static)
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/api/colleges?type=medical", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, float64(1), body["total"])

	w = api.do(http.MethodGet, "/api/timeline?type=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (a *testAPI) register(email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "correct-horse"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decodeBody[map[string]any](a.t, w)["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func TestRouter_SavedCollegesMissingUser(t *testing.T) {
	api, repo := newTestAPI(t)
	token := api.register("gone@example.com")

	_, err := repo.DB.Exec(`DELETE FROM users WHERE email = ?`, "gone@example.com")
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/api/saved-colleges", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	w = api.do(http.MethodPost, "/api/saved-colleges", token, gin.H{"collegeId": "c123"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SavedCollegesStoreFailureHidesDetails(t *testing.T) {
	api, repo := newTestAPI(t)
	token := api.register("student@example.com")

	w := api.do(http.MethodPost, "/api/saved-colleges", token, gin.H{"collegeId": "64b7f0c2a1b2c3d4e5f60718"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the live lookup for the saved store id now fails
	_, err := repo.DB.Exec(`DROP TABLE colleges`)
	require.NoError(t, err)

	w = api.do(http.MethodGet, "/api/saved-colleges", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())

	_, err = repo.DB.Exec(`DROP TABLE users`)
	require.NoError(t, err)

	w = api.do(http.MethodGet, "/api/saved-colleges", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func newRemoteAPI(t *testing.T, handler http.HandlerFunc) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := httptest.NewServer(handler)
	t.Cleanup(remote.Close)

	router := NewRouter(Deps{
		DB:     dbtest.New(t),
		Tokens: auth.TokenService{Secret: []byte("test-secret"), Issuer: "pathfinder", Duration: time.Hour},
		Remote: colleges.NewRemoteSource(remote.URL, time.Second),
	})
	return &testAPI{t: t, router: router}
}

func TestRouter_RemoteCollegesBypassDB(t *testing.T) {
	api := newRemoteAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"College Name":"Remote College","State":"Kerala","Rating":"4.5"},"skip me"]`))
	})

	// the local DB is empty, so any item must come from the remote feed
	w := api.do(http.MethodGet, "/api/colleges", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Total int              `json:"total"`
		Items []models.College `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Remote College", body.Items[0].Name)
	assert.InDelta(t, 4.5, body.Items[0].Rating, 1e-9)
}

func TestRouter_RemoteCollegesFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status 500", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"non-array body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newRemoteAPI(t, tt.handler)

			w := api.do(http.MethodGet, "/api/colleges", "", nil)
			assert.Equal(t, http.StatusBadGateway, w.Code)
			assert.JSONEq(t, `{"error":"Failed to fetch remote API"}`, w.Body.String())
		})
	}
}
