package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/authz"
	"github.com/mrskaggs/forkful/backend/internal/handlers"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/middleware"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"github.com/mrskaggs/forkful/backend/internal/services"
	"github.com/mrskaggs/forkful/backend/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

// newTestAPI wires the comment routes behind the real auth middleware with a
// static token map standing in for the JWT provider.
func newTestAPI(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Comment{}, &models.Block{}))

	service := services.NewCommentService(
		db,
		repositories.NewPostgresCommentRepository(db),
		repositories.NewPostgresBlockRepository(db),
		&repositories.StaticRecipeDirectory{IDs: map[uint]bool{42: true}},
		authz.NewPolicy(),
		zap.NewNop(),
	)

	provider := &identity.StaticProvider{Tokens: map[string]identity.Identity{
		userToken:  {UserID: 7, DisplayName: "alice", Role: identity.RoleUser},
		adminToken: {UserID: 100, DisplayName: "mod", Role: identity.RoleAdmin},
	}}

	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1", middleware.AuthMiddleware(provider))
	handlers.NewCommentHandler(service).RegisterCommentRoutes(api)
	return e, db
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCommentRoutesRequireAuth(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/recipes/42/comments", "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/recipes/42/comments", "bogus", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListComments(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/recipes/42/comments", userToken, `{"content":"tasty"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.EqualValues(t, 7, created.AuthorID)
	assert.Equal(t, "tasty", created.Content)

	rec = doJSON(e, http.MethodGet, "/api/v1/recipes/42/comments", userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page services.CommentPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Comments, 1)
	assert.EqualValues(t, 1, page.Total)
}

func TestCreateCommentRejectsBadInput(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/recipes/42/comments", userToken, `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/recipes/not-a-number/comments", userToken, `{"content":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/recipes/99/comments", userToken, `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCommentOwnership(t *testing.T) {
	e, db := newTestAPI(t)
	comment := models.Comment{RecipeID: 42, AuthorID: 999, Content: "not yours"}
	require.NoError(t, db.Create(&comment).Error)

	rec := doJSON(e, http.MethodPut, "/api/v1/comments/1", userToken, `{"content":"mine now"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_owner", body.Code)
}

func TestModerateCommentRequiresAdmin(t *testing.T) {
	e, db := newTestAPI(t)
	comment := models.Comment{RecipeID: 42, AuthorID: 7, Content: "borderline"}
	require.NoError(t, db.Create(&comment).Error)

	rec := doJSON(e, http.MethodPut, "/api/v1/moderate/comments/1", userToken, `{"action":"hide"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPut, "/api/v1/moderate/comments/1", adminToken, `{"action":"hide"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown actions fail struct validation before reaching the service.
	rec = doJSON(e, http.MethodPut, "/api/v1/moderate/comments/1", adminToken, `{"action":"vanish"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteComment(t *testing.T) {
	e, db := newTestAPI(t)
	comment := models.Comment{RecipeID: 42, AuthorID: 7, Content: "regret"}
	require.NoError(t, db.Create(&comment).Error)

	rec := doJSON(e, http.MethodDelete, "/api/v1/comments/1", userToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}
