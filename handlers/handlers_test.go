package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doghouse/catalog"
	"doghouse/config"
	"doghouse/database"
	"doghouse/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, repo *database.Repository, catalogJSON string) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dogs.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))

	prev := service.GlobalServices
	t.Cleanup(func() { service.GlobalServices = prev })
	require.NoError(t, service.InitServices(repo, catalog.New(path), nil, service.DogOptions{AutoSeed: false}))

	r := gin.New()
	RegisterRoutes(r)
	return r
}

func sqliteRepo(t *testing.T) *database.Repository {
	t.Helper()
	repo := database.NewRepository(&config.Config{
		DBDriver:           database.DriverSQLite,
		DatabaseURL:        filepath.Join(t.TempDir(), "dogs.db"),
		DBConnectTimeout:   3,
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	})
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func unconfiguredRepo() *database.Repository {
	return database.NewRepository(&config.Config{DBDriver: database.DriverPostgres})
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	}
	return w, payload
}

func TestHealthz(t *testing.T) {
	r := newRouter(t, unconfiguredRepo(), `[]`)

	w, body := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "unconfigured", body["storage"])
}

func TestGetDog_StorageUnavailable(t *testing.T) {
	r := newRouter(t, unconfiguredRepo(), `[{"name":"Fido"}]`)

	w, body := do(t, r, http.MethodGet, "/dog", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestGetDog_Empty(t *testing.T) {
	r := newRouter(t, sqliteRepo(t), `[]`)

	w, body := do(t, r, http.MethodGet, "/dog", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "empty", body["status"])
	assert.Contains(t, body["message"], "/save")
}

func TestSaveThenGetDog(t *testing.T) {
	r := newRouter(t, sqliteRepo(t), `[]`)

	w, body := do(t, r, http.MethodPost, "/save", `{"name":"Rex","image":"http://x/rex.png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved", body["status"])
	assert.NotZero(t, body["id"])

	w, body = do(t, r, http.MethodGet, "/dog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Rex", body["name"])
	assert.Equal(t, "http://x/rex.png", body["image"])
	assert.Equal(t, "db", body["source"])

	w, body = do(t, r, http.MethodGet, "/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "db", body["source"])
	assert.EqualValues(t, 1, body["total"])
	items := body["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "Rex", first["name"])
	assert.NotNil(t, first["id"])
	assert.NotEmpty(t, first["created_at"])
}

func TestSaveDog_Validation(t *testing.T) {
	r := newRouter(t, sqliteRepo(t), `[]`)

	for _, body := range []string{`{}`, `{"name":"  ","image":""}`, `{"name":`, `[1,2]`} {
		w, payload := do(t, r, http.MethodPost, "/save", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Equal(t, "error", payload["status"])
	}
}

func TestSaveDog_StorageUnavailable(t *testing.T) {
	r := newRouter(t, unconfiguredRepo(), `[]`)

	w, body := do(t, r, http.MethodPost, "/save", `{"image":"http://x/a.png"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", body["status"])
}

func TestSaveDog_WriteFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := database.NewRepository(
		&config.Config{DBDriver: database.DriverPostgres, DBHost: "h", DBName: "n", DBUser: "u", DBPassword: "p"},
		database.WithDialector(postgres.New(postgres.Config{Conn: sqlDB})),
	)
	r := newRouter(t, repo, `[]`)

	mock.ExpectQuery(`information_schema\.tables`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "dogs"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	w, body := do(t, r, http.MethodPost, "/save", `{"name":"Rex"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Failed to save dog", body["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetData_LocalFallback(t *testing.T) {
	r := newRouter(t, unconfiguredRepo(), `[{"name":"Fido","image":"http://a/f.png"}]`)

	w, body := do(t, r, http.MethodGet, "/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "local", body["source"])
	assert.EqualValues(t, 1, body["total"])

	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "Fido", "image": "http://a/f.png"}, items[0])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t, unconfiguredRepo(), `[]`)
	do(t, r, http.MethodGet, "/data", "")

	w, _ := do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "doghouse_retrieval_listings_total")
}
