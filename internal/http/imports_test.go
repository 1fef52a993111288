package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/divelog/internal/database"
	"github.com/mkarlsen/divelog/internal/database/dives"
	"github.com/mkarlsen/divelog/internal/services"
)

const sampleLog = `<dives>
  <dive number="1" date="2024-03-02" time="09:15:00" duration="41:00 min">
    <divecomputer model="Suunto D5">
      <depth max="24.1 m" mean="14.8 m"/>
      <sample time="0:10 min" depth="2.4 m"/>
      <sample time="0:20 min" depth="5.1 m"/>
    </divecomputer>
  </dive>
</dives>`

func setupImportTest(t *testing.T) (*gin.Engine, *dives.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_imports_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := dives.NewRepository(db.DB)
	router := NewRouter(RouterConfig{
		Database:      db,
		TripReader:    repo,
		ImportService: services.NewImportService(repo),
		Version:       "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, repo, cleanup
}

func uploadLog(t *testing.T, router *gin.Engine, name, content, query string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("log_file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/imports"+query, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)
	return w
}

func TestLogImportController_Import(t *testing.T) {
	t.Run("imports a dive log into a new trip", func(t *testing.T) {
		router, repo, cleanup := setupImportTest(t)
		defer cleanup()

		w := uploadLog(t, router, "d5.ssrf", sampleLog, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var result LogImportResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.DivesImported)
		assert.Equal(t, 2, result.SamplesStored)
		assert.Equal(t, "Imported dives 2024-03-02", result.TripName)

		stored, err := repo.GetDivesForTrip(result.TripID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 2460, stored[0].DurationSeconds)
	})

	t.Run("rejects unsupported formats", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t)
		defer cleanup()

		w := uploadLog(t, router, "log.csv", "a,b,c", "")
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

		var result LogImportResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("rejects malformed trip id", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t)
		defer cleanup()

		w := uploadLog(t, router, "d5.ssrf", sampleLog, "?trip_id=abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("accepts raw body with filename parameter", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/imports?filename=d5.ssrf", strings.NewReader(sampleLog))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result LogImportResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.DivesImported)
	})

	t.Run("requires a file", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/imports", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTripsController(t *testing.T) {
	t.Run("lists trips and their dives", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t)
		defer cleanup()

		w := uploadLog(t, router, "d5.ssrf", sampleLog, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/trips", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var trips struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
		assert.Equal(t, 1, trips.Count)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/trips/1/dives", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var diveList struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &diveList))
		assert.Equal(t, 1, diveList.Count)
	})

	t.Run("returns 404 for unknown trip", func(t *testing.T) {
		router, _, cleanup := setupImportTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/trips/42/dives", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
