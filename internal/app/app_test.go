package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vocatus/backend/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OpenAIAPIKey:      "test-key",
		EmbeddingProvider: "openai",
		StoreDir:          t.TempDir(),
		QueryLogPath:      t.TempDir() + "/query.log",
		RetrievalTopK:     3,
		ServerPort:        8081,
	}
}

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app, err := New(testConfig(t), db, logger)
	require.NoError(t, err)
	assert.NotNil(t, app.Handler)
	assert.NotNil(t, app.Retrieval)

	// Verify route wiring
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestNew_MissingAPIKey(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig(t)
	cfg.OpenAIAPIKey = ""

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_, err = New(cfg, db, logger)
	assert.Error(t, err)
}

func TestNew_ChatRouteRejectsBadJSON(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app, err := New(testConfig(t), db, logger)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/chat", nil)
	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
