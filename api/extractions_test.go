package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrfields/extract-json-service/internal/db"
)

type listResponse struct {
	Extractions []db.Extraction `json:"extractions"`
	Count       int             `json:"count"`
	Limit       int             `json:"limit"`
}

func TestListExtractions(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 3; i++ {
		store.records = append(store.records, db.Extraction{ID: uuid.New(), OCREngine: "fake"})
	}
	router := newTestHandler(&fakeEngine{}, nil).WithStore(store).SetupRoutes()

	rec := do(t, router, http.MethodGet, "/extractions?limit=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Limit)
	require.Len(t, resp.Extractions, 2)
	assert.Equal(t, store.records[2].ID, resp.Extractions[0].ID)
}

func TestListExtractions_LimitBounds(t *testing.T) {
	router := newTestHandler(&fakeEngine{}, nil).WithStore(&fakeStore{}).SetupRoutes()

	for _, q := range []string{"", "?limit=0", "?limit=-3", "?limit=abc", "?limit=100000"} {
		rec := do(t, router, http.MethodGet, "/extractions"+q, "")
		require.Equal(t, http.StatusOK, rec.Code, q)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, defaultListLimit, resp.Limit, q)
		assert.NotNil(t, resp.Extractions, q)
	}
}

func TestListExtractions_NoStore(t *testing.T) {
	router := newTestHandler(&fakeEngine{}, nil).SetupRoutes()

	rec := do(t, router, http.MethodGet, "/extractions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"database not available"}`, rec.Body.String())
}

func TestListExtractions_StoreError(t *testing.T) {
	router := newTestHandler(&fakeEngine{}, nil).WithStore(&fakeStore{err: errors.New("db down")}).SetupRoutes()

	rec := do(t, router, http.MethodGet, "/extractions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
