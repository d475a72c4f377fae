package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pekatete/electrumsv/internal/settings"
	"github.com/pekatete/electrumsv/internal/transport/httpapi/handler"
)

type fixedRowCount int

func (f fixedRowCount) RowCount() int { return int(f) }

func settingsRouter(store *settings.Store, rows int) *chi.Mux {
	h := handler.NewSettingsHandler(store, fixedRowCount(rows))

	r := chi.NewRouter()
	r.Get("/settings", h.GetSettings)
	r.Get("/settings/{key}", h.GetSetting)
	r.Put("/settings/{key}", h.SetSetting)
	return r
}

func putSetting(t *testing.T, router *chi.Mux, key, value string) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(handler.SetSettingRequest{Value: value})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings/"+key, bytes.NewReader(data)))
	return rec
}

func TestSetSetting_FiatCurrencyDirtiesEverything(t *testing.T) {
	router := settingsRouter(settings.NewStore(), 7)

	rec := putSetting(t, router, settings.KeyFiatCurrency, "eur")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.SettingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "eur", resp.Value)
	require.NotNil(t, resp.Dirty)
	assert.Equal(t, 0, resp.Dirty.First)
	assert.Equal(t, 6, resp.Dirty.Last)
}

func TestSetSetting_UnchangedValueIsClean(t *testing.T) {
	router := settingsRouter(settings.NewStore(), 7)

	rec := putSetting(t, router, settings.KeyFiatCurrency, settings.DefaultFiatCurrency)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.SettingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Dirty)
}

func TestSetSetting_NonDisplayKey(t *testing.T) {
	router := settingsRouter(settings.NewStore(), 7)

	rec := putSetting(t, router, "request_timeout", "30")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.SettingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(30), resp.Value) // JSON numbers decode as float64
	assert.Nil(t, resp.Dirty)
}

func TestGetSetting(t *testing.T) {
	store := settings.NewStore()
	router := settingsRouter(store, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/"+settings.KeyBaseUnit, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.SettingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BSV", resp.Value)
}

func TestGetSetting_NotFound(t *testing.T) {
	router := settingsRouter(settings.NewStore(), 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSettings(t *testing.T) {
	router := settingsRouter(settings.NewStore(), 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, settings.KeyFiatCurrency)
	assert.Contains(t, resp, settings.KeyBaseUnit)
}
