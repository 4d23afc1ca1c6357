package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
	"github.com/kpgen/kpgen/internal/service"
)

// =============================================================================
// Stubs
// =============================================================================

type stubCatalogService struct {
	services   []string
	levels     []catalog.LevelInfo
	periods    []string
	promotions []catalog.PromotionSummary
	reload     *service.ReloadResult
	err        error

	lastService string
	lastLevels  []string
}

func (s *stubCatalogService) Services(ctx context.Context) ([]string, error) {
	return s.services, s.err
}

func (s *stubCatalogService) Levels(ctx context.Context, svc string) ([]catalog.LevelInfo, error) {
	s.lastService = svc
	return s.levels, s.err
}

func (s *stubCatalogService) Periods(ctx context.Context) ([]string, error) {
	return s.periods, s.err
}

func (s *stubCatalogService) FixationOptions(ctx context.Context) []service.FixationOption {
	return []service.FixationOption{{Months: 1}}
}

func (s *stubCatalogService) Promotions(ctx context.Context, svc string, levels []string) ([]catalog.PromotionSummary, error) {
	s.lastService = svc
	s.lastLevels = levels
	return s.promotions, s.err
}

func (s *stubCatalogService) Reload(ctx context.Context) (*service.ReloadResult, error) {
	return s.reload, s.err
}

func catalogMux(stub *stubCatalogService) *http.ServeMux {
	mux := http.NewServeMux()
	NewCatalogHandler(stub, testLogger()).RegisterRoutes(mux)
	return mux
}

// =============================================================================
// Tests
// =============================================================================

func TestCatalogServices(t *testing.T) {
	mux := catalogMux(&stubCatalogService{services: []string{"Архив", "Комплекс"}})

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Services []string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Архив", "Комплекс"}, resp.Services)
}

func TestCatalogLevels(t *testing.T) {
	stub := &stubCatalogService{levels: []catalog.LevelInfo{{Level: "Эксперт", Minutes: "1500"}}}
	mux := catalogMux(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/services/"+neturl.PathEscape("Комплекс базовый")+"/levels", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Комплекс базовый", stub.lastService)

	var resp struct {
		Levels []catalog.LevelInfo `json:"levels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Levels, 1)
	assert.Equal(t, "Эксперт", resp.Levels[0].Level)
}

func TestCatalogLevelsUnknownService(t *testing.T) {
	stub := &stubCatalogService{err: domain.NotFound("catalog.levels", "unknown service")}
	mux := catalogMux(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/services/nope/levels", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogSearchPromotions(t *testing.T) {
	stub := &stubCatalogService{
		promotions: []catalog.PromotionSummary{{ID: "Пр.166", Name: "Пр.166"}},
	}
	mux := catalogMux(stub)

	body := `{"service": "Комплекс", "levels": ["Эксперт", "Базовый"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/promotions/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Комплекс", stub.lastService)
	assert.Equal(t, []string{"Эксперт", "Базовый"}, stub.lastLevels)
}

func TestCatalogSearchPromotionsRequiresService(t *testing.T) {
	mux := catalogMux(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodPost, "/api/promotions/search", strings.NewReader(`{"levels": []}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogBeforeLoadReturns503(t *testing.T) {
	mux := catalogMux(&stubCatalogService{err: domain.Unavailable("catalog.services", "not loaded")})

	req := httptest.NewRequest(http.MethodGet, "/api/periods", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminReload(t *testing.T) {
	stub := &stubCatalogService{reload: &service.ReloadResult{PriceRows: 42, PromotionRows: 7}}
	mux := http.NewServeMux()
	passthrough := func(next http.Handler) http.Handler { return next }
	NewAdminHandler(stub, testLogger()).RegisterRoutes(mux, passthrough)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp service.ReloadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.PriceRows)
	assert.Equal(t, 7, resp.PromotionRows)
}

func TestHealth(t *testing.T) {
	store := catalog.NewStore()
	mux := http.NewServeMux()
	NewHealthHandler(store).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["catalog_loaded"])
}
