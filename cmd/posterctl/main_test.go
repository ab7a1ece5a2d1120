package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/config"
	"github.com/posterforge/extractioncore/internal/core/phases"
	"github.com/posterforge/extractioncore/internal/core/processor"
	"github.com/posterforge/extractioncore/internal/services"
)

type stubHealthChecker struct{ healthy bool }

func (s *stubHealthChecker) HealthCheck(ctx context.Context) bool { return s.healthy }

func newTestProcessor(visionHealthy bool, validators map[string]processor.HealthChecker) *processor.IterativeProcessor {
	vision := &stubVisionProvider{healthy: visionHealthy}
	newPhaseList := func(v services.VisionProvider) []phases.Phase { return nil }
	return processor.New(zap.NewNop(), vision, newPhaseList, validators, nil)
}

type stubVisionProvider struct{ healthy bool }

func (s *stubVisionProvider) Extract(ctx context.Context, imagePath, prompt string) (services.VisionResult, error) {
	return services.VisionResult{}, nil
}
func (s *stubVisionProvider) Info() services.VisionInfo            { return services.VisionInfo{Name: "stub"} }
func (s *stubVisionProvider) HealthCheck(ctx context.Context) bool { return s.healthy }

func TestSetupRouter_HealthzReportsOKWhenVisionHealthy(t *testing.T) {
	proc := newTestProcessor(true, map[string]processor.HealthChecker{
		"musicbrainz": &stubHealthChecker{healthy: true},
	})
	cfg := &config.Config{}
	cfg.Server.Environment = "development"

	router := setupRouter(cfg, proc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["vision"])
}

func TestSetupRouter_HealthzReportsUnavailableWhenVisionUnhealthy(t *testing.T) {
	proc := newTestProcessor(false, nil)
	cfg := &config.Config{}
	cfg.Server.Environment = "production"

	router := setupRouter(cfg, proc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
