package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	environmentdomain "github.com/hogarlink/hogar/internal/environment/domain"
	"github.com/hogarlink/hogar/internal/sensor"
)

type fakeEnvironmentService struct {
	createCalls int
	toggleCalls int
	lastCreate  environmentdomain.CreateEnvironmentRequest
	toggleErr   error
}

func (f *fakeEnvironmentService) Create(ctx context.Context, req environmentdomain.CreateEnvironmentRequest) (environmentdomain.EnvironmentResult, error) {
	f.createCalls++
	f.lastCreate = req
	_ = ctx
	return environmentdomain.EnvironmentResult{
		Environment: environmentdomain.Environment{
			ID:     snowflake.ID(100),
			Name:   req.Name,
			Active: true,
		},
		ReconciledSensors: len(req.Sensors),
	}, nil
}

func (f *fakeEnvironmentService) Update(ctx context.Context, req environmentdomain.UpdateEnvironmentRequest) (environmentdomain.EnvironmentResult, error) {
	_ = ctx
	_ = req
	return environmentdomain.EnvironmentResult{}, nil
}

func (f *fakeEnvironmentService) Get(ctx context.Context, id string) (environmentdomain.Environment, error) {
	_ = ctx
	_ = id
	return environmentdomain.Environment{}, nil
}

func (f *fakeEnvironmentService) GetForOwner(ctx context.Context, id, ownerID string) (environmentdomain.Environment, error) {
	_ = ctx
	_ = id
	_ = ownerID
	return environmentdomain.Environment{}, nil
}

func (f *fakeEnvironmentService) List(ctx context.Context) ([]environmentdomain.Summary, error) {
	_ = ctx
	return nil, nil
}

func (f *fakeEnvironmentService) ListByOwner(ctx context.Context, ownerID string) ([]environmentdomain.Summary, error) {
	_ = ctx
	_ = ownerID
	return nil, nil
}

func (f *fakeEnvironmentService) Delete(ctx context.Context, id string) (environmentdomain.Environment, error) {
	_ = ctx
	_ = id
	return environmentdomain.Environment{}, nil
}

func (f *fakeEnvironmentService) Toggle(ctx context.Context, id, ownerID string) (environmentdomain.Environment, error) {
	f.toggleCalls++
	_ = ctx
	if f.toggleErr != nil {
		return environmentdomain.Environment{}, f.toggleErr
	}
	return environmentdomain.Environment{ID: snowflake.ID(7), Active: false}, nil
}

func newEnvironmentRouter(svc environmentdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{environmentSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/users/:id/environments", srv.CreateEnvironment)
	router.POST("/users/:id/environments/:envId/toggle", srv.ToggleEnvironment)
	return router
}

func TestCreateEnvironmentHandlerAcceptsSensorArray(t *testing.T) {
	fake := &fakeEnvironmentService{}
	router := newEnvironmentRouter(fake)

	body := `{"name":"Evening","start_time":"18:00","end_time":"23:00","sensors":[{"id":"lamp-1","name":"Lamp","type":"LIGHT","value":70,"color":"#fff"}]}`
	req := httptest.NewRequest(http.MethodPost, "/users/42/environments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if fake.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", fake.createCalls)
	}
	if fake.lastCreate.OwnerID != "42" {
		t.Fatalf("expected owner from path, got %q", fake.lastCreate.OwnerID)
	}
	if len(fake.lastCreate.Sensors) != 1 || fake.lastCreate.Sensors[0].Type != sensor.TypeLight {
		t.Fatalf("unexpected sensors: %+v", fake.lastCreate.Sensors)
	}
}

func TestCreateEnvironmentHandlerAcceptsEncodedSensorString(t *testing.T) {
	fake := &fakeEnvironmentService{}
	router := newEnvironmentRouter(fake)

	encoded, _ := json.Marshal(`[{"id":"fan-1","name":"Fan","type":"FAN","value":2}]`)
	body := `{"name":"Breeze","start_time":"10:00","end_time":"12:00","sensors":` + string(encoded) + `}`
	req := httptest.NewRequest(http.MethodPost, "/users/42/environments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(fake.lastCreate.Sensors) != 1 || fake.lastCreate.Sensors[0].ID != "fan-1" {
		t.Fatalf("unexpected sensors: %+v", fake.lastCreate.Sensors)
	}
}

func TestCreateEnvironmentHandlerRejectsMalformedSensors(t *testing.T) {
	fake := &fakeEnvironmentService{}
	router := newEnvironmentRouter(fake)

	body := `{"name":"Bad","start_time":"10:00","end_time":"12:00","sensors":{"id":"x"}}`
	req := httptest.NewRequest(http.MethodPost, "/users/42/environments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if fake.createCalls != 0 {
		t.Fatal("expected create not to be called")
	}
}

func TestToggleEnvironmentHandler(t *testing.T) {
	fake := &fakeEnvironmentService{}
	router := newEnvironmentRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/users/42/environments/7/toggle", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if fake.toggleCalls != 1 {
		t.Fatalf("expected 1 toggle call, got %d", fake.toggleCalls)
	}
}

func TestToggleEnvironmentHandlerNotFound(t *testing.T) {
	fake := &fakeEnvironmentService{toggleErr: environmentdomain.ErrNotFound}
	router := newEnvironmentRouter(fake)

	req := httptest.NewRequest(http.MethodPost, "/users/42/environments/7/toggle", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
