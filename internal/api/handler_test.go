package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/service"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) Browse(ctx context.Context, req model.BrowseRequest) (*model.BrowsePage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BrowsePage), args.Error(1)
}

func (m *MockService) Geocode(ctx context.Context, cb *model.Codebook) (*model.GeocodeResponse, error) {
	args := m.Called(ctx, cb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeocodeResponse), args.Error(1)
}

func TestHandler_Browse(t *testing.T) {
	tests := []struct {
		name           string
		vars           map[string]string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "global level",
			vars: map[string]string{},
			mockSetup: func(ms *MockService) {
				ms.On("Browse", mock.Anything, model.BrowseRequest{}).Return(&model.BrowsePage{Global: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "place level",
			vars: map[string]string{"continent": "NA", "country": "US", "state": "GA", "geonames_id": "4180439"},
			mockSetup: func(ms *MockService) {
				ms.On("Browse", mock.Anything, model.BrowseRequest{
					Continent: "NA", Country: "US", State: "GA", GeonamesID: 4180439,
				}).Return(&model.BrowsePage{Current: &model.PlaceLink{Name: "Atlanta"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid geonames id",
			vars:           map[string]string{"continent": "NA", "country": "US", "state": "GA", "geonames_id": "0"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found",
			vars: map[string]string{"continent": "XX"},
			mockSetup: func(ms *MockService) {
				ms.On("Browse", mock.Anything, model.BrowseRequest{Continent: "XX"}).
					Return(nil, service.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			vars: map[string]string{"continent": "EU"},
			mockSetup: func(ms *MockService) {
				ms.On("Browse", mock.Anything, model.BrowseRequest{Continent: "EU"}).
					Return(nil, errors.New("database is locked"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := &Handler{service: mockService}

			req, _ := http.NewRequest("GET", "/api/v1/geo/", nil)
			req = mux.SetURLVars(req, tt.vars)
			rr := httptest.NewRecorder()
			handler.Browse(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Geocode(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name: "successful request",
			body: `{"id":"02988","geo_coverage":[{"value":"Israel"}]}`,
			mockSetup: func(ms *MockService) {
				ms.On("Geocode", mock.Anything, mock.MatchedBy(func(cb *model.Codebook) bool {
					return cb.ID == "02988" && len(cb.GeoCoverage) == 1 && cb.GeoCoverage[0].Value == "Israel"
				})).Return(&model.GeocodeResponse{Resolved: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed body",
			body:           `{"geo_coverage":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "no coverage",
			body: `{"id":"1"}`,
			mockSetup: func(ms *MockService) {
				ms.On("Geocode", mock.Anything, mock.Anything).Return(nil, service.ErrNoCoverage)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "geocoder not configured",
			body: `{"geo_coverage":[{"value":"Israel"}]}`,
			mockSetup: func(ms *MockService) {
				ms.On("Geocode", mock.Anything, mock.Anything).Return(nil, service.ErrGeocoderUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "interrupted",
			body: `{"geo_coverage":[{"value":"Israel"}]}`,
			mockSetup: func(ms *MockService) {
				ms.On("Geocode", mock.Anything, mock.Anything).Return(nil, context.Canceled)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := &Handler{service: mockService}

			req, _ := http.NewRequest("POST", "/api/v1/geocode", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.Geocode(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestRouter_BrowseRoutes(t *testing.T) {
	tests := []struct {
		path     string
		expected model.BrowseRequest
	}{
		{"/api/v1/geo/", model.BrowseRequest{}},
		{"/api/v1/geo/AF/", model.BrowseRequest{Continent: "AF"}},
		{"/api/v1/geo/AS/IL/", model.BrowseRequest{Continent: "AS", Country: "IL"}},
		{"/api/v1/geo/NA/US/GA/", model.BrowseRequest{Continent: "NA", Country: "US", State: "GA"}},
		{"/api/v1/geo/NA/US/GA/4221552/", model.BrowseRequest{Continent: "NA", Country: "US", State: "GA", GeonamesID: 4221552}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mockService := new(MockService)
			mockService.On("Browse", mock.Anything, tt.expected).Return(&model.BrowsePage{}, nil)

			router := NewRouter(mockService, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest("GET", tt.path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
			mockService.AssertExpectations(t)
		})
	}
}

func TestRouter_NonNumericPlaceNotRouted(t *testing.T) {
	mockService := new(MockService)
	router := NewRouter(mockService, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/geo/NA/US/GA/atlanta/", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockService.AssertNotCalled(t, "Browse", mock.Anything, mock.Anything)
}

func TestHandler_HealthCheck(t *testing.T) {
	router := NewRouter(new(MockService), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestHandler_GeocodeResponseBody(t *testing.T) {
	mockService := new(MockService)
	id := "geonames:294640"
	mockService.On("Geocode", mock.Anything, mock.Anything).Return(&model.GeocodeResponse{
		Record: model.Codebook{
			ID:          "02988",
			GeoCoverage: []model.GeographicCoverage{{Value: "Israel", ID: &id}, {Value: "Xyzzy"}},
		},
		Resolved:   1,
		Unresolved: []string{"Xyzzy"},
	}, nil)

	router := NewRouter(mockService, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/geocode",
		strings.NewReader(`{"id":"02988","geo_coverage":[{"value":"Israel"},{"value":"Xyzzy"}]}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.GeocodeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"geonames:294640", ""}, resp.Record.Identifiers())
	assert.Equal(t, []string{"Xyzzy"}, resp.Unresolved)
}

func TestStatsHandler_Disabled(t *testing.T) {
	router := NewRouter(new(MockService), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/stats", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
