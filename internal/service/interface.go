package service

import (
	"context"

	"github.com/alexivanou/ddigeo/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Browse(ctx context.Context, req model.BrowseRequest) (*model.BrowsePage, error)
	Geocode(ctx context.Context, cb *model.Codebook) (*model.GeocodeResponse, error)
}
