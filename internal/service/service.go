package service

import (
	"context"
	"errors"

	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/repository"
)

// ErrNotFound is returned when a requested level of the hierarchy does not exist
var ErrNotFound = errors.New("not found")

// ErrGeocoderUnavailable is returned by Geocode when no geocoder is configured
var ErrGeocoderUnavailable = errors.New("geocoder not configured")

// ErrNoCoverage is returned by Geocode for a record without coverage terms
var ErrNoCoverage = errors.New("record has no geographic coverage")

// CodebookGeocoder resolves coverage terms in place
type CodebookGeocoder interface {
	Resolve(ctx context.Context, cb *model.Codebook) error
}

// Service provides business logic for the API
type Service struct {
	locations  repository.LocationRepository
	countries  repository.CountryRepository
	continents repository.ContinentRepository
	stateCodes repository.StateCodeRepository
	geocoder   CodebookGeocoder
}

// NewService creates a new service instance. geocoder may be nil, in which
// case only browsing is available.
func NewService(repos *repository.Container, geocoder CodebookGeocoder) *Service {
	return &Service{
		locations:  repos.Location,
		countries:  repos.Country,
		continents: repos.Continent,
		stateCodes: repos.StateCode,
		geocoder:   geocoder,
	}
}
