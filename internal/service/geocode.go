package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/ddigeo/internal/model"
	"go.uber.org/multierr"
)

// Geocode clears and re-resolves the coverage terms of a record. Provider
// or storage failures are reported in the response, not as an error.
func (s *Service) Geocode(ctx context.Context, cb *model.Codebook) (*model.GeocodeResponse, error) {
	if s.geocoder == nil {
		return nil, ErrGeocoderUnavailable
	}
	if cb == nil || len(cb.GeoCoverage) == 0 {
		return nil, ErrNoCoverage
	}

	for i := range cb.GeoCoverage {
		cb.GeoCoverage[i].ClearID()
	}

	resp := &model.GeocodeResponse{}
	if err := s.geocoder.Resolve(ctx, cb); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("geocoding interrupted: %w", ctx.Err())
		}
		for _, e := range multierr.Errors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
	}

	for _, term := range cb.GeoCoverage {
		switch {
		case term.ID != nil:
			resp.Resolved++
		case term.Value != model.GlobalCoverage:
			resp.Unresolved = append(resp.Unresolved, term.Value)
		}
	}
	resp.Record = *cb
	return resp, nil
}
