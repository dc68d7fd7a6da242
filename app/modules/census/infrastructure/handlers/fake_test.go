package censushandlers

import (
	"context"

	censusservice "github.com/clubkit/census-bot/app/modules/census/application"
	"github.com/clubkit/census-bot/internal/results"
)

// FakeCensusService provides a programmable stub for the census
// service.
type FakeCensusService struct {
	trace []censusservice.ReconciliationRequest

	ReconcileFunc func(ctx context.Context, req censusservice.ReconciliationRequest) (results.OperationResult, error)
}

func NewFakeCensusService() *FakeCensusService {
	return &FakeCensusService{}
}

// Requests returns the requests the fake has seen.
func (f *FakeCensusService) Requests() []censusservice.ReconciliationRequest {
	out := make([]censusservice.ReconciliationRequest, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeCensusService) Reconcile(ctx context.Context, req censusservice.ReconciliationRequest) (results.OperationResult, error) {
	f.trace = append(f.trace, req)
	if f.ReconcileFunc != nil {
		return f.ReconcileFunc(ctx, req)
	}
	return results.OperationResult{}, nil
}
