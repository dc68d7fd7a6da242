package censushandlers

import (
	"context"
	"errors"

	censusservice "github.com/clubkit/census-bot/app/modules/census/application"
	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/internal/handlerwrapper"
)

// HandleReconcileRequested starts a reconciliation run for a manual
// trigger, typically published by censusctl.
func (h *CensusHandlers) HandleReconcileRequested(ctx context.Context, payload *censusevents.ReconcileRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.Reconcile(ctx, censusservice.ReconciliationRequest{
		GuildID:       payload.GuildID,
		Reason:        censusevents.TriggerManual,
		ExplicitCount: payload.ExplicitCount,
	})
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result), nil
}
