package censushandlers

import (
	"context"
	"errors"

	censusservice "github.com/clubkit/census-bot/app/modules/census/application"
	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/internal/handlerwrapper"
)

// HandleMemberJoined starts a reconciliation run for a join event.
func (h *CensusHandlers) HandleMemberJoined(ctx context.Context, payload *censusevents.MemberJoinedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.Reconcile(ctx, censusservice.ReconciliationRequest{
		GuildID: payload.GuildID,
		Reason:  censusevents.TriggerJoined,
	})
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result), nil
}

// HandleMemberLeft starts a reconciliation run for a leave event.
func (h *CensusHandlers) HandleMemberLeft(ctx context.Context, payload *censusevents.MemberLeftPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	result, err := h.service.Reconcile(ctx, censusservice.ReconciliationRequest{
		GuildID: payload.GuildID,
		Reason:  censusevents.TriggerLeft,
	})
	if err != nil {
		return nil, err
	}

	return mapOperationResult(result), nil
}
