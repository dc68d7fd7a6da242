package censusservice

import (
	"context"

	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/internal/results"
)

// ReconciliationRequest is one trigger for the pipeline. Ephemeral,
// never persisted. ExplicitCount, when set, is used directly and the
// settle delay and count fetch are skipped.
type ReconciliationRequest struct {
	GuildID       string
	Reason        censusevents.TriggerReason
	ExplicitCount *int
}

// Service is the census module's application surface.
type Service interface {
	Reconcile(ctx context.Context, req ReconciliationRequest) (results.OperationResult, error)
}

// WatchList resolves a guild to its name template. Implementations must
// return a fresh snapshot per call: the list can be mutated between
// reads by the command surface or a file reload.
type WatchList interface {
	Lookup(guildID string) (nameTemplate string, ok bool)
}
