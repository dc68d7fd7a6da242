package censusservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
	"github.com/clubkit/census-bot/internal/results"
)

// RunState names one stage of a reconciliation run. The terminal state
// and, on failure, the failed stage are reported in outcome events.
type RunState string

const (
	StateCheckWatched    RunState = "check_watched"
	StateFetchGuildInfo  RunState = "fetch_guild_info"
	StateAwaitingDelay   RunState = "awaiting_delay"
	StateFetchingCount   RunState = "fetching_count"
	StateRendering       RunState = "rendering"
	StateCheckIdempotent RunState = "check_idempotent"
	StateUpdatingName    RunState = "updating_name"

	StateDone    RunState = "done"
	StateSkipped RunState = "skipped"
	StateFailed  RunState = "failed"
)

// Reconcile executes one end-to-end run for a single trigger. A run
// proceeds to a terminal state and is never retried automatically; a
// repeated trigger starts an independent run. Domain failures are
// reported as failure payloads with a nil error so event-triggered runs
// are acked, not redelivered.
func (s *CensusService) Reconcile(ctx context.Context, req ReconciliationRequest) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "Reconcile", req.GuildID, func(ctx context.Context) (results.OperationResult, error) {
		if req.GuildID == "" {
			err := errors.New("invalid guild ID")
			return results.OperationResult{Error: err}, err
		}

		runID := uuid.NewString()
		logger := s.logger.With(
			slog.String("guild_id", req.GuildID),
			slog.String("run_id", runID),
			slog.String("trigger", string(req.Reason)),
		)

		unlock := s.locks.acquire(req.GuildID)
		defer unlock()

		// CheckWatched: unwatched guilds are a silent skip, not an error.
		template, watched := s.watchlist.Lookup(req.GuildID)
		if !watched {
			logger.DebugContext(ctx, "guild not watched, skipping run")
			s.metrics.RecordRunOutcome(ctx, req.GuildID, string(StateSkipped))
			return results.SuccessResult(&censusevents.GuildNameSkippedPayloadV1{
				GuildID: req.GuildID,
				RunID:   runID,
				Reason:  "guild not watched",
			}), nil
		}

		// FetchGuildInfo: reported, not retried. Distinct policy from
		// the count fetch below.
		info, err := s.binding.GroupInfo(ctx, req.GuildID)
		if err != nil {
			logger.WarnContext(ctx, "guild info fetch faulted", slog.Any("error", err))
			return s.failRun(ctx, req.GuildID, runID, StateFetchGuildInfo, ErrGuildInfoUnavailable, err, nil), nil
		}

		count, countResult, err := s.resolveCount(ctx, req, logger)
		if err != nil {
			return results.OperationResult{Error: err}, err
		}
		if countResult != nil && !countResult.Succeeded {
			logger.ErrorContext(ctx, "member count unavailable after retries",
				slog.Int("attempts", countResult.AttemptsUsed),
			)
			return s.failRun(ctx, req.GuildID, runID, StateFetchingCount, ErrMemberCountUnavailable, nil, nil), nil
		}

		// Rendering: a watched guild with an empty template cannot be
		// rendered.
		if template == "" {
			logger.ErrorContext(ctx, "no name template registered for guild")
			return s.failRun(ctx, req.GuildID, runID, StateRendering, ErrTemplateMissing, nil, nil), nil
		}
		if !strings.Contains(template, CountToken) {
			logger.WarnContext(ctx, "template has no {count} token, rendered name will not carry the count",
				slog.String("template", template),
			)
		}
		rendered := RenderName(template, count)

		// CheckIdempotent: equal names mean a redundant trigger.
		if !ShouldUpdate(info.Name, rendered) {
			logger.InfoContext(ctx, "guild name already current, skipping rename",
				slog.String("name", rendered),
			)
			s.metrics.RecordRunOutcome(ctx, req.GuildID, string(StateSkipped))
			return results.SuccessResult(&censusevents.GuildNameSkippedPayloadV1{
				GuildID: req.GuildID,
				RunID:   runID,
				Reason:  "name already current",
			}), nil
		}

		// UpdatingName: drive the adapter chain until one strategy lands.
		applied, err := s.chain.Apply(ctx, s.binding, req.GuildID, rendered)
		if err != nil {
			return results.OperationResult{Error: err}, err
		}
		if !applied.Succeeded {
			caps := platform.Capabilities(s.binding)
			logger.WarnContext(ctx, "every rename adapter was unavailable or faulted",
				slog.Any("capabilities", caps),
				slog.Int("faulted", len(applied.Failures)),
			)
			return s.failRun(ctx, req.GuildID, runID, StateUpdatingName, ErrAllAdaptersFailed, nil, caps), nil
		}

		attemptsUsed := 0
		if countResult != nil {
			attemptsUsed = countResult.AttemptsUsed
		}
		logger.InfoContext(ctx, "guild name reconciled",
			slog.String("old_name", info.Name),
			slog.String("new_name", rendered),
			slog.Int("member_count", count),
			slog.String("adapter", applied.AdapterUsed),
		)
		s.metrics.RecordRunOutcome(ctx, req.GuildID, string(StateDone))
		s.metrics.RecordAdapterUsed(ctx, applied.AdapterUsed)
		return results.SuccessResult(&censusevents.GuildNameReconciledPayloadV1{
			GuildID:      req.GuildID,
			RunID:        runID,
			OldName:      info.Name,
			NewName:      rendered,
			MemberCount:  count,
			AdapterUsed:  applied.AdapterUsed,
			AttemptsUsed: attemptsUsed,
		}), nil
	})
}

// resolveCount produces the member count for a run. An explicit count
// on the request bypasses the settle delay and the fetcher: the caller
// already knows the count, there is no index lag to wait out. The
// returned error is context cancellation only.
func (s *CensusService) resolveCount(ctx context.Context, req ReconciliationRequest, logger *slog.Logger) (int, *MemberCountResult, error) {
	if req.ExplicitCount != nil {
		logger.DebugContext(ctx, "using explicit member count",
			slog.Int("count", *req.ExplicitCount),
		)
		return *req.ExplicitCount, nil, nil
	}

	// AwaitingDelay: let the platform's member index settle.
	if err := s.gate.Wait(ctx); err != nil {
		return 0, nil, err
	}

	result, err := s.fetcher.Fetch(ctx, req.GuildID)
	if err != nil {
		return 0, nil, err
	}
	s.metrics.RecordCountFetchAttempts(ctx, req.GuildID, result.AttemptsUsed)
	return result.Count, &result, nil
}

// failRun records a failed run and builds its failure payload. cause is
// the taxonomy sentinel; detail, when present, carries the underlying
// platform error.
func (s *CensusService) failRun(
	ctx context.Context,
	guildID, runID string,
	state RunState,
	cause, detail error,
	capabilities []string,
) results.OperationResult {
	s.metrics.RecordRunOutcome(ctx, guildID, string(StateFailed))
	reason := cause.Error()
	if detail != nil {
		reason = reason + ": " + detail.Error()
	}
	return results.OperationResult{
		Failure: &censusevents.GuildNameReconcileFailedPayloadV1{
			GuildID:      guildID,
			RunID:        runID,
			State:        string(state),
			Reason:       reason,
			Capabilities: capabilities,
		},
		Error: cause,
	}
}
