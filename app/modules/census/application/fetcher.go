package censusservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
)

const (
	countFetchAttempts = 3
	countFetchBackoff  = 1 * time.Second
)

// MemberLister is the single capability the fetcher needs from a
// platform binding.
type MemberLister interface {
	ListGroupMembers(ctx context.Context, guildID string) ([]platform.Member, error)
}

// MemberCountResult reports one fetch, including how many attempts it
// consumed.
type MemberCountResult struct {
	Count        int
	AttemptsUsed int
	Succeeded    bool
}

// MemberCountFetcher acquires a member count with retry and backoff.
// A zero count is retried like a fault: the platform's index lags
// membership events, and this policy deliberately cannot distinguish
// "guild is empty" from "index not yet updated". After exhausting the
// attempts a zero count is reported as failure.
type MemberCountFetcher struct {
	lister   MemberLister
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// NewMemberCountFetcher builds a fetcher with the fixed retry policy:
// three attempts, one second apart.
func NewMemberCountFetcher(lister MemberLister, logger *slog.Logger) *MemberCountFetcher {
	return &MemberCountFetcher{
		lister:   lister,
		logger:   logger,
		attempts: countFetchAttempts,
		backoff:  countFetchBackoff,
	}
}

// Fetch returns a nonzero member count or, after exhausting all
// attempts, a failed result. The only error returned is context
// cancellation during a backoff wait.
func (f *MemberCountFetcher) Fetch(ctx context.Context, guildID string) (MemberCountResult, error) {
	result := MemberCountResult{}
	for attempt := 1; attempt <= f.attempts; attempt++ {
		result.AttemptsUsed = attempt

		members, err := f.lister.ListGroupMembers(ctx, guildID)
		if err != nil {
			f.logger.WarnContext(ctx, "member list fetch faulted",
				slog.String("guild_id", guildID),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		} else if len(members) > 0 {
			result.Count = len(members)
			result.Succeeded = true
			return result, nil
		} else {
			f.logger.DebugContext(ctx, "member list empty, index may be stale",
				slog.String("guild_id", guildID),
				slog.Int("attempt", attempt),
			)
		}

		if attempt < f.attempts {
			if err := sleepContext(ctx, f.backoff); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}
