package censusservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func members(n int) []platform.Member {
	out := make([]platform.Member, n)
	for i := range out {
		out[i] = platform.Member{UserID: "u"}
	}
	return out
}

func TestMemberCountFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		listerFunc func(calls *int) func(ctx context.Context, guildID string) ([]platform.Member, error)
		want       MemberCountResult
	}{
		{
			name: "succeeds first attempt",
			listerFunc: func(calls *int) func(ctx context.Context, guildID string) ([]platform.Member, error) {
				return func(ctx context.Context, guildID string) ([]platform.Member, error) {
					*calls++
					return members(12), nil
				}
			},
			want: MemberCountResult{Count: 12, AttemptsUsed: 1, Succeeded: true},
		},
		{
			name: "fails twice then succeeds",
			listerFunc: func(calls *int) func(ctx context.Context, guildID string) ([]platform.Member, error) {
				return func(ctx context.Context, guildID string) ([]platform.Member, error) {
					*calls++
					if *calls < 3 {
						return nil, errors.New("index not ready")
					}
					return members(5), nil
				}
			},
			want: MemberCountResult{Count: 5, AttemptsUsed: 3, Succeeded: true},
		},
		{
			name: "zero count is retried and fails",
			listerFunc: func(calls *int) func(ctx context.Context, guildID string) ([]platform.Member, error) {
				return func(ctx context.Context, guildID string) ([]platform.Member, error) {
					*calls++
					return []platform.Member{}, nil
				}
			},
			want: MemberCountResult{Count: 0, AttemptsUsed: 3, Succeeded: false},
		},
		{
			name: "persistent fault exhausts attempts",
			listerFunc: func(calls *int) func(ctx context.Context, guildID string) ([]platform.Member, error) {
				return func(ctx context.Context, guildID string) ([]platform.Member, error) {
					*calls++
					return nil, errors.New("gateway down")
				}
			},
			want: MemberCountResult{Count: 0, AttemptsUsed: 3, Succeeded: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			binding := NewFakeBinding()
			binding.ListGroupMembersFunc = tt.listerFunc(&calls)

			f := NewMemberCountFetcher(binding, testLogger())
			f.backoff = time.Millisecond

			got, err := f.Fetch(context.Background(), "g1")
			if err != nil {
				t.Fatalf("Fetch returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch = %+v, want %+v", got, tt.want)
			}
			if calls != tt.want.AttemptsUsed {
				t.Errorf("lister called %d times, want %d", calls, tt.want.AttemptsUsed)
			}
		})
	}
}

func TestMemberCountFetcher_CanceledDuringBackoff(t *testing.T) {
	binding := NewFakeBinding()
	binding.ListGroupMembersFunc = func(ctx context.Context, guildID string) ([]platform.Member, error) {
		return nil, errors.New("gateway down")
	}

	f := NewMemberCountFetcher(binding, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "g1")
	if err != context.Canceled {
		t.Errorf("Fetch = %v, want context.Canceled", err)
	}
}
