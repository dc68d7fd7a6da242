package censushandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	censusservice "github.com/clubkit/census-bot/app/modules/census/application"
	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/internal/results"
)

func newTestHandlers(service censusservice.Service) *CensusHandlers {
	return NewCensusHandlers(
		service,
		slog.New(slog.DiscardHandler),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func TestHandleMemberJoined(t *testing.T) {
	tests := []struct {
		name       string
		result     results.OperationResult
		serviceErr error
		wantTopic  string
		wantErr    bool
		wantNone   bool
	}{
		{
			name: "reconciled maps to reconciled topic",
			result: results.SuccessResult(&censusevents.GuildNameReconciledPayloadV1{
				GuildID: "g1", NewName: "(7)name",
			}),
			wantTopic: censusevents.GuildNameReconciledV1,
		},
		{
			name: "skip maps to skipped topic",
			result: results.SuccessResult(&censusevents.GuildNameSkippedPayloadV1{
				GuildID: "g1", Reason: "name already current",
			}),
			wantTopic: censusevents.GuildNameSkippedV1,
		},
		{
			name: "failure maps to failed topic",
			result: results.FailureResult(&censusevents.GuildNameReconcileFailedPayloadV1{
				GuildID: "g1", State: "fetching_count",
			}),
			wantTopic: censusevents.GuildNameReconcileFailedV1,
		},
		{
			name:       "service error propagates",
			serviceErr: errors.New("boom"),
			wantErr:    true,
		},
		{
			name:     "empty result produces no events",
			result:   results.OperationResult{},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewFakeCensusService()
			service.ReconcileFunc = func(ctx context.Context, req censusservice.ReconciliationRequest) (results.OperationResult, error) {
				return tt.result, tt.serviceErr
			}

			h := newTestHandlers(service)
			out, err := h.HandleMemberJoined(context.Background(), &censusevents.MemberJoinedPayloadV1{GuildID: "g1"})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.wantNone {
				if len(out) != 0 {
					t.Fatalf("expected no events, got %d", len(out))
				}
				return
			}
			if len(out) != 1 {
				t.Fatalf("expected one event, got %d", len(out))
			}
			if out[0].Topic != tt.wantTopic {
				t.Errorf("topic = %q, want %q", out[0].Topic, tt.wantTopic)
			}

			reqs := service.Requests()
			if len(reqs) != 1 || reqs[0].Reason != censusevents.TriggerJoined {
				t.Errorf("service requests = %+v, want one joined trigger", reqs)
			}
		})
	}
}

func TestHandleMemberLeft_TriggerReason(t *testing.T) {
	service := NewFakeCensusService()
	h := newTestHandlers(service)

	if _, err := h.HandleMemberLeft(context.Background(), &censusevents.MemberLeftPayloadV1{GuildID: "g2"}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	reqs := service.Requests()
	if len(reqs) != 1 || reqs[0].Reason != censusevents.TriggerLeft || reqs[0].GuildID != "g2" {
		t.Errorf("service requests = %+v, want one left trigger for g2", reqs)
	}
}

func TestHandleReconcileRequested_ExplicitCount(t *testing.T) {
	service := NewFakeCensusService()
	h := newTestHandlers(service)

	count := 42
	if _, err := h.HandleReconcileRequested(context.Background(), &censusevents.ReconcileRequestedPayloadV1{
		GuildID:       "g3",
		ExplicitCount: &count,
	}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	reqs := service.Requests()
	if len(reqs) != 1 || reqs[0].Reason != censusevents.TriggerManual {
		t.Fatalf("service requests = %+v, want one manual trigger", reqs)
	}
	if reqs[0].ExplicitCount == nil || *reqs[0].ExplicitCount != 42 {
		t.Errorf("explicit count = %v, want 42", reqs[0].ExplicitCount)
	}
}

func TestHandlers_NilPayload(t *testing.T) {
	h := newTestHandlers(NewFakeCensusService())

	if _, err := h.HandleMemberJoined(context.Background(), nil); err == nil {
		t.Error("expected error for nil joined payload")
	}
	if _, err := h.HandleMemberLeft(context.Background(), nil); err == nil {
		t.Error("expected error for nil left payload")
	}
	if _, err := h.HandleReconcileRequested(context.Background(), nil); err == nil {
		t.Error("expected error for nil manual payload")
	}
}
