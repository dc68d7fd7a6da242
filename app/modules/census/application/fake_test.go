package censusservice

import (
	"context"
	"errors"

	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
)

// ------------------------
// Fake platform binding
// ------------------------

// FakeBinding provides a programmable stub for the platform capability
// surface. It always advertises SetGuildName; tests drive outcomes
// through the Func fields.
type FakeBinding struct {
	trace []string

	GroupInfoFunc        func(ctx context.Context, guildID string) (platform.GroupInfo, error)
	ListGroupMembersFunc func(ctx context.Context, guildID string) ([]platform.Member, error)
	SetGuildNameFunc     func(ctx context.Context, guildID, name string) error
}

// NewFakeBinding initializes a new FakeBinding with an empty trace.
func NewFakeBinding() *FakeBinding {
	return &FakeBinding{trace: []string{}}
}

// Trace returns the sequence of capability calls made to the fake.
func (f *FakeBinding) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeBinding) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBinding) GroupInfo(ctx context.Context, guildID string) (platform.GroupInfo, error) {
	f.record("GroupInfo")
	if f.GroupInfoFunc != nil {
		return f.GroupInfoFunc(ctx, guildID)
	}
	return platform.GroupInfo{Name: "guild"}, nil
}

func (f *FakeBinding) ListGroupMembers(ctx context.Context, guildID string) ([]platform.Member, error) {
	f.record("ListGroupMembers")
	if f.ListGroupMembersFunc != nil {
		return f.ListGroupMembersFunc(ctx, guildID)
	}
	return nil, errors.New("no members configured")
}

func (f *FakeBinding) SetGuildName(ctx context.Context, guildID, name string) error {
	f.record("SetGuildName")
	if f.SetGuildNameFunc != nil {
		return f.SetGuildNameFunc(ctx, guildID, name)
	}
	return nil
}

// ------------------------
// Fake watch list
// ------------------------

// FakeWatchList resolves templates from a plain map.
type FakeWatchList struct {
	templates map[string]string
}

func NewFakeWatchList(templates map[string]string) *FakeWatchList {
	return &FakeWatchList{templates: templates}
}

func (f *FakeWatchList) Lookup(guildID string) (string, bool) {
	template, ok := f.templates[guildID]
	return template, ok
}
