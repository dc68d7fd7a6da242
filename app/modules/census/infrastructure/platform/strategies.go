package platform

import (
	"context"
)

// Outcome classifies one rename attempt against one capability.
type Outcome int

const (
	// OutcomeUnavailable means the binding does not implement the
	// capability; the chain moves on without a platform call.
	OutcomeUnavailable Outcome = iota
	OutcomeSucceeded
	OutcomeFaulted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// RenameStrategy wraps one platform rename capability. Attempt returns
// OutcomeFaulted with a non-nil error when the capability exists but
// the call failed.
type RenameStrategy interface {
	Name() string
	Attempt(ctx context.Context, b Binding, guildID string, name string) (Outcome, error)
}

// DefaultStrategies returns the fixed fallback order: the generic name
// setter, the partial-patch editor, the historical method names, and
// finally a raw protocol call. The order is policy, not configuration.
func DefaultStrategies() []RenameStrategy {
	return []RenameStrategy{
		setGuildNameStrategy{},
		editGuildStrategy{},
		modifyGuildStrategy{},
		updateGuildStrategy{},
		setGuildSettingsStrategy{},
		rawInvokeStrategy{},
	}
}

type setGuildNameStrategy struct{}

func (setGuildNameStrategy) Name() string { return "set_guild_name" }

func (setGuildNameStrategy) Attempt(ctx context.Context, b Binding, guildID, name string) (Outcome, error) {
	setter, ok := b.(GuildNameSetter)
	if !ok {
		return OutcomeUnavailable, nil
	}
	if err := setter.SetGuildName(ctx, guildID, name); err != nil {
		return OutcomeFaulted, err
	}
	return OutcomeSucceeded, nil
}

type editGuildStrategy struct{}

func (editGuildStrategy) Name() string { return "edit_guild" }

func (editGuildStrategy) Attempt(ctx context.Context, b Binding, guildID, name string) (Outcome, error) {
	editor, ok := b.(GuildEditor)
	if !ok {
		return OutcomeUnavailable, nil
	}
	if err := editor.EditGuild(ctx, guildID, GuildPatch{Name: &name}); err != nil {
		return OutcomeFaulted, err
	}
	return OutcomeSucceeded, nil
}

type modifyGuildStrategy struct{}

func (modifyGuildStrategy) Name() string { return "modify_guild" }

func (modifyGuildStrategy) Attempt(ctx context.Context, b Binding, guildID, name string) (Outcome, error) {
	modifier, ok := b.(GuildModifier)
	if !ok {
		return OutcomeUnavailable, nil
	}
	if err := modifier.ModifyGuild(ctx, guildID, name); err != nil {
		return OutcomeFaulted, err
	}
	return OutcomeSucceeded, nil
}

type updateGuildStrategy struct{}

func (updateGuildStrategy) Name() string { return "update_guild" }

func (updateGuildStrategy) Attempt(ctx context.Context, b Binding, guildID, name string) (Outcome, error) {
	updater, ok := b.(GuildUpdater)
	if !ok {
		return OutcomeUnavailable, nil
	}
	if err := updater.UpdateGuild(ctx, guildID, name); err != nil {
		return OutcomeFaulted, err
	}
	return OutcomeSucceeded, nil
}

type setGuildSettingsStrategy struct{}

func (setGuildSettingsStrategy) Name() string { return "set_guild_settings" }

func (setGuildSettingsStrategy) Attempt(ctx context.Context, b Binding, guildID, name string) (Outcome, error) {
	writer, ok := b.(GuildSettingsWriter)
	if !ok {
		return OutcomeUnavailable, nil
	}
	if err := writer.SetGuildSettings(ctx, guildID, map[string]any{"name": name}); err != nil {
		return OutcomeFaulted, err
	}
	return OutcomeSucceeded, nil
}

type rawInvokeStrategy struct{}

func (rawInvokeStrategy) Name() string { return "raw_invoke" }

func (rawInvokeStrategy) Attempt(ctx context.Context, b Binding, guildID, name string) (Outcome, error) {
	invoker, ok := b.(RawInvoker)
	if !ok {
		return OutcomeUnavailable, nil
	}
	payload := map[string]any{
		"guild_id": guildID,
		"name":     name,
	}
	if err := invoker.Invoke(ctx, "guild.set_name", payload); err != nil {
		return OutcomeFaulted, err
	}
	return OutcomeSucceeded, nil
}
