package platform

import (
	"context"
)

// GroupInfo is the slice of guild metadata the census pipeline reads.
type GroupInfo struct {
	Name string `json:"name"`
}

// Member is a single entry from the platform's member index. Only the
// count of entries is used; the ID is carried for diagnostics.
type Member struct {
	UserID string `json:"user_id"`
}

// GuildPatch is a partial guild update. Nil fields are left untouched.
type GuildPatch struct {
	Name *string `json:"name,omitempty"`
}

// Binding is the minimum surface a platform session must provide to the
// census module. Rename capabilities are optional: bindings advertise
// them by implementing the interfaces below, and the adapter chain
// probes for them by type assertion at call time.
type Binding interface {
	GroupInfo(ctx context.Context, guildID string) (GroupInfo, error)
	ListGroupMembers(ctx context.Context, guildID string) ([]Member, error)
}

// GuildNameSetter is the preferred rename capability.
type GuildNameSetter interface {
	SetGuildName(ctx context.Context, guildID string, name string) error
}

// GuildEditor renames via a partial metadata patch.
type GuildEditor interface {
	EditGuild(ctx context.Context, guildID string, patch GuildPatch) error
}

// GuildModifier, GuildUpdater and GuildSettingsWriter are historical
// method names for the same semantic rename, kept so older gateway
// builds remain usable. They are probed in declaration order.
type GuildModifier interface {
	ModifyGuild(ctx context.Context, guildID string, name string) error
}

type GuildUpdater interface {
	UpdateGuild(ctx context.Context, guildID string, name string) error
}

type GuildSettingsWriter interface {
	SetGuildSettings(ctx context.Context, guildID string, settings map[string]any) error
}

// RawInvoker is the low-level escape hatch: a generic protocol call by
// operation name, used when no higher-level rename capability exists.
type RawInvoker interface {
	Invoke(ctx context.Context, operation string, payload map[string]any) error
}

// Capabilities enumerates the optional capabilities a binding
// implements, in chain order. Used in failure events so an operator can
// see what the gateway build actually supports.
func Capabilities(b Binding) []string {
	caps := []string{}
	if _, ok := b.(GuildNameSetter); ok {
		caps = append(caps, "set_guild_name")
	}
	if _, ok := b.(GuildEditor); ok {
		caps = append(caps, "edit_guild")
	}
	if _, ok := b.(GuildModifier); ok {
		caps = append(caps, "modify_guild")
	}
	if _, ok := b.(GuildUpdater); ok {
		caps = append(caps, "update_guild")
	}
	if _, ok := b.(GuildSettingsWriter); ok {
		caps = append(caps, "set_guild_settings")
	}
	if _, ok := b.(RawInvoker); ok {
		caps = append(caps, "raw_invoke")
	}
	return caps
}
