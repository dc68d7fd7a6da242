package censusevents

// Topic names are versioned so payload changes can ship side by side
// with old consumers.
const (
	MemberJoinedV1       = "census.member.joined.v1"
	MemberLeftV1         = "census.member.left.v1"
	ReconcileRequestedV1 = "census.reconcile.requested.v1"

	GuildNameReconciledV1      = "census.guild.name.reconciled.v1"
	GuildNameSkippedV1         = "census.guild.name.skipped.v1"
	GuildNameReconcileFailedV1 = "census.guild.name.reconcile.failed.v1"
)

// TriggerReason identifies what produced a reconciliation request.
type TriggerReason string

const (
	TriggerJoined TriggerReason = "joined"
	TriggerLeft   TriggerReason = "left"
	TriggerManual TriggerReason = "manual"
)

// MemberJoinedPayloadV1 is published by the platform gateway when a
// member joins a guild.
type MemberJoinedPayloadV1 struct {
	GuildID string `json:"guild_id"`
}

// MemberLeftPayloadV1 is published by the platform gateway when a
// member leaves a guild.
type MemberLeftPayloadV1 struct {
	GuildID string `json:"guild_id"`
}

// ReconcileRequestedPayloadV1 is a manual trigger, typically published
// by censusctl. ExplicitCount, when set, is used as the member count
// directly and the settle delay and count fetch are skipped.
type ReconcileRequestedPayloadV1 struct {
	GuildID       string `json:"guild_id"`
	ExplicitCount *int   `json:"explicit_count,omitempty"`
}

// GuildNameReconciledPayloadV1 reports a completed rename.
type GuildNameReconciledPayloadV1 struct {
	GuildID      string `json:"guild_id"`
	RunID        string `json:"run_id"`
	OldName      string `json:"old_name"`
	NewName      string `json:"new_name"`
	MemberCount  int    `json:"member_count"`
	AdapterUsed  string `json:"adapter_used"`
	AttemptsUsed int    `json:"attempts_used"`
}

// GuildNameSkippedPayloadV1 reports a run that terminated without a
// rename: the guild is unwatched or the name is already current.
type GuildNameSkippedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	RunID   string `json:"run_id"`
	Reason  string `json:"reason"`
}

// GuildNameReconcileFailedPayloadV1 reports an aborted run. State names
// the pipeline stage that failed; Capabilities is populated only when
// every rename adapter was exhausted, for operator diagnosis.
type GuildNameReconcileFailedPayloadV1 struct {
	GuildID      string   `json:"guild_id"`
	RunID        string   `json:"run_id"`
	State        string   `json:"state"`
	Reason       string   `json:"reason"`
	Capabilities []string `json:"capabilities,omitempty"`
}
