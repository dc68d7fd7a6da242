package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	nc "github.com/nats-io/nats.go"
)

const defaultRequestTimeout = 5 * time.Second

// NATSBinding talks to the platform gateway process over NATS
// request/reply. The gateway owns the actual platform session; this
// binding forwards capability calls as JSON requests on well-known
// subjects under a configurable prefix.
//
// It advertises SetGuildName and the raw invoke escape hatch; the
// intermediate rename capabilities belong to gateway builds that bind
// the platform session in-process.
type NATSBinding struct {
	conn    *nc.Conn
	prefix  string
	timeout time.Duration
}

// NATSBindingOption customizes a NATSBinding.
type NATSBindingOption func(*NATSBinding)

// WithSubjectPrefix overrides the default "census.gateway" prefix.
func WithSubjectPrefix(prefix string) NATSBindingOption {
	return func(b *NATSBinding) { b.prefix = prefix }
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) NATSBindingOption {
	return func(b *NATSBinding) { b.timeout = d }
}

// NewNATSBinding wraps an established NATS connection.
func NewNATSBinding(conn *nc.Conn, opts ...NATSBindingOption) *NATSBinding {
	b := &NATSBinding{
		conn:    conn,
		prefix:  "census.gateway",
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type gatewayReply struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (b *NATSBinding) request(ctx context.Context, subject string, req any, out any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal gateway request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(ctx, b.prefix+"."+subject, payload)
	if err != nil {
		return fmt.Errorf("gateway request %s: %w", subject, err)
	}

	var reply gatewayReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fmt.Errorf("unmarshal gateway reply %s: %w", subject, err)
	}
	if !reply.OK {
		return fmt.Errorf("gateway %s: %s", subject, reply.Error)
	}
	if out != nil && len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, out); err != nil {
			return fmt.Errorf("unmarshal gateway data %s: %w", subject, err)
		}
	}
	return nil
}

// GroupInfo fetches current guild metadata from the gateway.
func (b *NATSBinding) GroupInfo(ctx context.Context, guildID string) (GroupInfo, error) {
	var info GroupInfo
	req := map[string]string{"guild_id": guildID}
	if err := b.request(ctx, "guild.info", req, &info); err != nil {
		return GroupInfo{}, err
	}
	return info, nil
}

// ListGroupMembers fetches the gateway's view of the member index.
func (b *NATSBinding) ListGroupMembers(ctx context.Context, guildID string) ([]Member, error) {
	var data struct {
		Members []Member `json:"members"`
	}
	req := map[string]string{"guild_id": guildID}
	if err := b.request(ctx, "guild.members", req, &data); err != nil {
		return nil, err
	}
	return data.Members, nil
}

// SetGuildName asks the gateway to rename the guild.
func (b *NATSBinding) SetGuildName(ctx context.Context, guildID, name string) error {
	req := map[string]string{"guild_id": guildID, "name": name}
	return b.request(ctx, "guild.rename", req, nil)
}

// Invoke issues a raw gateway operation by name.
func (b *NATSBinding) Invoke(ctx context.Context, operation string, payload map[string]any) error {
	req := map[string]any{"op": operation, "payload": payload}
	return b.request(ctx, "raw", req, nil)
}

var (
	_ Binding         = (*NATSBinding)(nil)
	_ GuildNameSetter = (*NATSBinding)(nil)
	_ RawInvoker      = (*NATSBinding)(nil)
)
