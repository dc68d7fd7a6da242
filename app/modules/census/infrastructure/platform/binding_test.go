package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type renameCapableBinding struct {
	bareBinding
	setErr  error
	gotName string
}

func (b *renameCapableBinding) SetGuildName(ctx context.Context, guildID, name string) error {
	b.gotName = name
	return b.setErr
}

type rawOnlyBinding struct {
	bareBinding
	ops []string
}

func (b *rawOnlyBinding) Invoke(ctx context.Context, operation string, payload map[string]any) error {
	b.ops = append(b.ops, operation)
	return nil
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name    string
		binding Binding
		want    []string
	}{
		{name: "bare binding has none", binding: bareBinding{}, want: []string{}},
		{name: "name setter", binding: &renameCapableBinding{}, want: []string{"set_guild_name"}},
		{name: "raw invoker only", binding: &rawOnlyBinding{}, want: []string{"raw_invoke"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Capabilities(tt.binding)); diff != "" {
				t.Errorf("Capabilities mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChain_ProbesRealCapabilities(t *testing.T) {
	// A binding with only the raw escape hatch: every higher-level
	// strategy must report unavailable and the raw call must land.
	binding := &rawOnlyBinding{}
	chain := NewAdapterChain(discardLogger(), nil)

	result, err := chain.Apply(context.Background(), binding, "g1", "new name")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !result.Succeeded || result.AdapterUsed != "raw_invoke" {
		t.Fatalf("result = %+v, want raw_invoke success", result)
	}
	if len(binding.ops) != 1 || binding.ops[0] != "guild.set_name" {
		t.Errorf("raw ops = %v, want [guild.set_name]", binding.ops)
	}
}

func TestChain_FaultedSetterFallsThrough(t *testing.T) {
	binding := &renameCapableBinding{setErr: errors.New("403")}
	chain := NewAdapterChain(discardLogger(), nil)

	result, err := chain.Apply(context.Background(), binding, "g1", "new name")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if result.Succeeded {
		t.Fatal("binding has no working capability, expected failure")
	}
	if len(result.Failures) != 1 || result.Failures[0].Adapter != "set_guild_name" {
		t.Errorf("failures = %+v, want the faulted setter recorded", result.Failures)
	}
	if binding.gotName != "new name" {
		t.Errorf("setter received %q, want the rendered name", binding.gotName)
	}
}
