package memoryinfra

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer/pkg/memory"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter memory.Filter
		want   string
	}{
		{
			name:   "nil filter matches everything",
			filter: nil,
			want:   "*",
		},
		{
			name:   "eq on tag field",
			filter: memory.Eq(memory.FieldMemoryType, "EPISODIC"),
			want:   "@memoryType:{EPISODIC}",
		},
		{
			name:   "in renders a tag union",
			filter: memory.In(memory.FieldUserID, "alice", "system"),
			want:   "@userId:{alice|system}",
		},
		{
			name: "and is a space joined conjunction",
			filter: memory.And(
				memory.In(memory.FieldUserID, "alice", "system"),
				memory.Eq(memory.FieldMemoryType, "SEMANTIC"),
			),
			want: "(@userId:{alice|system} @memoryType:{SEMANTIC})",
		},
		{
			name: "or is an explicit disjunction",
			filter: memory.Or(
				memory.Eq(memory.FieldUserID, "alice"),
				memory.Eq(memory.FieldUserID, "bob"),
			),
			want: "(@userId:{alice} | @userId:{bob})",
		},
		{
			name:   "single operand and collapses",
			filter: memory.And(memory.Eq(memory.FieldUserID, "alice")),
			want:   "@userId:{alice}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compileFilter(tt.filter))
		})
	}
}

func TestEscapeTagValue(t *testing.T) {
	assert.Equal(t, "alice", escapeTagValue("alice"))
	assert.Equal(t, `user\-42`, escapeTagValue("user-42"))
	assert.Equal(t, `a\.b\@c`, escapeTagValue("a.b@c"))
	assert.Equal(t, `with\ space`, escapeTagValue("with space"))
}

func TestVectorToBytes(t *testing.T) {
	vec := []float32{0.5, -1.25, 3}
	buf := vectorToBytes(vec)

	require.Len(t, buf, 12)
	for i, want := range vec {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, want, got)
	}
}
