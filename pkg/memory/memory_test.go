package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMemoryType(t *testing.T) {
	assert.Equal(t, TypeEpisodic, ParseMemoryType("EPISODIC"))
	assert.Equal(t, TypeEpisodic, ParseMemoryType("episodic"))
	assert.Equal(t, TypeEpisodic, ParseMemoryType("  Episodic "))
	assert.Equal(t, TypeSemantic, ParseMemoryType("SEMANTIC"))

	// Unknown tags fall back to semantic rather than dropping the record.
	assert.Equal(t, TypeSemantic, ParseMemoryType("PROCEDURAL"))
	assert.Equal(t, TypeSemantic, ParseMemoryType(""))
}

func TestValidateMetadata(t *testing.T) {
	assert.Equal(t, "{}", ValidateMetadata(""))
	assert.Equal(t, "{}", ValidateMetadata("not json"))
	assert.Equal(t, "{}", ValidateMetadata(`["array", "not", "object"]`))

	assert.Equal(t, "{}", ValidateMetadata("{}"))
	assert.Equal(t, `{"source":"chat"}`, ValidateMetadata(`{"source":"chat"}`))

	// Brace-shaped but surrounded by whitespace is accepted as-is.
	assert.Equal(t, `  {"a":1}  `, ValidateMetadata(`  {"a":1}  `))
}

func TestFilterMatches(t *testing.T) {
	fields := map[string]string{
		FieldUserID:     "alice",
		FieldMemoryType: "EPISODIC",
	}

	assert.True(t, Eq(FieldUserID, "alice").Matches(fields))
	assert.False(t, Eq(FieldUserID, "bob").Matches(fields))

	assert.True(t, In(FieldUserID, "bob", "alice").Matches(fields))
	assert.False(t, In(FieldUserID, "bob", "carol").Matches(fields))

	assert.True(t, And(
		In(FieldUserID, "alice", SystemUserID),
		Eq(FieldMemoryType, "EPISODIC"),
	).Matches(fields))
	assert.False(t, And(
		Eq(FieldUserID, "alice"),
		Eq(FieldMemoryType, "SEMANTIC"),
	).Matches(fields))

	assert.True(t, Or(
		Eq(FieldUserID, "bob"),
		Eq(FieldMemoryType, "EPISODIC"),
	).Matches(fields))
	assert.False(t, Or(
		Eq(FieldUserID, "bob"),
		Eq(FieldMemoryType, "SEMANTIC"),
	).Matches(fields))
}
