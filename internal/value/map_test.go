package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap(3)
	m.Set("b", Int(1))
	m.Set("a", Int(2))
	m.Set("c", Int(3))

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, 3, m.Len())
}

func TestMapSetExistingKeepsPosition(t *testing.T) {
	m := MapOf(F("x", Int(1)), F("y", Int(2)))
	m.Set("x", String("updated"))

	assert.Equal(t, []string{"x", "y"}, m.Keys())
	v, ok := m.Get("x")
	assert.True(t, ok)
	assert.Equal(t, String("updated"), v)
}

func TestMapOfDuplicateKeys(t *testing.T) {
	m := MapOf(F("k", Int(1)), F("j", Int(2)), F("k", Int(3)))

	assert.Equal(t, []string{"k", "j"}, m.Keys())
	v, _ := m.Get("k")
	assert.Equal(t, Int(3), v)
}

func TestMapDelete(t *testing.T) {
	m := MapOf(F("a", Int(1)), F("b", Int(2)), F("c", Int(3)))
	m.Delete("b")
	m.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
}

func TestMapNilReceiver(t *testing.T) {
	var m *Map

	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	_, ok := m.Get("x")
	assert.False(t, ok)
	m.Delete("x")
}

func TestMapZeroValueSet(t *testing.T) {
	var m Map
	m.Set("k", Bool(true))

	assert.Equal(t, []string{"k"}, m.Keys())
}

func TestMapFieldsAndRange(t *testing.T) {
	m := MapOf(F("one", Int(1)), F("two", Int(2)))

	assert.Equal(t, []Field{F("one", Int(1)), F("two", Int(2))}, m.Fields())

	var seen []string
	m.Range(func(k string, _ Value) bool {
		seen = append(seen, k)
		return false
	})
	assert.Equal(t, []string{"one"}, seen)
}

func TestMapClone(t *testing.T) {
	m := MapOf(F("a", Int(1)))
	c := m.Clone()
	c.Set("b", Int(2))

	assert.Equal(t, []string{"a"}, m.Keys())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestMapSortedKeysUTF16(t *testing.T) {
	m := MapOf(
		F("a", Int(1)),
		F("A", Int(2)),
		F("\U0001F600", Int(3)), // surrogate pair in UTF-16
		F("｡", Int(4)),     // BMP, sorts after surrogates in UTF-16
	)

	// UTF-16: 'A' < 'a' < U+D83D (high surrogate) < U+FF61
	assert.Equal(t, []string{"A", "a", "\U0001F600", "｡"}, m.SortedKeys())
	// Insertion order untouched
	assert.Equal(t, []string{"a", "A", "\U0001F600", "｡"}, m.Keys())
}
