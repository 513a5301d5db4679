package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddIsIdempotent(t *testing.T) {
	ix := NewIndex()

	assert.True(t, ix.Add("user1", "prop1"))
	assert.False(t, ix.Add("user1", "prop1"))

	// Adding twice yields the same membership set as adding once
	assert.Equal(t, []string{"prop1"}, ix.List("user1"))
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	ix := NewIndex()

	assert.False(t, ix.Remove("user1", "prop1"))

	ix.Add("user1", "prop1")
	assert.True(t, ix.Remove("user1", "prop1"))
	assert.False(t, ix.Remove("user1", "prop1"))
	assert.Empty(t, ix.List("user1"))
}

func TestToggleFlipsMembership(t *testing.T) {
	ix := NewIndex()

	assert.True(t, ix.Toggle("user1", "prop1"))
	assert.True(t, ix.Contains("user1", "prop1"))

	assert.False(t, ix.Toggle("user1", "prop1"))
	assert.False(t, ix.Contains("user1", "prop1"))

	assert.True(t, ix.Toggle("user1", "prop1"))
	assert.True(t, ix.Contains("user1", "prop1"))
}

func TestListIsPerUser(t *testing.T) {
	ix := NewIndex()

	ix.Add("user1", "prop2")
	ix.Add("user1", "prop1")
	ix.Add("user2", "prop3")

	assert.Equal(t, []string{"prop1", "prop2"}, ix.List("user1"))
	assert.Equal(t, []string{"prop3"}, ix.List("user2"))
	assert.Empty(t, ix.List("user3"))
}
