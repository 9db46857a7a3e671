package display

import (
	"testing"

	"github.com/busview/busview/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_SameIdentityReturnsSameState(t *testing.T) {
	c := NewCache()

	// The broker returns a fresh object on every fetch; identity is the path
	first := c.GetOrCreate(models.Queue{Name: "orders", MessageCount: 1})
	first.Messages = []models.Message{{ID: "m1"}}

	second := c.GetOrCreate(models.Queue{Name: "orders", MessageCount: 7})

	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.Messages, 1, "message list must never be reset")
	assert.Equal(t, int64(7), second.Entity.(models.Queue).MessageCount, "snapshot must be replaced")
}

func TestGetOrCreate_DeactivatesPrevious(t *testing.T) {
	c := NewCache()

	q := c.GetOrCreate(models.Queue{Name: "orders"})
	assert.True(t, q.Active)

	s := c.GetOrCreate(models.Subscription{TopicName: "events", Name: "s1"})
	assert.True(t, s.Active)
	assert.False(t, q.Active)
	assert.Equal(t, s, c.ActiveState())
}

func TestRecordMessages_RequiresExistingState(t *testing.T) {
	c := NewCache()

	// Peek before view: dropped, not created
	c.RecordMessages(models.Queue{Name: "orders"}, Normal, []models.Message{{ID: "m1"}})
	assert.Zero(t, c.Len())

	state := c.GetOrCreate(models.Queue{Name: "orders"})
	c.RecordMessages(models.Queue{Name: "orders"}, Normal, []models.Message{{ID: "m1"}, {ID: "m2"}})
	c.RecordMessages(models.Queue{Name: "orders"}, DeadLetter, []models.Message{{ID: "d1"}})

	assert.Len(t, state.Messages, 2)
	assert.Len(t, state.DeadLetterMessages, 1)
	assert.False(t, state.PeekedAt.IsZero())
	assert.False(t, state.DeadLetterPeekedAt.IsZero())
}

func TestRefresh_ActiveIdentityKeepsMessages(t *testing.T) {
	c := NewCache()
	c.GetOrCreate(models.Subscription{TopicName: "events", Name: "s1"})
	c.RecordMessages(models.Subscription{TopicName: "events", Name: "s1"}, Normal, []models.Message{{ID: "m1"}})

	repaint := c.Refresh(models.Subscription{TopicName: "events", Name: "s1", MessageCount: 42})

	require.NotNil(t, repaint, "matching identity must trigger a repaint")
	assert.Equal(t, int64(42), repaint.Entity.(models.Subscription).MessageCount)
	assert.Len(t, repaint.Messages, 1, "previously peeked messages must survive the refresh")
}

func TestRefresh_OtherIdentityDoesNotRepaint(t *testing.T) {
	c := NewCache()
	c.GetOrCreate(models.Queue{Name: "orders"})

	repaint := c.Refresh(models.Queue{Name: "invoices"})

	assert.Nil(t, repaint)
	assert.Equal(t, "orders", c.ActiveState().Entity.Label())
}

func TestRefresh_NoActiveState(t *testing.T) {
	c := NewCache()
	assert.Nil(t, c.Refresh(models.Queue{Name: "orders"}))
}

func TestEvictFor_ActiveStateReportsClose(t *testing.T) {
	c := NewCache()
	c.GetOrCreate(models.Queue{Name: "orders"})

	closed := c.EvictFor(models.Queue{Name: "orders"})

	require.NotNil(t, closed, "deleting the viewed entity must close the view")
	assert.Zero(t, c.Len())
	assert.Nil(t, c.ActiveState())
}

func TestEvictFor_InactiveStateClosesNothing(t *testing.T) {
	c := NewCache()
	c.GetOrCreate(models.Queue{Name: "orders"})
	c.GetOrCreate(models.Queue{Name: "invoices"}) // now active

	closed := c.EvictFor(models.Queue{Name: "orders"})

	assert.Nil(t, closed)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "invoices", c.ActiveState().Entity.Label())
}

func TestEvictFor_UnknownIdentityIsNoOp(t *testing.T) {
	c := NewCache()
	c.GetOrCreate(models.Queue{Name: "orders"})

	assert.Nil(t, c.EvictFor(models.Queue{Name: "missing"}))
	assert.Equal(t, 1, c.Len())
}

func TestSetUIFields_VerbatimEcho(t *testing.T) {
	c := NewCache()
	state := c.GetOrCreate(models.Queue{Name: "orders"})

	ok := c.SetUIFields(state.ID, map[string]string{"body": "hello", "prop.x": " raw "})
	require.True(t, ok)
	assert.Equal(t, "hello", state.UIFields["body"])
	assert.Equal(t, " raw ", state.UIFields["prop.x"])

	assert.False(t, c.SetUIFields("not-a-state", map[string]string{"k": "v"}))
}

func TestByID(t *testing.T) {
	c := NewCache()
	state := c.GetOrCreate(models.Queue{Name: "orders"})

	assert.Equal(t, state, c.ByID(state.ID))
	assert.Nil(t, c.ByID("missing"))
}
