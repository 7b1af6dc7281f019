package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

func TestActionItemLifecycle(t *testing.T) {
	st := session.New()

	item, err := AddActionItem(st, "Recalibrate placement machine", "maintenance", DefaultActionItemStatus)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "open", item.Status)
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	items, err := ListActionItems(st, "", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)

	updated, err := UpdateActionItemStatus(st, item.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, "done", updated.Status)
	assert.Equal(t, item.Description, updated.Description)

	// The stored record reflects the update
	items, err = ListActionItems(st, "done", "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = ListActionItems(st, "open", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListActionItems_Filters(t *testing.T) {
	st := session.New()

	_, err := AddActionItem(st, "Task A", "alice", "open")
	require.NoError(t, err)
	_, err = AddActionItem(st, "Task B", "bob", "open")
	require.NoError(t, err)
	_, err = AddActionItem(st, "Task C", "alice", "done")
	require.NoError(t, err)

	items, err := ListActionItems(st, "", "Alice")
	require.NoError(t, err)
	assert.Len(t, items, 2, "owner filter is case-insensitive")

	items, err = ListActionItems(st, "OPEN", "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Task A", items[0].Description)

	items, err = ListActionItems(st, "cancelled", "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListActionItems_EmptyLedger(t *testing.T) {
	st := session.New()

	items, err := ListActionItems(st, "", "")
	require.NoError(t, err)
	assert.NotNil(t, items, "empty ledger is an empty list, not nil")
	assert.Empty(t, items)
}

func TestUpdateActionItemStatus_NotFound(t *testing.T) {
	st := session.New()

	_, err := UpdateActionItemStatus(st, "no-such-id", "done")
	require.Error(t, err)
	assert.True(t, mcperrors.IsNotFound(err))
}

func TestAddActionItem_Invalid(t *testing.T) {
	st := session.New()

	_, err := AddActionItem(st, "   ", "", "open")
	assert.Error(t, err, "blank description")

	_, err = AddActionItem(st, "Valid task", "", " ")
	assert.Error(t, err, "blank status")

	assert.Empty(t, st.Records(TopicActionItems))
}

func TestActionItemIDsAreUnique(t *testing.T) {
	st := session.New()

	a, err := AddActionItem(st, "Task A", "", "open")
	require.NoError(t, err)
	b, err := AddActionItem(st, "Task A", "", "open")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID, "duplicate descriptions still get distinct IDs")
}
