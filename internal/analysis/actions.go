package analysis

import (
	"strings"
	"time"

	"github.com/google/uuid"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// DefaultActionItemStatus is the status assigned to new action items
const DefaultActionItemStatus = "open"

// ActionItem is one tracked corrective action. ID and Description are
// immutable after creation; Status (and UpdatedAt) change only through
// UpdateActionItemStatus.
type ActionItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Owner       string `json:"owner,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// AddActionItem appends a new action item to the session ledger and
// returns it. The tool layer substitutes DefaultActionItemStatus when the
// caller omits a status; an explicitly empty status is a validation error.
func AddActionItem(st *session.State, description, owner, status string) (*ActionItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, mcperrors.NewInvalidInput("Action item description cannot be empty.")
	}
	if strings.TrimSpace(status) == "" {
		return nil, mcperrors.NewInvalidInput("Action item status cannot be empty.")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	item := &ActionItem{
		ID:          uuid.NewString(),
		Description: description,
		Owner:       owner,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	st.Append(TopicActionItems, session.Record{
		"id":          item.ID,
		"description": item.Description,
		"owner":       item.Owner,
		"status":      item.Status,
		"created_at":  item.CreatedAt,
		"updated_at":  item.UpdatedAt,
	})

	return item, nil
}

// ListActionItems returns the ledger entries matching the provided
// filters, in insertion order. Filters are case-insensitive exact matches;
// an empty filter matches everything. No items recorded yet is an empty
// list, not an error.
func ListActionItems(st *session.State, statusFilter, ownerFilter string) ([]ActionItem, error) {
	var items []ActionItem
	for _, r := range st.Records(TopicActionItems) {
		item := recordToActionItem(r)
		if statusFilter != "" && !strings.EqualFold(item.Status, statusFilter) {
			continue
		}
		if ownerFilter != "" && !strings.EqualFold(item.Owner, ownerFilter) {
			continue
		}
		items = append(items, item)
	}
	if items == nil {
		items = []ActionItem{}
	}
	return items, nil
}

// UpdateActionItemStatus locates an action item by ID, mutates its status
// and updated_at timestamp, and returns the updated item.
func UpdateActionItemStatus(st *session.State, actionID, newStatus string) (*ActionItem, error) {
	if strings.TrimSpace(actionID) == "" {
		return nil, mcperrors.NewInvalidInput("Action item ID cannot be empty.")
	}
	if strings.TrimSpace(newStatus) == "" {
		return nil, mcperrors.NewInvalidInput("New status cannot be empty.")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var updated ActionItem
	found := st.Update(TopicActionItems,
		func(r session.Record) bool {
			id, _ := r["id"].(string)
			return id == actionID
		},
		func(r session.Record) {
			r["status"] = newStatus
			r["updated_at"] = now
			updated = recordToActionItem(r)
		},
	)
	if !found {
		return nil, mcperrors.NewNotFound("Action item", actionID)
	}
	return &updated, nil
}

func recordToActionItem(r session.Record) ActionItem {
	str := func(key string) string {
		v, _ := r[key].(string)
		return v
	}
	return ActionItem{
		ID:          str("id"),
		Description: str("description"),
		Owner:       str("owner"),
		Status:      str("status"),
		CreatedAt:   str("created_at"),
		UpdatedAt:   str("updated_at"),
	}
}
