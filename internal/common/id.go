package common

import (
	"github.com/google/uuid"
)

// NewItemID generates a unique work-item ID with the "item_" prefix
func NewItemID() string {
	return "item_" + uuid.New().String()
}
