package card

import (
	"fmt"
	"strings"
)

// IndexOf returns the position of the row for entity, or -1.
func (c *CardConfig) IndexOf(entity string) int {
	entity = strings.TrimSpace(entity)
	for i, row := range c.Items {
		if row.Entity == entity {
			return i
		}
	}
	return -1
}

// AddRow appends a row. The entity must be valid and not already present.
func (c *CardConfig) AddRow(row RowConfig) error {
	row.Entity = strings.TrimSpace(row.Entity)
	if err := ValidateEntityRef(row.Entity); err != nil {
		return &ConfigError{Field: "entity", Message: err.Error()}
	}
	if err := ValidateFontSize(row.FontSize); err != nil {
		return &ConfigError{Field: "font_size", Message: err.Error()}
	}
	if c.IndexOf(row.Entity) >= 0 {
		return NewConfigError("entity", fmt.Sprintf("%s is already in the card", row.Entity))
	}
	c.Items = append(c.Items, row)
	return nil
}

// RemoveRow deletes the row at i. The last row cannot be removed since a
// card without rows is not a valid configuration.
func (c *CardConfig) RemoveRow(i int) error {
	if i < 0 || i >= len(c.Items) {
		return NewConfigError("items", fmt.Sprintf("row %d out of range (0-%d)", i, len(c.Items)-1))
	}
	if len(c.Items) == 1 {
		return NewConfigError("items", "cannot remove the last row")
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// MoveUp swaps row i with the one above it. Returns false when nothing moved.
func (c *CardConfig) MoveUp(i int) bool {
	if i <= 0 || i >= len(c.Items) {
		return false
	}
	c.Items[i-1], c.Items[i] = c.Items[i], c.Items[i-1]
	return true
}

// MoveDown swaps row i with the one below it. Returns false when nothing moved.
func (c *CardConfig) MoveDown(i int) bool {
	if i < 0 || i >= len(c.Items)-1 {
		return false
	}
	c.Items[i], c.Items[i+1] = c.Items[i+1], c.Items[i]
	return true
}

// UpdateRow applies fn to row i.
func (c *CardConfig) UpdateRow(i int, fn func(*RowConfig)) error {
	if i < 0 || i >= len(c.Items) {
		return NewConfigError("items", fmt.Sprintf("row %d out of range (0-%d)", i, len(c.Items)-1))
	}
	fn(&c.Items[i])
	return nil
}
