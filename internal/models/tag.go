package models

// Tag is a label with a display color. It can be attached to a book, which
// makes it the default for all of the book's blocks, or to a single block.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category,omitempty"`
	IsBlockOnly bool   `json:"is_block_only,omitempty"`
}

// DefaultTagColors maps well-known tag names to their colors. A tag created
// without an explicit color picks its color from here.
var DefaultTagColors = map[string]string{
	"Deadline":  "#EF4444",
	"Important": "#F59E0B",
	"Exam Prep": "#3B82F6",
	"Notes":     "#10B981",
	"Personal":  "#8B5CF6",
	"Group":     "#EC4899",
}
