package domain

// ListItem is the common display surface of catalogue entities.
// Branch, Regulation, Year, Semester, Subject and Material implement it
// so views and search can treat a level of the hierarchy uniformly.
type ListItem interface {
	// GetID returns the server identifier
	GetID() int64

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (code, counts, dates)
	GetDescription() string

	// GetItemType returns "branch", "regulation", "year", "semester", "subject" or "material"
	GetItemType() string

	// CanDrillDown returns true if the item has a child level
	CanDrillDown() bool
}
