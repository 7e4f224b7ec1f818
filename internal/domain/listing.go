package domain

// ListFilter narrows content listings. Search matches case-insensitively
// on the model's text columns; zero Limit means the storage default.
type ListFilter struct {
	Search     string
	OnlyActive bool
	Limit      int
	Offset     int
}
