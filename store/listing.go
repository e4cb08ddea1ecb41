package store

// Listing is a marketplace post. The assistant treats listings as read-only;
// creation and editing happen through the regular marketplace surface.
type Listing struct {
	ID        int32
	UID       string
	SellerID  int32
	CreatedTs int64
	UpdatedTs int64
	RowStatus RowStatus

	Title       string
	Description string
	// Price is nil for free items.
	Price       *float64
	Category    string
	Subcategory string
	Campus      string
	// Photos holds storage keys, resolved to URLs at enrichment time.
	Photos []string
}

type FindListing struct {
	ID        *int32
	UID       *string
	SellerID  *int32
	RowStatus *RowStatus

	Category    *string
	Subcategory *string
	Campus      *string
	MinPrice    *float64
	MaxPrice    *float64

	// Query matches case-insensitively as a substring across title,
	// description, category, subcategory and campus.
	Query *string

	Limit  *int
	Offset *int
}

type UpdateListing struct {
	ID          int32
	Title       *string
	Description *string
	Price       *float64
	Campus      *string
	RowStatus   *RowStatus
	UpdatedTs   *int64
}

type DeleteListing struct {
	ID int32
}

// CategoryCount pairs a category with the number of listings in it.
type CategoryCount struct {
	Category string
	Count    int32
}

// CampusCount pairs a campus with the number of listings on it.
type CampusCount struct {
	Campus string
	Count  int32
}

// ListingStats summarizes the marketplace for context enrichment.
type ListingStats struct {
	TotalCount        int32
	PopularCategories []CategoryCount
	CampusCounts      []CampusCount
}
