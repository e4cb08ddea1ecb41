package store

// User is a marketplace account. The assistant reads profile fields for
// context enrichment; the API layer owns credential checks.
type User struct {
	ID        int32
	UID       string
	CreatedTs int64
	UpdatedTs int64
	RowStatus RowStatus

	Email        string
	Name         string
	University   string
	PasswordHash string
}

type FindUser struct {
	ID    *int32
	UID   *string
	Email *string
}

type DeleteUser struct {
	ID int32
}
