package model

import "time"

// Book represents a title in the catalog together with its available
// copy count. Copies counts how many physical units are currently on
// the shelf, not the total the library owns.
type Book struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Author          string    `json:"author"`
	PublicationDate time.Time `json:"publication_date"`
	Copies          int       `json:"copies"` // Invariant: never negative
	CreatedOn       time.Time `json:"created_on"`
	UpdatedOn       time.Time `json:"updated_on"`
}

// Available returns true if at least one copy is on the shelf
func (b *Book) Available() bool {
	return b.Copies > 0
}
