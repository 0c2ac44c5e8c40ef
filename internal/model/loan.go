package model

import "time"

// Loan represents a book checked out by a user. A loan is open while
// ReturnDate is nil and closed once it is set; ReturnDate is write-once
// and never cleared.
type Loan struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	CreatedOn  time.Time  `json:"created_on"`
	UpdatedOn  time.Time  `json:"updated_on"`
}

// Open returns true if the loan has not been returned yet
func (l *Loan) Open() bool {
	return l.ReturnDate == nil
}

// Overdue returns true if the loan is open past its due date
func (l *Loan) Overdue(now time.Time) bool {
	return l.Open() && now.After(l.DueDate)
}
