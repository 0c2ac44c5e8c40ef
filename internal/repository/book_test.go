package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBookRepository_AddCopies_Restock(t *testing.T) {
	var gotQuery string
	var gotVars map[string]interface{}
	db := &fakeDB{
		queryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
			gotQuery = query
			gotVars = vars
			return []interface{}{okResult(), okResult()}, nil
		},
	}

	repo := NewBookRepository(db)
	if err := repo.AddCopies(context.Background(), "book:1", 5); err != nil {
		t.Fatalf("AddCopies failed: %v", err)
	}
	if !strings.Contains(gotQuery, "BEGIN TRANSACTION") {
		t.Error("expected the adjustment to run in a transaction")
	}
	if !strings.Contains(gotQuery, "copies + $") {
		t.Error("expected the adjustment to be guarded against going negative")
	}
	found := false
	for _, v := range gotVars {
		if v == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected delta 5 in query vars, got %v", gotVars)
	}
}

func TestBookRepository_AddCopies_RejectedWithdrawal(t *testing.T) {
	db := &fakeDB{
		queryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
			return nil, errors.New(`An error occurred: "negative_copies"`)
		},
	}

	repo := NewBookRepository(db)
	err := repo.AddCopies(context.Background(), "book:1", -3)
	if !errors.Is(err, ErrCopiesBelowZero) {
		t.Errorf("expected ErrCopiesBelowZero, got %v", err)
	}
}

func TestBookRepository_AddCopies_OtherErrorPassesThrough(t *testing.T) {
	db := &fakeDB{
		queryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
			return nil, errors.New("connection reset")
		},
	}

	repo := NewBookRepository(db)
	err := repo.AddCopies(context.Background(), "book:1", -1)
	if errors.Is(err, ErrCopiesBelowZero) {
		t.Error("unrelated errors must not map to ErrCopiesBelowZero")
	}
	if err == nil {
		t.Error("expected error to propagate")
	}
}
