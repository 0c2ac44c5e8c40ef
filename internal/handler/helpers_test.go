package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/libris/internal/database"
	"github.com/openshelf/libris/internal/middleware"
	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/repository"
	"github.com/openshelf/libris/internal/service"
	"github.com/openshelf/libris/pkg/jwt"
)

// ============================================================================
// In-Memory Repositories
// ============================================================================

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email", database.ErrDuplicate)
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user:%d", r.seq)
	now := time.Now()
	user.CreatedOn = now
	user.UpdatedOn = now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.UpdatedOn = time.Now()
	*user = *existing
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	existing.Hash = &hash
	return nil
}

type memBookRepo struct {
	mu    sync.Mutex
	books map[string]*model.Book
	seq   int
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{books: make(map[string]*model.Book)}
}

func (r *memBookRepo) Create(ctx context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	book.ID = fmt.Sprintf("book:%d", r.seq)
	now := time.Now()
	book.CreatedOn = now
	book.UpdatedOn = now
	copied := *book
	r.books[book.ID] = &copied
	return nil
}

func (r *memBookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *memBookRepo) FindAll(ctx context.Context) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	books := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, *b)
	}
	return books, nil
}

func (r *memBookRepo) Update(ctx context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.books[book.ID]
	if !ok {
		return fmt.Errorf("book not found")
	}
	existing.Name = book.Name
	existing.Author = book.Author
	existing.PublicationDate = book.PublicationDate
	existing.UpdatedOn = time.Now()
	return nil
}

func (r *memBookRepo) AddCopies(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.books[id]
	if !ok || existing.Copies+delta < 0 {
		return repository.ErrCopiesBelowZero
	}
	existing.Copies += delta
	return nil
}

type memLoanRepo struct {
	mu    sync.Mutex
	loans map[string]*model.Loan
	books *memBookRepo
	seq   int
}

func newMemLoanRepo(books *memBookRepo) *memLoanRepo {
	return &memLoanRepo{loans: make(map[string]*model.Loan), books: books}
}

func (r *memLoanRepo) CreateWithDecrement(ctx context.Context, loan *model.Loan) error {
	r.books.mu.Lock()
	book, ok := r.books.books[loan.BookID]
	if !ok || book.Copies <= 0 {
		r.books.mu.Unlock()
		return repository.ErrNoCopies
	}
	book.Copies--
	r.books.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	loan.ID = fmt.Sprintf("loan:%d", r.seq)
	now := time.Now()
	loan.CreatedOn = now
	loan.UpdatedOn = now
	copied := *loan
	r.loans[loan.ID] = &copied
	return nil
}

func (r *memLoanRepo) MarkReturnedAndIncrement(ctx context.Context, loanID, bookID string, returnedAt time.Time) error {
	r.mu.Lock()
	loan, ok := r.loans[loanID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("loan not found")
	}
	if loan.ReturnDate != nil {
		r.mu.Unlock()
		return repository.ErrAlreadyReturned
	}
	loan.ReturnDate = &returnedAt
	loan.UpdatedOn = time.Now()
	r.mu.Unlock()

	return r.books.AddCopies(ctx, bookID, 1)
}

func (r *memLoanRepo) GetByID(ctx context.Context, id string) (*model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

func (r *memLoanRepo) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, l := range r.loans {
		if l.UserID == userID && l.ReturnDate == nil {
			count++
		}
	}
	return count, nil
}

func (r *memLoanRepo) FindByUser(ctx context.Context, userID string) ([]model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loans := make([]model.Loan, 0)
	for _, l := range r.loans {
		if l.UserID == userID {
			loans = append(loans, *l)
		}
	}
	return loans, nil
}

func (r *memLoanRepo) FindAll(ctx context.Context) ([]model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loans := make([]model.Loan, 0, len(r.loans))
	for _, l := range r.loans {
		loans = append(loans, *l)
	}
	return loans, nil
}

// ============================================================================
// Test Environment
// ============================================================================

type testEnv struct {
	users *memUserRepo
	books *memBookRepo
	loans *memLoanRepo

	auth    *AuthHandler
	userH   *UserHandler
	bookH   *BookHandler
	loanH   *LoanHandler
	authSvc *service.AuthService
	tokens  *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	tokenSvc := service.NewTokenService(jwt.NewTestService(key, "test-issuer", 15*time.Minute))

	users := newMemUserRepo()
	books := newMemBookRepo()
	loans := newMemLoanRepo(books)

	authSvc := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     users,
		TokenService: tokenSvc,
		Hasher:       &service.BcryptHasher{Cost: bcrypt.MinCost},
	})
	userSvc := service.NewUserService(users, nil)
	bookSvc := service.NewBookService(books, nil)
	loanSvc := service.NewLoanService(service.LoanServiceConfig{
		LoanRepo: loans,
		BookRepo: books,
		UserRepo: users,
	})

	return &testEnv{
		users:   users,
		books:   books,
		loans:   loans,
		auth:    NewAuthHandler(authSvc),
		userH:   NewUserHandler(userSvc),
		bookH:   NewBookHandler(bookSvc),
		loanH:   NewLoanHandler(loanSvc),
		authSvc: authSvc,
		tokens:  tokenSvc,
	}
}

func (e *testEnv) addUser(t *testing.T, name, email string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	h := string(hash)
	user := &model.User{Name: name, Email: email, Hash: &h, Role: role}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) addBook(t *testing.T, name string, copies int) *model.Book {
	t.Helper()
	book := &model.Book{
		Name:            name,
		Author:          "Test Author",
		PublicationDate: time.Date(2001, 6, 1, 0, 0, 0, 0, time.UTC),
		Copies:          copies,
	}
	if err := e.books.Create(context.Background(), book); err != nil {
		t.Fatalf("failed to create book: %v", err)
	}
	return book
}

// ============================================================================
// Request Helpers
// ============================================================================

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser injects the user's identity the way the auth middleware would
func asUser(req *http.Request, user *model.User) *http.Request {
	claims := &jwt.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, user.ID)
	ctx = context.WithValue(ctx, middleware.UserEmailKey, user.Email)
	ctx = context.WithValue(ctx, middleware.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func parseData(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to parse response envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("failed to parse response data: %v", err)
	}
}

func parseErrorResponse(t *testing.T, body []byte) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return &problem
}
