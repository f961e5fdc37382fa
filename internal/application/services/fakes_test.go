package services

import (
	"context"
	"strings"
	"time"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// In-memory fakes shared by the service tests.

type fakeBookRepo struct {
	books []*entities.Book
}

func (f *fakeBookRepo) Create(ctx context.Context, book *entities.Book) error {
	f.books = append(f.books, book)
	return nil
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	for _, b := range f.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, apperrors.NewNotFoundError("book not found")
}

func (f *fakeBookRepo) Update(ctx context.Context, book *entities.Book) error {
	for i, b := range f.books {
		if b.ID == book.ID {
			f.books[i] = book
			return nil
		}
	}
	return apperrors.NewNotFoundError("book not found")
}

func (f *fakeBookRepo) List(ctx context.Context, filter repositories.BookFilter) ([]*entities.Book, error) {
	result := []*entities.Book{}
	for _, b := range f.books {
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Available != nil && b.Available != *filter.Available {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *fakeBookRepo) FindAvailableByTitle(ctx context.Context, title string) (*entities.Book, error) {
	for _, b := range f.books {
		if b.Available && strings.Contains(strings.ToLower(b.Title), strings.ToLower(title)) {
			return b, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no available book matches this title")
}

type fakeCategoryRepo struct {
	categories []*entities.Category
}

func (f *fakeCategoryRepo) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	for _, c := range f.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, apperrors.NewNotFoundError("category not found")
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *entities.Category) error {
	f.categories = append(f.categories, category)
	return nil
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*entities.Category, error) {
	return f.categories, nil
}

type fakeUserRepo struct {
	users []*entities.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (f *fakeUserRepo) GetByCredentials(ctx context.Context, identifier, password string) (*entities.User, error) {
	matches := []*entities.User{}
	for _, u := range f.users {
		if (u.Username == identifier || u.Email == identifier) && u.Password == password {
			matches = append(matches, u)
		}
	}
	if len(matches) != 1 {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	return matches[0], nil
}

func (f *fakeUserRepo) GetMemberByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.Role != entities.RoleAdmin {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("member not found")
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) SetPaid(ctx context.Context, id string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.IsPaid = true
			return nil
		}
	}
	return apperrors.NewNotFoundError("user not found")
}

func (f *fakeUserRepo) ListMembers(ctx context.Context, filter repositories.MemberFilter) ([]*entities.User, error) {
	result := []*entities.User{}
	for _, u := range f.users {
		if u.Role == entities.RoleAdmin {
			continue
		}
		if filter.Paid != nil && u.IsPaid != *filter.Paid {
			continue
		}
		result = append(result, u)
	}
	return result, nil
}

type fakeBorrowingRepo struct {
	views       []*entities.BorrowingView
	activeCount map[string]int

	accepted        []string
	rejected        []string
	returned        []string
	returnRequested []string
	returnRejected  []string
	cancelled       []string
	created         []*entities.Borrowing
	createdActive   []*entities.Borrowing
}

func (f *fakeBorrowingRepo) Create(ctx context.Context, borrowing *entities.Borrowing) error {
	f.created = append(f.created, borrowing)
	return nil
}

func (f *fakeBorrowingRepo) CreateActive(ctx context.Context, borrowing *entities.Borrowing) error {
	f.createdActive = append(f.createdActive, borrowing)
	return nil
}

func (f *fakeBorrowingRepo) GetByID(ctx context.Context, id string) (*entities.Borrowing, error) {
	for _, v := range f.views {
		if v.ID == id {
			b := v.Borrowing
			return &b, nil
		}
	}
	return nil, apperrors.NewNotFoundError("borrowing not found")
}

func (f *fakeBorrowingRepo) ListWithDetails(ctx context.Context, filter repositories.BorrowingFilter) ([]*entities.BorrowingView, error) {
	result := []*entities.BorrowingView{}
	for _, v := range f.views {
		if filter.UserID != "" && v.UserID != filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, v.Status) {
			continue
		}
		if filter.ReturnRequested != nil && v.ReturnRequested != *filter.ReturnRequested {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeBorrowingRepo) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	if f.activeCount != nil {
		return f.activeCount[userID], nil
	}
	count := 0
	for _, v := range f.views {
		if v.UserID == userID && v.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeBorrowingRepo) AcceptRequest(ctx context.Context, id string) error {
	f.accepted = append(f.accepted, id)
	return nil
}

func (f *fakeBorrowingRepo) RejectPending(ctx context.Context, id string) error {
	f.rejected = append(f.rejected, id)
	return nil
}

func (f *fakeBorrowingRepo) RequestReturn(ctx context.Context, id string) error {
	f.returnRequested = append(f.returnRequested, id)
	return nil
}

func (f *fakeBorrowingRepo) RejectReturn(ctx context.Context, id string) error {
	f.returnRejected = append(f.returnRejected, id)
	return nil
}

func (f *fakeBorrowingRepo) AcceptReturn(ctx context.Context, id string, returnedAt time.Time) error {
	f.returned = append(f.returned, id)
	return nil
}

func (f *fakeBorrowingRepo) CancelActive(ctx context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

type fakeDamagedLostRepo struct {
	records []*entities.DamagedLost
	views   []*entities.DamagedLostView
	waived  []string
	imposed map[string]float64
}

func (f *fakeDamagedLostRepo) Record(ctx context.Context, record *entities.DamagedLost) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeDamagedLostRepo) List(ctx context.Context) ([]*entities.DamagedLost, error) {
	return f.records, nil
}

func (f *fakeDamagedLostRepo) ListViews(ctx context.Context) ([]*entities.DamagedLostView, error) {
	return f.views, nil
}

func (f *fakeDamagedLostRepo) WaiveFine(ctx context.Context, id string) error {
	f.waived = append(f.waived, id)
	return nil
}

func (f *fakeDamagedLostRepo) ImposeFine(ctx context.Context, id string, amount float64) error {
	if f.imposed == nil {
		f.imposed = map[string]float64{}
	}
	f.imposed[id] = amount
	return nil
}

type fakeEventBus struct {
	published []*entities.CatalogEvent
}

func (f *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.CatalogEvent) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CatalogEvent, error) {
	ch := make(chan *entities.CatalogEvent)
	return ch, nil
}

func (f *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (f *fakeEventBus) Close() error { return nil }

type fakeSessionStore struct {
	sessions map[string]*entities.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*entities.Session{}}
}

func (f *fakeSessionStore) Save(ctx context.Context, session *entities.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, apperrors.NewUnauthorizedError("session not found")
	}
	return session, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakePaymentProvider struct {
	charged []float64
	err     error
}

func (f *fakePaymentProvider) Charge(ctx context.Context, userID string, amount float64, method string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.charged = append(f.charged, amount)
	return "pay-test-ref", nil
}

var _ providers.PaymentProvider = (*fakePaymentProvider)(nil)
var _ providers.SessionStore = (*fakeSessionStore)(nil)
var _ providers.EventBus = (*fakeEventBus)(nil)
var _ repositories.BookRepository = (*fakeBookRepo)(nil)
var _ repositories.CategoryRepository = (*fakeCategoryRepo)(nil)
var _ repositories.UserRepository = (*fakeUserRepo)(nil)
var _ repositories.BorrowingRepository = (*fakeBorrowingRepo)(nil)
var _ repositories.DamagedLostRepository = (*fakeDamagedLostRepo)(nil)
