package services

import (
	"context"
	"time"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
)

// ReportingService computes the admin dashboard counters and member listings.
// Everything is fetched fresh and reduced in memory; nothing here is cached.
type ReportingService struct {
	users      repositories.UserRepository
	books      repositories.BookRepository
	borrowings repositories.BorrowingRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(users repositories.UserRepository, books repositories.BookRepository, borrowings repositories.BorrowingRepository) *ReportingService {
	return &ReportingService{
		users:      users,
		books:      books,
		borrowings: borrowings,
	}
}

// DashboardStats computes the admin dashboard counters
func (s *ReportingService) DashboardStats(ctx context.Context) (*entities.DashboardStats, error) {
	stats := &entities.DashboardStats{}

	members, err := s.users.ListMembers(ctx, repositories.MemberFilter{})
	if err != nil {
		return nil, err
	}
	stats.TotalMembers = len(members)
	for _, m := range members {
		if m.IsPaid {
			stats.PaidMembers++
		}
	}

	books, err := s.books.List(ctx, repositories.BookFilter{})
	if err != nil {
		return nil, err
	}
	stats.TotalBooks = len(books)
	for _, b := range books {
		stats.AvailableCopies += b.AvailableCopies
	}

	borrowed, err := s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		Statuses: []string{entities.BorrowingStatusBorrowed},
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	stats.ActiveBorrowed = len(borrowed)
	for _, b := range borrowed {
		if b.IsOverdue(now) {
			stats.OverdueBooks++
		}
		if b.ReturnRequested {
			stats.ReturnRequests++
		}
	}

	pending, err := s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		Statuses: []string{entities.BorrowingStatusPending},
	})
	if err != nil {
		return nil, err
	}
	stats.PendingRequests = len(pending)

	return stats, nil
}

// ListMembers retrieves members with their live borrowed counts. The count is
// recomputed from the borrowings table, not read from the denormalized
// counter, so the admin screen always reflects reality.
func (s *ReportingService) ListMembers(ctx context.Context, filter repositories.MemberFilter) ([]*entities.MemberView, error) {
	members, err := s.users.ListMembers(ctx, filter)
	if err != nil {
		return nil, err
	}

	borrowed, err := s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		Statuses: []string{entities.BorrowingStatusBorrowed},
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(members))
	for _, b := range borrowed {
		counts[b.UserID]++
	}

	views := make([]*entities.MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, &entities.MemberView{
			User:            *m,
			CurrentBorrowed: counts[m.ID],
		})
	}
	return views, nil
}
