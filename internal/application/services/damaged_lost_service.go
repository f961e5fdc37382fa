package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// DamagedLostService handles the damaged/lost back office: recording
// incidents against active borrowings and managing the resulting fines.
type DamagedLostService struct {
	records    repositories.DamagedLostRepository
	borrowings repositories.BorrowingRepository
	users      repositories.UserRepository
	eventBus   providers.EventBus
}

// NewDamagedLostService creates a new damaged/lost service
func NewDamagedLostService(records repositories.DamagedLostRepository, borrowings repositories.BorrowingRepository, users repositories.UserRepository, eventBus providers.EventBus) *DamagedLostService {
	return &DamagedLostService{
		records:    records,
		borrowings: borrowings,
		users:      users,
		eventBus:   eventBus,
	}
}

// Record logs a book as damaged or lost. The admin identifies the borrowing
// by member email plus book title; the title match is case-insensitive. The
// borrowing moves to the matching terminal status and the fine is imposed in
// the same step.
func (s *DamagedLostService) Record(ctx context.Context, memberEmail, bookTitle, condition string, fineAmount float64) (*entities.DamagedLost, error) {
	if condition != entities.ConditionDamaged && condition != entities.ConditionLost {
		return nil, apperrors.NewValidationError("condition must be damaged or lost")
	}
	if fineAmount < 0 {
		return nil, apperrors.NewValidationError("fine amount cannot be negative")
	}

	member, err := s.users.GetMemberByEmail(ctx, memberEmail)
	if err != nil {
		return nil, err
	}

	active, err := s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		UserID:   member.ID,
		Statuses: []string{entities.BorrowingStatusBorrowed},
	})
	if err != nil {
		return nil, err
	}

	var borrowing *entities.BorrowingView
	for _, b := range active {
		if strings.EqualFold(b.BookTitle, strings.TrimSpace(bookTitle)) {
			borrowing = b
			break
		}
	}
	if borrowing == nil {
		return nil, apperrors.NewNotFoundError("no active borrowing found for this member and book")
	}

	record := &entities.DamagedLost{
		ID:          uuid.New().String(),
		BorrowingID: borrowing.ID,
		Condition:   condition,
		FineAmount:  fineAmount,
		CreatedAt:   time.Now(),
	}
	if err := s.records.Record(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, borrowing.BookID)
	return record, nil
}

// List retrieves all damaged/lost records with member and book details
func (s *DamagedLostService) List(ctx context.Context) ([]*entities.DamagedLostView, error) {
	return s.records.ListViews(ctx)
}

// WaiveFine waives the fine on a record. Waiving an already-waived fine is a
// no-op.
func (s *DamagedLostService) WaiveFine(ctx context.Context, id string) error {
	return s.records.WaiveFine(ctx, id)
}

// ImposeFine sets the fine amount on a record
func (s *DamagedLostService) ImposeFine(ctx context.Context, id string, amount float64) error {
	if amount < 0 {
		return apperrors.NewValidationError("fine amount cannot be negative")
	}
	return s.records.ImposeFine(ctx, id, amount)
}

// Stats aggregates the damaged/lost counters. Waived fines do not count
// toward the outstanding total.
func (s *DamagedLostService) Stats(ctx context.Context) (*entities.DamagedLostStats, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &entities.DamagedLostStats{}
	for _, r := range records {
		switch r.Condition {
		case entities.ConditionDamaged:
			stats.TotalDamaged++
		case entities.ConditionLost:
			stats.TotalLost++
		}
		if !r.FineWaived {
			stats.TotalFines += r.FineAmount
		}
	}
	return stats, nil
}

func (s *DamagedLostService) publish(ctx context.Context, bookID string) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewCatalogEvent(bookID, entities.CatalogEventTypeBookUpdated)
	if err := s.eventBus.Publish(ctx, providers.EventChannelCatalogUpdates, event); err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Msg("failed to publish catalog event")
	}
}
