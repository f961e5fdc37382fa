package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
	"github.com/bookbridge/librental/internal/infrastructure/clients/postgres"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

var userColumns = []interface{}{
	"id", "username", "email", "password", "first_name", "last_name",
	"phone", "address", "role", "is_paid", "borrowed_books_count",
	"created_at", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":                   user.ID,
		"username":             user.Username,
		"email":                user.Email,
		"password":             user.Password,
		"first_name":           user.FirstName,
		"last_name":            user.LastName,
		"phone":                user.Phone,
		"address":              user.Address,
		"role":                 user.Role,
		"is_paid":              user.IsPaid,
		"borrowed_books_count": user.BorrowedBooksCount,
		"created_at":           user.CreatedAt,
		"updated_at":           user.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := a.scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}

// GetByCredentials looks up a user by username-or-email plus an exact
// password match. Zero or ambiguous matches fail with an unauthorized error.
func (a *UserAdapter) GetByCredentials(ctx context.Context, identifier, password string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(
			goqu.Or(
				goqu.Ex{"username": identifier},
				goqu.Ex{"email": identifier},
			),
			goqu.Ex{"password": password},
		).
		Limit(2).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query credentials", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := a.scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating users", err)
	}

	if len(users) != 1 {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	return users[0], nil
}

// GetMemberByEmail retrieves a non-admin user by email
func (a *UserAdapter) GetMemberByEmail(ctx context.Context, email string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(
			goqu.Ex{"email": email},
			goqu.C("role").Neq(entities.RoleAdmin),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := a.scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("member with email %s not found", email))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get member", err)
	}

	return user, nil
}

// ExistsByUsernameOrEmail reports whether a user already holds the username
// or the email
func (a *UserAdapter) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("id")).
		From("users").
		Where(
			goqu.Or(
				goqu.Ex{"username": username},
				goqu.Ex{"email": email},
			),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check user existence", err)
	}

	return count > 0, nil
}

// SetPaid flips the membership payment gate on the user row
func (a *UserAdapter) SetPaid(ctx context.Context, id string) error {
	query, args, err := a.db.Update("users").
		Set(goqu.Record{"is_paid": true, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to mark user as paid", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}

	return nil
}

// ListMembers retrieves non-admin users with filters
func (a *UserAdapter) ListMembers(ctx context.Context, filter repositories.MemberFilter) ([]*entities.User, error) {
	ds := a.db.Select(userColumns...).
		From("users").
		Where(goqu.C("role").Neq(entities.RoleAdmin)).
		Order(goqu.C("created_at").Desc())

	if filter.Paid != nil {
		ds = ds.Where(goqu.Ex{"is_paid": *filter.Paid})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list members", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := a.scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan member", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating members", err)
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *UserAdapter) scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	var phone, address sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&phone,
		&address,
		&user.Role,
		&user.IsPaid,
		&user.BorrowedBooksCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Phone = phone.String
	user.Address = address.String
	return user, nil
}
