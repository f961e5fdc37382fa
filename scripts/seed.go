package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/adapters/database"
	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/infrastructure/clients/postgres"
	"github.com/bookbridge/librental/internal/infrastructure/observability"
	"github.com/bookbridge/librental/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	phone TEXT,
	address TEXT,
	role TEXT NOT NULL DEFAULT 'user',
	is_paid BOOLEAN NOT NULL DEFAULT false,
	borrowed_books_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	genre TEXT NOT NULL,
	year INT,
	pages INT,
	description TEXT,
	image TEXT,
	total_copies INT NOT NULL,
	available_copies INT NOT NULL,
	available BOOLEAN NOT NULL,
	category TEXT NOT NULL DEFAULT 'latest',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS borrowings (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	book_id UUID NOT NULL REFERENCES books(id),
	status TEXT NOT NULL,
	borrow_date TIMESTAMPTZ NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	return_date TIMESTAMPTZ,
	return_requested BOOLEAN NOT NULL DEFAULT false,
	full_name TEXT,
	phone_number TEXT,
	address TEXT,
	city TEXT,
	postal_code TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS damaged_lost (
	id UUID PRIMARY KEY,
	borrowing_id UUID NOT NULL REFERENCES borrowings(id),
	condition TEXT NOT NULL,
	fine_amount NUMERIC NOT NULL DEFAULT 0,
	fine_waived BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_borrowings_user_status ON borrowings (user_id, status);
CREATE INDEX IF NOT EXISTS idx_borrowings_status ON borrowings (status);
CREATE INDEX IF NOT EXISTS idx_books_category ON books (category);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("librental-seed", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				damaged_lost,
				borrowings,
				books,
				categories,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	userRepo := database.NewUserAdapter(pgClient)
	bookRepo := database.NewBookAdapter(pgClient)
	categoryRepo := database.NewCategoryAdapter(pgClient)

	now := time.Now()

	// 1. Seed the admin account and a couple of members
	users := []entities.User{
		{ID: uuid.New().String(), Username: "admin", Email: "admin@bookbridge.test", Password: "admin123", FirstName: "Library", LastName: "Admin", Role: entities.RoleAdmin, IsPaid: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Username: "jane", Email: "jane@bookbridge.test", Password: "jane123", FirstName: "Jane", LastName: "Reader", Role: entities.RoleUser, IsPaid: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Username: "arun", Email: "arun@bookbridge.test", Password: "arun123", FirstName: "Arun", LastName: "Kumar", Role: entities.RoleUser, IsPaid: false, CreatedAt: now, UpdatedAt: now},
	}
	for _, u := range users {
		user := u
		if err := userRepo.Create(ctx, &user); err != nil {
			log.Warn().Err(err).Str("username", user.Username).Msg("failed to create user")
		}
	}

	// 2. Seed genre tags
	genres := []string{"Classic", "Mystery", "Science Fiction", "Technology", "Biography"}
	for _, name := range genres {
		if err := categoryRepo.Create(ctx, &entities.Category{ID: uuid.New().String(), Name: name, CreatedAt: now}); err != nil {
			log.Warn().Err(err).Str("category", name).Msg("failed to create category")
		}
	}

	// 3. Seed the catalog
	year := func(y int) *int { return &y }
	pages := func(p int) *int { return &p }
	books := []entities.Book{
		{ID: uuid.New().String(), Title: "A Tale of Two Cities", Author: "Charles Dickens", Genre: "Classic", Year: year(1859), Pages: pages(448), TotalCopies: 3, AvailableCopies: 3, Available: true, Category: "classics", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Title: "Great Expectations", Author: "Charles Dickens", Genre: "Classic", Year: year(1861), Pages: pages(505), TotalCopies: 2, AvailableCopies: 2, Available: true, Category: "classics", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Title: "The Murder of Roger Ackroyd", Author: "Agatha Christie", Genre: "Mystery", Year: year(1926), Pages: pages(312), TotalCopies: 2, AvailableCopies: 2, Available: true, Category: entities.BookCategoryLatest, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Year: year(1965), Pages: pages(412), TotalCopies: 4, AvailableCopies: 4, Available: true, Category: entities.BookCategoryLatest, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Title: "The Go Programming Language", Author: "Alan Donovan", Genre: "Technology", Year: year(2015), Pages: pages(380), TotalCopies: 2, AvailableCopies: 2, Available: true, Category: entities.BookCategoryLatest, CreatedAt: now, UpdatedAt: now},
	}
	for _, b := range books {
		book := b
		if err := bookRepo.Create(ctx, &book); err != nil {
			log.Warn().Err(err).Str("title", book.Title).Msg("failed to create book")
		}
	}

	log.Info().Int("users", len(users)).Int("categories", len(genres)).Int("books", len(books)).Msg("seeding complete")
}
