package routes

import (
	"net/http"

	"github.com/bookbridge/librental/internal/api/handlers"
	"github.com/bookbridge/librental/internal/api/middleware"
	"github.com/bookbridge/librental/internal/domain/providers"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler        *handlers.AuthHandler
	bookHandler        *handlers.BookHandler
	borrowingHandler   *handlers.BorrowingHandler
	memberHandler      *handlers.MemberHandler
	dashboardHandler   *handlers.DashboardHandler
	damagedLostHandler *handlers.DamagedLostHandler
	membershipHandler  *handlers.MembershipHandler

	sessions       providers.SessionStore
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	bookHandler *handlers.BookHandler,
	borrowingHandler *handlers.BorrowingHandler,
	memberHandler *handlers.MemberHandler,
	dashboardHandler *handlers.DashboardHandler,
	damagedLostHandler *handlers.DamagedLostHandler,
	membershipHandler *handlers.MembershipHandler,
	sessions providers.SessionStore,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		authHandler:        authHandler,
		bookHandler:        bookHandler,
		borrowingHandler:   borrowingHandler,
		memberHandler:      memberHandler,
		dashboardHandler:   dashboardHandler,
		damagedLostHandler: damagedLostHandler,
		membershipHandler:  membershipHandler,

		sessions:       sessions,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/session", r.authHandler.GetSession)
	r.mux.HandleFunc("GET /api/auth/can-borrow", r.authHandler.CanBorrow)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/books", r.bookHandler.ListBooks)
	r.mux.HandleFunc("GET /api/books/filter", r.bookHandler.FilterBooks)
	r.mux.HandleFunc("GET /api/books/{id}", r.bookHandler.GetBook)
	r.mux.HandleFunc("GET /api/categories", r.bookHandler.ListCategories)

	// Member borrowing endpoints
	r.member("POST /api/borrowings", r.borrowingHandler.RequestBorrow)
	r.member("POST /api/borrowings/{id}/return-request", r.borrowingHandler.RequestReturn)

	// Membership fee endpoint
	r.member("POST /api/membership/pay", r.membershipHandler.Pay)
	r.member("GET /api/membership/status", r.membershipHandler.Status)

	// Admin catalog endpoints
	r.admin("POST /api/admin/books", r.bookHandler.AddBook)
	r.admin("PUT /api/admin/books/{id}", r.bookHandler.UpdateBook)

	// Admin borrowing endpoints
	r.admin("GET /api/admin/borrowings/requests", r.borrowingHandler.ListPendingRequests)
	r.admin("GET /api/admin/borrowings/active", r.borrowingHandler.ListActive)
	r.admin("GET /api/admin/borrowings/return-requests", r.borrowingHandler.ListReturnRequests)
	r.admin("POST /api/admin/borrowings", r.borrowingHandler.CreateDirect)
	r.admin("POST /api/admin/borrowings/{id}/accept", r.borrowingHandler.AcceptRequest)
	r.admin("POST /api/admin/borrowings/{id}/reject", r.borrowingHandler.RejectRequest)
	r.admin("POST /api/admin/borrowings/{id}/return/accept", r.borrowingHandler.AcceptReturn)
	r.admin("POST /api/admin/borrowings/{id}/return/reject", r.borrowingHandler.RejectReturn)
	r.admin("DELETE /api/admin/borrowings/{id}", r.borrowingHandler.CancelBorrowing)

	// Admin member endpoints
	r.admin("GET /api/admin/members", r.memberHandler.ListMembers)
	r.admin("GET /api/admin/dashboard", r.dashboardHandler.GetStats)

	// Admin damaged/lost endpoints
	r.admin("GET /api/admin/damaged-lost", r.damagedLostHandler.List)
	r.admin("GET /api/admin/damaged-lost/stats", r.damagedLostHandler.Stats)
	r.admin("POST /api/admin/damaged-lost", r.damagedLostHandler.Record)
	r.admin("POST /api/admin/damaged-lost/{id}/waive", r.damagedLostHandler.WaiveFine)
	r.admin("PUT /api/admin/damaged-lost/{id}/fine", r.damagedLostHandler.ImposeFine)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.WithSession(r.sessions)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) member(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, middleware.RequireAuth(handler))
}

func (r *Router) admin(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, middleware.RequireAdmin(handler))
}
