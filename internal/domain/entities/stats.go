package entities

// DashboardStats aggregates the admin dashboard counters. Computed by
// fetching filtered row sets and reducing in memory; never cached.
type DashboardStats struct {
	TotalMembers    int `json:"total_members"`
	PaidMembers     int `json:"paid_members"`
	TotalBooks      int `json:"total_books"`
	AvailableCopies int `json:"available_copies"`
	ActiveBorrowed  int `json:"active_borrowed"`
	PendingRequests int `json:"pending_requests"`
	ReturnRequests  int `json:"return_requests"`
	OverdueBooks    int `json:"overdue_books"`
}

// MemberView is a member row with its live borrowed count, recomputed from
// the borrowings table rather than the denormalized counter.
type MemberView struct {
	User
	CurrentBorrowed int `json:"current_borrowed"`
}
