// Package borrowings serves the borrowing read models: the filtered listing, a single borrowing and
// the viewer's overdue borrowings.
//
// Users only ever see their own borrowings; staff sees everyone's and may filter by owner.
// A borrowing that exists but belongs to someone else is reported as not found.
// All reads accept eventual consistency and may be served by a replica.
package borrowings
