package services

import (
	"context"

	"reisekosten/internal/amqp"
	"reisekosten/internal/core"
	"reisekosten/internal/routing"
)

// Store is the persistence surface the services need. Both the SQLite
// repository and the in-memory store satisfy it.
type Store interface {
	CreateTrip(ctx context.Context, t core.Trip) error
	UpdateTrip(ctx context.Context, t core.Trip) error
	GetTrip(ctx context.Context, id string) (core.Trip, error)
	ListTrips(ctx context.Context) ([]core.Trip, error)
	DeleteTrip(ctx context.Context, id string) error

	CreateExpense(ctx context.Context, e core.Expense) error
	UpdateExpense(ctx context.Context, e core.Expense) error
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	ListExpensesByTrip(ctx context.Context, tripID string) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	Close() error
}

// ExportPublisher hands report export requests to the message queue.
type ExportPublisher interface {
	PublishReportExport(ctx context.Context, msg *amqp.ReportExportMessage) error
}

// DistanceResolver looks up one-way driving routes between addresses.
type DistanceResolver interface {
	Route(ctx context.Context, origin, destination string) (routing.Route, error)
	Enabled() bool
}
