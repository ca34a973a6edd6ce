package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reisekosten/internal/amqp"
	"reisekosten/internal/core"
)

// ErrExportUnavailable is returned when no message queue is configured.
var ErrExportUnavailable = errors.New("report export not configured")

// ReportService aggregates trips and expenses into period reports and
// hands export requests to the queue.
type ReportService struct {
	store     Store
	publisher ExportPublisher
}

func NewReportService(store Store, publisher ExportPublisher) *ReportService {
	return &ReportService{store: store, publisher: publisher}
}

// Summary builds the report for all trips overlapping the date range.
// The range end is extended to the end of its calendar day.
func (s *ReportService) Summary(ctx context.Context, rangeStart, rangeEnd time.Time) (core.ReportSummary, error) {
	if rangeEnd.Before(rangeStart) {
		return core.ReportSummary{}, core.ErrEndBeforeStart
	}

	var (
		trips    []core.Trip
		expenses []core.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trips, err = s.store.ListTrips(gctx)
		if err != nil {
			return fmt.Errorf("load trips: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.ReportSummary{}, err
	}

	selected := core.TripsInRange(trips, rangeStart, rangeEnd)
	summary := core.BuildReport(selected, expenses)

	slog.InfoContext(ctx, "Report built",
		"range_start", rangeStart.Format("2006-01-02"),
		"range_end", rangeEnd.Format("2006-01-02"),
		"trips", summary.TripCount,
		"positions", summary.PositionCount,
		"grand_total_cents", summary.GrandTotal.Cents)

	return summary, nil
}

// RequestExport enqueues an asynchronous PDF export for the range and
// returns the export ID.
func (s *ReportService) RequestExport(ctx context.Context, rangeStart, rangeEnd time.Time, emailTo string) (string, error) {
	if s.publisher == nil {
		return "", ErrExportUnavailable
	}
	if rangeEnd.Before(rangeStart) {
		return "", core.ErrEndBeforeStart
	}

	msg := amqp.NewReportExportMessage(uuid.NewString(), rangeStart, rangeEnd, emailTo)
	if err := s.publisher.PublishReportExport(ctx, msg); err != nil {
		return "", fmt.Errorf("enqueue report export: %w", err)
	}

	slog.InfoContext(ctx, "Report export requested", "export_id", msg.ExportID, "email_to", emailTo)
	return msg.ExportID, nil
}
