package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reisekosten/internal/amqp"
	"reisekosten/internal/core"
	"reisekosten/internal/report"
	"reisekosten/internal/services"
)

// ReportBuilder produces the aggregated summary for a date range.
type ReportBuilder interface {
	Summary(ctx context.Context, rangeStart, rangeEnd time.Time) (core.ReportSummary, error)
}

// Sender mails a finished report. Satisfied by report.Mailer.
type Sender interface {
	Send(to, subject, body string, attachments ...string) error
}

// ExportWorker consumes report export messages, renders the PDF into
// the output directory and optionally mails it.
type ExportWorker struct {
	reports   ReportBuilder
	mailer    Sender
	outputDir string
	now       func() time.Time
}

func NewExportWorker(reports ReportBuilder, mailer Sender, outputDir string) *ExportWorker {
	return &ExportWorker{
		reports:   reports,
		mailer:    mailer,
		outputDir: outputDir,
		now:       time.Now,
	}
}

// HandleExportMessage processes a single export request from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	slog.InfoContext(ctx, "Processing report export",
		"export_id", msg.ExportID,
		"range_start", msg.RangeStart.Format("2006-01-02"),
		"range_end", msg.RangeEnd.Format("2006-01-02"))

	summary, err := w.reports.Summary(ctx, msg.RangeStart, msg.RangeEnd)
	if err != nil {
		return fmt.Errorf("build report summary: %w", err)
	}

	doc := report.BuildDocument(summary, msg.RangeStart, msg.RangeEnd, w.now())

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	filename := filepath.Join(w.outputDir, exportFilename(msg))
	if err := report.RenderPDF(doc, filename); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}

	slog.InfoContext(ctx, "Report PDF written",
		"export_id", msg.ExportID,
		"file", filename,
		"trips", summary.TripCount,
		"grand_total_cents", summary.GrandTotal.Cents)

	if msg.EmailTo == "" {
		return nil
	}
	if w.mailer == nil {
		slog.WarnContext(ctx, "No mailer configured, skipping delivery",
			"export_id", msg.ExportID, "email_to", msg.EmailTo)
		return nil
	}

	subject := fmt.Sprintf("Reisekostenabrechnung %s - %s",
		msg.RangeStart.Format("02.01.2006"), msg.RangeEnd.Format("02.01.2006"))
	if err := w.mailer.Send(msg.EmailTo, subject, "Die Reisekostenabrechnung ist angehängt.<br>", filename); err != nil {
		return fmt.Errorf("mail report: %w", err)
	}

	slog.InfoContext(ctx, "Report mailed", "export_id", msg.ExportID, "email_to", msg.EmailTo)
	return nil
}

func exportFilename(msg *amqp.ReportExportMessage) string {
	return fmt.Sprintf("Reisekostenabrechnung_%s_%s_%s.pdf",
		msg.RangeStart.Format("2006-01-02"), msg.RangeEnd.Format("2006-01-02"), msg.ExportID)
}

var _ ReportBuilder = (*services.ReportService)(nil)
