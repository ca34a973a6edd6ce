package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reisekosten/internal/amqp"
	"reisekosten/internal/core"
	"reisekosten/internal/services"
	"reisekosten/internal/storage"
)

type fakeSender struct {
	to          string
	subject     string
	attachments []string
	err         error
}

func (f *fakeSender) Send(to, subject, body string, attachments ...string) error {
	if f.err != nil {
		return f.err
	}
	f.to = to
	f.subject = subject
	f.attachments = attachments
	return nil
}

func seedStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()

	trip, err := services.NewTripService(store).CreateTrip(ctx, services.TripInput{
		Name:          "Messe März",
		StartDateTime: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		EndDateTime:   time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = services.NewExpenseService(store, nil).CreateExpense(ctx, services.ExpenseInput{
		TripID:      trip.ID,
		Category:    core.CategoryUebernachtung,
		Date:        trip.StartDateTime,
		GrossAmount: core.Money{Cents: 10700},
	})
	if err != nil {
		t.Fatal(err)
	}

	return store
}

func exportMessage(emailTo string) *amqp.ReportExportMessage {
	return amqp.NewReportExportMessage("exp-1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		emailTo)
}

func TestHandleExportMessageWritesPDF(t *testing.T) {
	store := seedStore(t)
	outputDir := t.TempDir()
	w := NewExportWorker(services.NewReportService(store, nil), nil, outputDir)

	if err := w.HandleExportMessage(context.Background(), exportMessage("")); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("wrote %d files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "Reisekostenabrechnung_2024-03-01_2024-03-31_") || !strings.HasSuffix(name, ".pdf") {
		t.Errorf("filename = %q", name)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, name))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Error("output is not a PDF")
	}
}

func TestHandleExportMessageMailsReport(t *testing.T) {
	store := seedStore(t)
	sender := &fakeSender{}
	w := NewExportWorker(services.NewReportService(store, nil), sender, t.TempDir())

	if err := w.HandleExportMessage(context.Background(), exportMessage("buchhaltung@example.com")); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	if sender.to != "buchhaltung@example.com" {
		t.Errorf("mailed to %q", sender.to)
	}
	if !strings.Contains(sender.subject, "01.03.2024 - 31.03.2024") {
		t.Errorf("subject = %q", sender.subject)
	}
	if len(sender.attachments) != 1 {
		t.Fatalf("attachments = %v", sender.attachments)
	}
}

func TestHandleExportMessageWithoutMailerSkipsDelivery(t *testing.T) {
	store := seedStore(t)
	w := NewExportWorker(services.NewReportService(store, nil), nil, t.TempDir())

	// EmailTo set but no mailer configured: the PDF is still written.
	if err := w.HandleExportMessage(context.Background(), exportMessage("x@example.com")); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}
}
