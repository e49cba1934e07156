package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/lexdashapp/lexdash/internal/database"
)

func reportPeriod(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -1, 0), now
}

func TestReportDeadlineAlert(t *testing.T) {
	fixed := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	eng := testEngine(t, Options{Now: func() time.Time { return fixed }})

	client, _ := eng.AddClient(ClientRequest{Name: "Cliente"})

	soon := fixed.Add(3 * 24 * time.Hour)
	far := fixed.Add(30 * 24 * time.Hour)
	eng.AddProcess(ProcessRequest{CaseNumber: "1", ClientID: client.ID, NextDeadline: &soon})
	eng.AddProcess(ProcessRequest{CaseNumber: "2", ClientID: client.ID, NextDeadline: &far})
	eng.AddProcess(ProcessRequest{CaseNumber: "3", ClientID: client.ID})

	start, end := reportPeriod(fixed)
	report := eng.GenerateReport(start, end)

	if len(report.Alerts) != 1 {
		t.Fatalf("Expected exactly 1 alert, got %d", len(report.Alerts))
	}

	alert := report.Alerts[0]
	if alert.Type != AlertDeadlines {
		t.Errorf("Expected deadlines alert, got %q", alert.Type)
	}
	if alert.Severity != SeverityWarning {
		t.Errorf("Expected warning severity, got %q", alert.Severity)
	}
	if alert.Count != 1 {
		t.Errorf("Expected count 1, got %d", alert.Count)
	}
	if !strings.Contains(alert.Message, "1 processo") {
		t.Errorf("Message should mention the process count, got %q", alert.Message)
	}
}

func TestReportOverdueAlert(t *testing.T) {
	fixed := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	eng := testEngine(t, Options{Now: func() time.Time { return fixed }})

	past := fixed.Add(-48 * time.Hour)
	future := fixed.Add(48 * time.Hour)

	eng.AddTransaction(TransactionRequest{Kind: database.KindExpense, Amount: 100, DueDate: &past})
	eng.AddTransaction(TransactionRequest{Kind: database.KindRevenue, Amount: 300, DueDate: &past})
	eng.AddTransaction(TransactionRequest{Kind: database.KindExpense, Amount: 50, DueDate: &future})

	// A paid transaction past its due date is not overdue
	paid, _ := eng.AddTransaction(TransactionRequest{Kind: database.KindExpense, Amount: 75, DueDate: &past})
	eng.MarkTransactionPaid(paid.ID)

	start, end := reportPeriod(fixed)
	report := eng.GenerateReport(start, end)

	if len(report.Alerts) != 1 {
		t.Fatalf("Expected exactly 1 alert, got %d", len(report.Alerts))
	}

	alert := report.Alerts[0]
	if alert.Type != AlertOverdue {
		t.Errorf("Expected overdue alert, got %q", alert.Type)
	}
	if alert.Severity != SeverityError {
		t.Errorf("Expected error severity, got %q", alert.Severity)
	}
	if alert.Count != 2 {
		t.Errorf("Expected 2 overdue transactions, got %d", alert.Count)
	}
}

func TestReportNoAlerts(t *testing.T) {
	eng := testEngine(t, Options{})

	start, end := reportPeriod(time.Now())
	report := eng.GenerateReport(start, end)

	if len(report.Alerts) != 0 {
		t.Errorf("Expected no alerts, got %d", len(report.Alerts))
	}
	if report.Alerts == nil {
		t.Error("Alerts should serialize as an empty list, not null")
	}
}

func TestReportCarriesPeriodAndMetrics(t *testing.T) {
	fixed := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	eng := testEngine(t, Options{Now: func() time.Time { return fixed }})

	txn, _ := eng.AddTransaction(TransactionRequest{Kind: database.KindRevenue, Amount: 3000})
	eng.MarkTransactionPaid(txn.ID)

	// The period is metadata only: metrics fold the whole state regardless
	start := fixed.AddDate(-5, 0, 0)
	end := start.AddDate(0, 0, 1)
	report := eng.GenerateReport(start, end)

	if !report.PeriodStart.Equal(start) || !report.PeriodEnd.Equal(end) {
		t.Error("Report must carry the requested period")
	}
	if report.Metrics.Financial.RevenueTotal != 3000 {
		t.Errorf("Metrics must cover the entire state, got revenue %v", report.Metrics.Financial.RevenueTotal)
	}
	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("Expected generation time %v, got %v", fixed, report.GeneratedAt)
	}
}

func TestReportCustomDeadlineWindow(t *testing.T) {
	fixed := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	eng := testEngine(t, Options{
		Now:            func() time.Time { return fixed },
		DeadlineWindow: 48 * time.Hour,
	})

	client, _ := eng.AddClient(ClientRequest{Name: "Cliente"})
	threeDays := fixed.Add(3 * 24 * time.Hour)
	eng.AddProcess(ProcessRequest{CaseNumber: "1", ClientID: client.ID, NextDeadline: &threeDays})

	start, end := reportPeriod(fixed)
	report := eng.GenerateReport(start, end)

	if len(report.Alerts) != 0 {
		t.Errorf("Deadline outside a 2-day window must not alert, got %d alerts", len(report.Alerts))
	}
}
