package engine

import (
	"fmt"
	"time"

	"github.com/lexdashapp/lexdash/internal/database"
)

type AlertSeverity string

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityError   AlertSeverity = "error"
)

const (
	AlertDeadlines = "deadlines"
	AlertOverdue   = "overdue"
)

type Alert struct {
	Type     string        `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	Count    int           `json:"count"`
}

// Report combines a metrics snapshot with the rule-based alert scan. The
// period is declared metadata on the report: metrics always fold the entire
// current state, never a date slice of it.
type Report struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`
	Metrics     Metrics   `json:"metrics"`
	Alerts      []Alert   `json:"alerts"`
}

// GenerateReport builds a consolidated report for the nominal period.
// Alerts are scanned fresh on every call; nothing is persisted or
// deduplicated between calls.
func (e *Engine) GenerateReport(periodStart, periodEnd time.Time) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	report := &Report{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GeneratedAt: now,
		Metrics:     ComputeMetrics(e.clients.list(), e.processes.list(), e.transactions.list(), e.partners.list(), now),
		Alerts:      []Alert{},
	}

	if n := e.countApproachingDeadlines(now); n > 0 {
		report.Alerts = append(report.Alerts, Alert{
			Type:     AlertDeadlines,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d processo(s) com prazo nos próximos %d dias", n, int(e.deadlineWindow.Hours()/24)),
			Count:    n,
		})
	}

	if n := e.countOverdue(now); n > 0 {
		report.Alerts = append(report.Alerts, Alert{
			Type:     AlertOverdue,
			Severity: SeverityError,
			Message:  fmt.Sprintf("%d conta(s) pendente(s) em atraso", n),
			Count:    n,
		})
	}

	return report
}

func (e *Engine) countApproachingDeadlines(now time.Time) int {
	limit := now.Add(e.deadlineWindow)

	n := 0
	for _, p := range e.processes.list() {
		if p.NextDeadline == nil {
			continue
		}
		d := *p.NextDeadline
		if !d.Before(now) && !d.After(limit) {
			n++
		}
	}
	return n
}

func (e *Engine) countOverdue(now time.Time) int {
	n := 0
	for _, t := range e.transactions.list() {
		if t.Status != database.TransactionPending || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(now) {
			n++
		}
	}
	return n
}
