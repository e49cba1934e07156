package engine

import (
	"time"

	"github.com/lexdashapp/lexdash/internal/database"
)

type ClientMetrics struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Prospects    int            `json:"prospects"`
	NewThisMonth int            `json:"new_this_month"`
	ByOrigin     map[string]int `json:"by_origin"`
	LTV          float64        `json:"ltv"`
}

type ProcessMetrics struct {
	Total       int            `json:"total"`
	InProgress  int            `json:"in_progress"`
	Finished    int            `json:"finished"`
	ByArea      map[string]int `json:"by_area"`
	TotalValue  float64        `json:"total_value"`
	SuccessRate float64        `json:"success_rate"`
}

type FinancialMetrics struct {
	RevenueTotal    float64 `json:"revenue_total"`
	ExpenseTotal    float64 `json:"expense_total"`
	Balance         float64 `json:"balance"`
	Receivables     float64 `json:"receivables"`
	Payables        float64 `json:"payables"`
	ProfitMargin    float64 `json:"profit_margin"`
	FixedFeeRevenue float64 `json:"fixed_fee_revenue"`
}

type PartnerMetrics struct {
	Total               int               `json:"total"`
	Active              int               `json:"active"`
	TotalValueGenerated float64           `json:"total_value_generated"`
	TopPartner          *database.Partner `json:"top_partner"`
	TotalReferrals      int               `json:"total_referrals"`
}

// Metrics is the consolidated dashboard snapshot. The financial and partner
// keys keep the names the dashboard UI was built against.
type Metrics struct {
	Clients   ClientMetrics    `json:"clients"`
	Processes ProcessMetrics   `json:"processes"`
	Financial FinancialMetrics `json:"financeiro"`
	Partners  PartnerMetrics   `json:"parceiros"`
}

// Metrics folds the current state of the four collections into one
// consolidated snapshot. Nothing is maintained incrementally except the two
// cascade-owned partner counters, which are read straight off the records.
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	return ComputeMetrics(e.clients.list(), e.processes.list(), e.transactions.list(), e.partners.list(), e.now())
}

// ComputeMetrics is the pure fold behind Engine.Metrics. Every ratio guards
// its denominator and yields 0 instead of NaN or Inf.
func ComputeMetrics(clients []database.Client, processes []database.Process, transactions []database.Transaction, partners []database.Partner, now time.Time) Metrics {
	financial := computeFinancial(transactions)

	return Metrics{
		Clients:   computeClients(clients, financial.RevenueTotal, now),
		Processes: computeProcesses(processes),
		Financial: financial,
		Partners:  computePartners(partners),
	}
}

func computeClients(clients []database.Client, paidRevenue float64, now time.Time) ClientMetrics {
	m := ClientMetrics{
		Total:    len(clients),
		ByOrigin: make(map[string]int),
	}

	for _, c := range clients {
		switch c.Status {
		case database.ClientActive:
			m.Active++
		case database.ClientProspect:
			m.Prospects++
		}
		if c.RegisteredAt.Year() == now.Year() && c.RegisteredAt.Month() == now.Month() {
			m.NewThisMonth++
		}
		if c.Origin != "" {
			m.ByOrigin[c.Origin]++
		}
	}

	if m.Active > 0 {
		m.LTV = paidRevenue / float64(m.Active)
	}

	return m
}

func computeProcesses(processes []database.Process) ProcessMetrics {
	m := ProcessMetrics{
		Total:  len(processes),
		ByArea: make(map[string]int),
	}

	for _, p := range processes {
		switch p.Status {
		case database.ProcessInProgress:
			m.InProgress++
		case database.ProcessFinished:
			m.Finished++
		}
		if p.Area != "" {
			m.ByArea[p.Area]++
		}
		m.TotalValue += p.CaseValue
	}

	if m.Total > 0 {
		m.SuccessRate = float64(m.Finished) / float64(m.Total) * 100
	}

	return m
}

func computeFinancial(transactions []database.Transaction) FinancialMetrics {
	var m FinancialMetrics

	for _, t := range transactions {
		switch {
		case t.Status == database.TransactionPaid && t.Kind == database.KindRevenue:
			m.RevenueTotal += t.Amount
		case t.Status == database.TransactionPaid && t.Kind == database.KindExpense:
			m.ExpenseTotal += t.Amount
		case t.Status == database.TransactionPending && t.Kind == database.KindRevenue:
			m.Receivables += t.Amount
		case t.Status == database.TransactionPending && t.Kind == database.KindExpense:
			m.Payables += t.Amount
		}
		if t.Status == database.TransactionPaid && t.Category == CategoryFees {
			m.FixedFeeRevenue += t.Amount
		}
	}

	m.Balance = m.RevenueTotal - m.ExpenseTotal
	if m.RevenueTotal > 0 {
		m.ProfitMargin = (m.RevenueTotal - m.ExpenseTotal) / m.RevenueTotal * 100
	}

	return m
}

func computePartners(partners []database.Partner) PartnerMetrics {
	var m PartnerMetrics
	m.Total = len(partners)

	for i, p := range partners {
		if p.Active {
			m.Active++
		}
		m.TotalValueGenerated += p.TotalValueGenerated
		m.TotalReferrals += p.ReferredClients

		if m.TopPartner == nil || p.LifetimeValue > m.TopPartner.LifetimeValue {
			top := partners[i]
			m.TopPartner = &top
		}
	}

	return m
}
