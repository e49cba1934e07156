package database

import (
	"time"
)

// Client statuses
type ClientStatus string

const (
	ClientActive    ClientStatus = "Active"
	ClientProspect  ClientStatus = "Prospect"
	ClientInactive  ClientStatus = "Inactive"
	ClientSuspended ClientStatus = "Suspended"
)

// Person types
type PersonType string

const (
	PersonIndividual   PersonType = "individual"
	PersonOrganization PersonType = "organization"
)

// Priority levels shared by clients and processes
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Process statuses
type ProcessStatus string

const (
	ProcessInProgress ProcessStatus = "InProgress"
	ProcessAwaiting   ProcessStatus = "Awaiting"
	ProcessSuspended  ProcessStatus = "Suspended"
	ProcessFinished   ProcessStatus = "Finished"
	ProcessArchived   ProcessStatus = "Archived"
)

// Billing models
type BillingModel string

const (
	BillingFixed       BillingModel = "fixed"
	BillingContingency BillingModel = "contingency"
	BillingPerAct      BillingModel = "per-act"
	BillingMixed       BillingModel = "mixed"
)

// Transaction kinds and statuses
type TransactionKind string

const (
	KindRevenue TransactionKind = "Revenue"
	KindExpense TransactionKind = "Expense"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "Pending"
	TransactionPaid    TransactionStatus = "Paid"
	TransactionOverdue TransactionStatus = "Overdue"
)

// Partner types
type PartnerType string

const (
	PartnerAttorney    PartnerType = "Attorney"
	PartnerReferrer    PartnerType = "Referrer"
	PartnerSocialMedia PartnerType = "SocialMedia"
	PartnerAds         PartnerType = "Ads"
	PartnerOther       PartnerType = "Other"
)

type Client struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	Seq           int64        `json:"-" gorm:"index"`
	Name          string       `json:"name"`
	PersonType    PersonType   `json:"person_type"`
	TaxDocument   string       `json:"tax_document"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Status        ClientStatus `json:"status" gorm:"index"`
	Origin        string       `json:"origin"`
	ReferredBy    string       `json:"referred_by"`
	Priority      Priority     `json:"priority"`
	Tags          []string     `json:"tags" gorm:"serializer:json"`
	RegisteredAt  time.Time    `json:"registered_at"`
	LastContactAt time.Time    `json:"last_contact_at"`
}

type Process struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	Seq           int64         `json:"-" gorm:"index"`
	CaseNumber    string        `json:"case_number" gorm:"index"`
	ClientID      string        `json:"client_id" gorm:"index"`
	Area          string        `json:"area"`
	Instance      string        `json:"instance"`
	Venue         string        `json:"venue"`
	Subject       string        `json:"subject"`
	Status        ProcessStatus `json:"status" gorm:"index"`
	Attorney      string        `json:"attorney"`
	CaseValue     float64       `json:"case_value"`
	FiledAt       time.Time     `json:"filed_at"`
	NextDeadline  *time.Time    `json:"next_deadline"`
	Urgency       Priority      `json:"urgency"`
	BillingModel  BillingModel  `json:"billing_model"`
	UpfrontAmount float64       `json:"upfront_amount"`
	FixedAmount   float64       `json:"fixed_amount"`
}

type Transaction struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	Seq         int64             `json:"-" gorm:"index"`
	Kind        TransactionKind   `json:"kind" gorm:"index"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
	Date        time.Time         `json:"date"`
	DueDate     *time.Time        `json:"due_date"`
	Category    string            `json:"category"`
	Status      TransactionStatus `json:"status" gorm:"index"`
	ClientID    string            `json:"client_id"`
	ProcessID   string            `json:"process_id"`
	PartnerID   string            `json:"partner_id"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
}

type Partner struct {
	ID                  string      `json:"id" gorm:"primaryKey"`
	Seq                 int64       `json:"-" gorm:"index"`
	Name                string      `json:"name"`
	Type                PartnerType `json:"type"`
	Contact             string      `json:"contact"`
	ReferralPercent     *float64    `json:"referral_percent"`
	FlatFee             *float64    `json:"flat_fee"`
	LifetimeValue       float64     `json:"lifetime_value"`
	ReferredClients     int         `json:"referred_clients"`
	TotalValueGenerated float64     `json:"total_value_generated"`
	Active              bool        `json:"active"`
	RegisteredAt        time.Time   `json:"registered_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (Process) TableName() string {
	return "processes"
}

func (Transaction) TableName() string {
	return "transactions"
}

func (Partner) TableName() string {
	return "partners"
}
