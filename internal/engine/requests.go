package engine

import (
	"time"

	"github.com/lexdashapp/lexdash/internal/database"
)

// Creation payloads are typed and validated at the boundary; the engine
// assumes field presence and shape have already been checked.

type ClientRequest struct {
	Name          string                `json:"name" binding:"required"`
	PersonType    database.PersonType   `json:"person_type" binding:"omitempty,oneof=individual organization"`
	TaxDocument   string                `json:"tax_document"`
	Email         string                `json:"email" binding:"omitempty,email"`
	Phone         string                `json:"phone"`
	Status        database.ClientStatus `json:"status" binding:"omitempty,oneof=Active Prospect Inactive Suspended"`
	Origin        string                `json:"origin"`
	ReferredBy    string                `json:"referred_by"`
	Priority      database.Priority     `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	Tags          []string              `json:"tags"`
	LastContactAt *time.Time            `json:"last_contact_at"`
}

type ProcessRequest struct {
	CaseNumber    string                 `json:"case_number" binding:"required"`
	ClientID      string                 `json:"client_id" binding:"required"`
	Area          string                 `json:"area"`
	Instance      string                 `json:"instance"`
	Venue         string                 `json:"venue"`
	Subject       string                 `json:"subject"`
	Status        database.ProcessStatus `json:"status" binding:"omitempty,oneof=InProgress Awaiting Suspended Finished Archived"`
	Attorney      string                 `json:"attorney"`
	CaseValue     float64                `json:"case_value" binding:"omitempty,gte=0"`
	FiledAt       *time.Time             `json:"filed_at"`
	NextDeadline  *time.Time             `json:"next_deadline"`
	Urgency       database.Priority      `json:"urgency" binding:"omitempty,oneof=low normal high urgent"`
	BillingModel  database.BillingModel  `json:"billing_model" binding:"omitempty,oneof=fixed contingency per-act mixed"`
	UpfrontAmount float64                `json:"upfront_amount" binding:"omitempty,gte=0"`
	FixedAmount   float64                `json:"fixed_amount" binding:"omitempty,gte=0"`
}

type TransactionRequest struct {
	Kind        database.TransactionKind   `json:"kind" binding:"required,oneof=Revenue Expense"`
	Description string                     `json:"description"`
	Amount      float64                    `json:"amount" binding:"gte=0"`
	Date        *time.Time                 `json:"date"`
	DueDate     *time.Time                 `json:"due_date"`
	Category    string                     `json:"category"`
	Status      database.TransactionStatus `json:"status" binding:"omitempty,oneof=Pending Paid Overdue"`
	ClientID    string                     `json:"client_id"`
	ProcessID   string                     `json:"process_id"`
	PartnerID   string                     `json:"partner_id"`
	CreatedBy   string                     `json:"created_by"`
}

type PartnerRequest struct {
	Name            string               `json:"name" binding:"required"`
	Type            database.PartnerType `json:"type" binding:"omitempty,oneof=Attorney Referrer SocialMedia Ads Other"`
	Contact         string               `json:"contact"`
	ReferralPercent *float64             `json:"referral_percent" binding:"omitempty,gte=0,lte=100"`
	FlatFee         *float64             `json:"flat_fee" binding:"omitempty,gte=0"`
	LifetimeValue   float64              `json:"lifetime_value" binding:"omitempty,gte=0"`
	Active          *bool                `json:"active"`
}
