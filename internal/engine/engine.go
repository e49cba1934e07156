package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexdashapp/lexdash/internal/database"
	"github.com/lexdashapp/lexdash/pkg/logger"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrProcessNotFound     = errors.New("process not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPartnerNotFound     = errors.New("partner not found")
	ErrAlreadyPaid         = errors.New("transaction already paid")
)

// Category and creator attribution used by the upfront-fee cascade. These
// match what the dashboard UI displays and filters on.
const (
	CategoryFees  = "Honorários"
	SystemCreator = "Sistema"
)

// Options tune engine behavior
type Options struct {
	// StrictReferences rejects a creation whose reference does not resolve
	// instead of skipping the cascade with a warning
	StrictReferences bool

	// DeadlineWindow is how far ahead the deadline alert scan looks
	DeadlineWindow time.Duration

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Engine owns the four entity collections and every operation over them:
// creations with their cross-entity cascades, status transitions, the
// consolidated metrics fold and the report generator. All operations are
// serialized behind one mutex, so each mutation runs to completion before
// the next one starts, including both writes of a dual-write cascade.
type Engine struct {
	mu           sync.Mutex
	clients      *store[database.Client]
	processes    *store[database.Process]
	transactions *store[database.Transaction]
	partners     *store[database.Partner]

	strict         bool
	deadlineWindow time.Duration
	now            func() time.Time
	logger         *logger.Logger

	// rev increments on every mutation; consumers use it to tell whether
	// a derived read is still current
	rev uint64
}

func New(log *logger.Logger, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DeadlineWindow == 0 {
		opts.DeadlineWindow = 7 * 24 * time.Hour
	}

	return &Engine{
		clients:        newStore[database.Client](),
		processes:      newStore[database.Process](),
		transactions:   newStore[database.Transaction](),
		partners:       newStore[database.Partner](),
		strict:         opts.StrictReferences,
		deadlineWindow: opts.DeadlineWindow,
		now:            opts.Now,
		logger:         log,
	}
}

// AddClient inserts a new client. When the payload names a referring
// partner, that partner's referred-clients counter goes up by one.
func (e *Engine) AddClient(req ClientRequest) (*database.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var referrer *database.Partner
	if req.ReferredBy != "" {
		p, ok := e.partners.get(req.ReferredBy)
		if !ok {
			if e.strict {
				return nil, fmt.Errorf("referring partner %q: %w", req.ReferredBy, ErrPartnerNotFound)
			}
			// Recoverable inconsistency: the client is still created,
			// only the referral cascade is skipped.
			e.logger.Warn("referring partner not found, skipping referral cascade",
				"partner_id", req.ReferredBy,
				"client_name", req.Name,
			)
		} else {
			referrer = p
		}
	}

	now := e.now()
	client := &database.Client{
		ID:            uuid.New().String(),
		Name:          req.Name,
		PersonType:    defaultString(req.PersonType, database.PersonIndividual),
		TaxDocument:   req.TaxDocument,
		Email:         req.Email,
		Phone:         req.Phone,
		Status:        defaultString(req.Status, database.ClientProspect),
		Origin:        req.Origin,
		ReferredBy:    req.ReferredBy,
		Priority:      defaultString(req.Priority, database.PriorityNormal),
		Tags:          req.Tags,
		RegisteredAt:  now,
		LastContactAt: timeOr(req.LastContactAt, now),
	}
	e.clients.insert(client.ID, client)

	if referrer != nil {
		referrer.ReferredClients++
	}

	e.rev++
	created := *client
	return &created, nil
}

// AddProcess inserts a new legal case. A positive upfront amount also
// creates the matching pending revenue transaction; both writes happen
// under the same lock hold and are atomic with respect to every other
// engine operation.
func (e *Engine) AddProcess(req ProcessRequest) (*database.Process, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.clients.get(req.ClientID); !ok {
		if e.strict {
			return nil, fmt.Errorf("process client %q: %w", req.ClientID, ErrClientNotFound)
		}
		e.logger.Warn("process references unknown client",
			"client_id", req.ClientID,
			"case_number", req.CaseNumber,
		)
	}

	now := e.now()
	process := &database.Process{
		ID:            uuid.New().String(),
		CaseNumber:    req.CaseNumber,
		ClientID:      req.ClientID,
		Area:          req.Area,
		Instance:      req.Instance,
		Venue:         req.Venue,
		Subject:       req.Subject,
		Status:        defaultString(req.Status, database.ProcessInProgress),
		Attorney:      req.Attorney,
		CaseValue:     req.CaseValue,
		FiledAt:       timeOr(req.FiledAt, now),
		NextDeadline:  req.NextDeadline,
		Urgency:       defaultString(req.Urgency, database.PriorityNormal),
		BillingModel:  defaultString(req.BillingModel, database.BillingFixed),
		UpfrontAmount: req.UpfrontAmount,
		FixedAmount:   req.FixedAmount,
	}
	e.processes.insert(process.ID, process)

	if req.UpfrontAmount > 0 {
		upfront := &database.Transaction{
			ID:          uuid.New().String(),
			Kind:        database.KindRevenue,
			Description: fmt.Sprintf("Entrada - Processo %s", process.CaseNumber),
			Amount:      req.UpfrontAmount,
			Date:        now,
			Category:    CategoryFees,
			Status:      database.TransactionPending,
			ClientID:    process.ClientID,
			ProcessID:   process.ID,
			CreatedBy:   SystemCreator,
			CreatedAt:   now,
		}
		e.transactions.insert(upfront.ID, upfront)
	}

	e.rev++
	created := *process
	return &created, nil
}

// AddTransaction inserts a new transaction. A revenue transaction that
// names a partner adds its amount to that partner's generated total.
func (e *Engine) AddTransaction(req TransactionRequest) (*database.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkTransactionRefs(req); err != nil {
		return nil, err
	}

	var beneficiary *database.Partner
	if req.PartnerID != "" && req.Kind == database.KindRevenue {
		if p, ok := e.partners.get(req.PartnerID); ok {
			beneficiary = p
		}
	}

	now := e.now()
	txn := &database.Transaction{
		ID:          uuid.New().String(),
		Kind:        req.Kind,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        timeOr(req.Date, now),
		DueDate:     req.DueDate,
		Category:    req.Category,
		Status:      defaultString(req.Status, database.TransactionPending),
		ClientID:    req.ClientID,
		ProcessID:   req.ProcessID,
		PartnerID:   req.PartnerID,
		CreatedBy:   defaultString(req.CreatedBy, SystemCreator),
		CreatedAt:   now,
	}
	e.transactions.insert(txn.ID, txn)

	if beneficiary != nil {
		beneficiary.TotalValueGenerated += txn.Amount
	}

	e.rev++
	created := *txn
	return &created, nil
}

// AddPartner inserts a new referral partner
func (e *Engine) AddPartner(req PartnerRequest) (*database.Partner, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	partner := &database.Partner{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Type:            defaultString(req.Type, database.PartnerOther),
		Contact:         req.Contact,
		ReferralPercent: req.ReferralPercent,
		FlatFee:         req.FlatFee,
		LifetimeValue:   req.LifetimeValue,
		Active:          active,
		RegisteredAt:    e.now(),
	}
	e.partners.insert(partner.ID, partner)

	e.rev++
	created := *partner
	return &created, nil
}

// MarkTransactionPaid transitions a pending or overdue transaction to Paid
func (e *Engine) MarkTransactionPaid(id string) (*database.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	txn, ok := e.transactions.get(id)
	if !ok {
		return nil, fmt.Errorf("transaction %q: %w", id, ErrTransactionNotFound)
	}
	if txn.Status == database.TransactionPaid {
		return nil, fmt.Errorf("transaction %q: %w", id, ErrAlreadyPaid)
	}

	txn.Status = database.TransactionPaid
	e.rev++
	updated := *txn
	return &updated, nil
}

// UpdateClient replaces the editable fields of an existing client.
// Identifier and registration date are kept; no cascades re-run.
func (e *Engine) UpdateClient(id string, req ClientRequest) (*database.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok := e.clients.get(id)
	if !ok {
		return nil, fmt.Errorf("client %q: %w", id, ErrClientNotFound)
	}

	updated := *existing
	updated.Name = req.Name
	updated.PersonType = defaultString(req.PersonType, existing.PersonType)
	updated.TaxDocument = req.TaxDocument
	updated.Email = req.Email
	updated.Phone = req.Phone
	updated.Status = defaultString(req.Status, existing.Status)
	updated.Origin = req.Origin
	updated.ReferredBy = req.ReferredBy
	updated.Priority = defaultString(req.Priority, existing.Priority)
	updated.Tags = req.Tags
	updated.LastContactAt = timeOr(req.LastContactAt, existing.LastContactAt)
	e.clients.replace(id, &updated)

	e.rev++
	out := updated
	return &out, nil
}

// UpdateProcess replaces the editable fields of an existing case. The
// upfront cascade does not re-run on edits.
func (e *Engine) UpdateProcess(id string, req ProcessRequest) (*database.Process, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok := e.processes.get(id)
	if !ok {
		return nil, fmt.Errorf("process %q: %w", id, ErrProcessNotFound)
	}

	updated := *existing
	updated.CaseNumber = req.CaseNumber
	updated.ClientID = req.ClientID
	updated.Area = req.Area
	updated.Instance = req.Instance
	updated.Venue = req.Venue
	updated.Subject = req.Subject
	updated.Status = defaultString(req.Status, existing.Status)
	updated.Attorney = req.Attorney
	updated.CaseValue = req.CaseValue
	updated.FiledAt = timeOr(req.FiledAt, existing.FiledAt)
	updated.NextDeadline = req.NextDeadline
	updated.Urgency = defaultString(req.Urgency, existing.Urgency)
	updated.BillingModel = defaultString(req.BillingModel, existing.BillingModel)
	updated.UpfrontAmount = req.UpfrontAmount
	updated.FixedAmount = req.FixedAmount
	e.processes.replace(id, &updated)

	e.rev++
	out := updated
	return &out, nil
}

// UpdatePartner replaces the editable fields of an existing partner. The
// cascade-owned counters (referred clients, total value generated) are
// preserved as-is.
func (e *Engine) UpdatePartner(id string, req PartnerRequest) (*database.Partner, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok := e.partners.get(id)
	if !ok {
		return nil, fmt.Errorf("partner %q: %w", id, ErrPartnerNotFound)
	}

	updated := *existing
	updated.Name = req.Name
	updated.Type = defaultString(req.Type, existing.Type)
	updated.Contact = req.Contact
	updated.ReferralPercent = req.ReferralPercent
	updated.FlatFee = req.FlatFee
	updated.LifetimeValue = req.LifetimeValue
	if req.Active != nil {
		updated.Active = *req.Active
	}
	e.partners.replace(id, &updated)

	e.rev++
	out := updated
	return &out, nil
}

// Clients returns the client collection in insertion order
func (e *Engine) Clients() []database.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clients.list()
}

// Processes returns the case collection in insertion order
func (e *Engine) Processes() []database.Process {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processes.list()
}

// Transactions returns the transaction collection in insertion order
func (e *Engine) Transactions() []database.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transactions.list()
}

// Partners returns the partner collection in insertion order
func (e *Engine) Partners() []database.Partner {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.partners.list()
}

// Revision identifies the current state; it changes on every mutation
func (e *Engine) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rev
}

// Snapshot captures the full engine state for persistence
func (e *Engine) Snapshot() *database.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return &database.Snapshot{
		Clients:      e.clients.list(),
		Processes:    e.processes.list(),
		Transactions: e.transactions.list(),
		Partners:     e.partners.list(),
	}
}

// Restore replaces the engine state with a previously saved snapshot
func (e *Engine) Restore(snap *database.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clients = newStore[database.Client]()
	for i := range snap.Clients {
		c := snap.Clients[i]
		e.clients.insert(c.ID, &c)
	}
	e.processes = newStore[database.Process]()
	for i := range snap.Processes {
		p := snap.Processes[i]
		e.processes.insert(p.ID, &p)
	}
	e.transactions = newStore[database.Transaction]()
	for i := range snap.Transactions {
		t := snap.Transactions[i]
		e.transactions.insert(t.ID, &t)
	}
	e.partners = newStore[database.Partner]()
	for i := range snap.Partners {
		p := snap.Partners[i]
		e.partners.insert(p.ID, &p)
	}

	e.rev++
}

// checkTransactionRefs validates the optional references on a transaction
// payload. Under strict mode an unresolvable reference rejects the whole
// operation; otherwise it is logged and the insert proceeds.
func (e *Engine) checkTransactionRefs(req TransactionRequest) error {
	if req.ClientID != "" {
		if _, ok := e.clients.get(req.ClientID); !ok {
			if e.strict {
				return fmt.Errorf("transaction client %q: %w", req.ClientID, ErrClientNotFound)
			}
			e.logger.Warn("transaction references unknown client", "client_id", req.ClientID)
		}
	}
	if req.ProcessID != "" {
		if _, ok := e.processes.get(req.ProcessID); !ok {
			if e.strict {
				return fmt.Errorf("transaction process %q: %w", req.ProcessID, ErrProcessNotFound)
			}
			e.logger.Warn("transaction references unknown process", "process_id", req.ProcessID)
		}
	}
	if req.PartnerID != "" {
		if _, ok := e.partners.get(req.PartnerID); !ok {
			if e.strict {
				return fmt.Errorf("transaction partner %q: %w", req.PartnerID, ErrPartnerNotFound)
			}
			e.logger.Warn("transaction references unknown partner", "partner_id", req.PartnerID)
		}
	}
	return nil
}

func defaultString[T ~string](v, fallback T) T {
	if v == "" {
		return fallback
	}
	return v
}

func timeOr(v *time.Time, fallback time.Time) time.Time {
	if v == nil || v.IsZero() {
		return fallback
	}
	return *v
}
