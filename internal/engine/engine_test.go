package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/lexdashapp/lexdash/internal/database"
	"github.com/lexdashapp/lexdash/pkg/logger"
)

func testEngine(t *testing.T, opts Options) *Engine {
	t.Helper()

	log, err := logger.NewLogger("error", "json")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	return New(log, opts)
}

func TestAddClientReferralCascade(t *testing.T) {
	eng := testEngine(t, Options{})

	partner, err := eng.AddPartner(PartnerRequest{Name: "Dra. Helena", Type: database.PartnerReferrer})
	if err != nil {
		t.Fatalf("AddPartner failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err := eng.AddClient(ClientRequest{
			Name:       "Cliente Indicado",
			Status:     database.ClientActive,
			ReferredBy: partner.ID,
		})
		if err != nil {
			t.Fatalf("AddClient failed: %v", err)
		}
	}

	// A client without a referrer must not touch any counter
	if _, err := eng.AddClient(ClientRequest{Name: "Cliente Direto"}); err != nil {
		t.Fatalf("AddClient failed: %v", err)
	}

	partners := eng.Partners()
	if len(partners) != 1 {
		t.Fatalf("Expected 1 partner, got %d", len(partners))
	}
	if partners[0].ReferredClients != 3 {
		t.Errorf("Expected 3 referred clients, got %d", partners[0].ReferredClients)
	}
}

func TestAddClientDanglingReferrer(t *testing.T) {
	eng := testEngine(t, Options{})

	client, err := eng.AddClient(ClientRequest{
		Name:       "Cliente",
		ReferredBy: "no-such-partner",
	})
	if err != nil {
		t.Fatalf("Client creation should survive a dangling referrer: %v", err)
	}
	if client.ID == "" {
		t.Error("Created client should have an identifier")
	}
	if len(eng.Clients()) != 1 {
		t.Errorf("Expected 1 client, got %d", len(eng.Clients()))
	}
}

func TestAddClientDanglingReferrerStrict(t *testing.T) {
	eng := testEngine(t, Options{StrictReferences: true})

	_, err := eng.AddClient(ClientRequest{
		Name:       "Cliente",
		ReferredBy: "no-such-partner",
	})
	if !errors.Is(err, ErrPartnerNotFound) {
		t.Fatalf("Expected ErrPartnerNotFound, got %v", err)
	}
	if len(eng.Clients()) != 0 {
		t.Error("Strict mode must reject the primary insert as well")
	}
}

func TestAddProcessUpfrontCascade(t *testing.T) {
	eng := testEngine(t, Options{})

	client, _ := eng.AddClient(ClientRequest{Name: "Cliente", Status: database.ClientActive})

	process, err := eng.AddProcess(ProcessRequest{
		CaseNumber:    "0001234-56.2025.8.26.0100",
		ClientID:      client.ID,
		Area:          "Cível",
		UpfrontAmount: 1000,
	})
	if err != nil {
		t.Fatalf("AddProcess failed: %v", err)
	}

	transactions := eng.Transactions()
	if len(transactions) != 1 {
		t.Fatalf("Expected exactly 1 companion transaction, got %d", len(transactions))
	}

	txn := transactions[0]
	if txn.Amount != 1000 {
		t.Errorf("Expected amount 1000, got %v", txn.Amount)
	}
	if txn.Kind != database.KindRevenue {
		t.Errorf("Expected Revenue, got %s", txn.Kind)
	}
	if txn.Status != database.TransactionPending {
		t.Errorf("Expected Pending, got %s", txn.Status)
	}
	if txn.Category != CategoryFees {
		t.Errorf("Expected category %q, got %q", CategoryFees, txn.Category)
	}
	if txn.CreatedBy != SystemCreator {
		t.Errorf("Expected creator %q, got %q", SystemCreator, txn.CreatedBy)
	}
	if txn.ProcessID != process.ID || txn.ClientID != client.ID {
		t.Error("Companion transaction must reference the new process and its client")
	}
}

func TestAddProcessWithoutUpfront(t *testing.T) {
	eng := testEngine(t, Options{})

	client, _ := eng.AddClient(ClientRequest{Name: "Cliente"})
	_, err := eng.AddProcess(ProcessRequest{
		CaseNumber: "0002222-00.2025.8.26.0100",
		ClientID:   client.ID,
	})
	if err != nil {
		t.Fatalf("AddProcess failed: %v", err)
	}

	if len(eng.Transactions()) != 0 {
		t.Errorf("No transaction expected without an upfront amount, got %d", len(eng.Transactions()))
	}
}

func TestAddTransactionPartnerCascade(t *testing.T) {
	eng := testEngine(t, Options{})

	partner, _ := eng.AddPartner(PartnerRequest{Name: "Parceiro", Type: database.PartnerReferrer})

	_, err := eng.AddTransaction(TransactionRequest{
		Kind:      database.KindRevenue,
		Amount:    500,
		PartnerID: partner.ID,
	})
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	// Expenses must not move the partner total, even with a partner set
	_, err = eng.AddTransaction(TransactionRequest{
		Kind:      database.KindExpense,
		Amount:    200,
		PartnerID: partner.ID,
	})
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	got := eng.Partners()[0].TotalValueGenerated
	if got != 500 {
		t.Errorf("Expected partner total 500, got %v", got)
	}
}

func TestAddTransactionStrictReferences(t *testing.T) {
	eng := testEngine(t, Options{StrictReferences: true})

	tests := []struct {
		name string
		req  TransactionRequest
		want error
	}{
		{
			name: "Unknown client",
			req:  TransactionRequest{Kind: database.KindRevenue, Amount: 10, ClientID: "missing"},
			want: ErrClientNotFound,
		},
		{
			name: "Unknown process",
			req:  TransactionRequest{Kind: database.KindRevenue, Amount: 10, ProcessID: "missing"},
			want: ErrProcessNotFound,
		},
		{
			name: "Unknown partner",
			req:  TransactionRequest{Kind: database.KindRevenue, Amount: 10, PartnerID: "missing"},
			want: ErrPartnerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.AddTransaction(tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if len(eng.Transactions()) != 0 {
		t.Error("Strict mode must not insert transactions with dangling references")
	}
}

func TestMarkTransactionPaid(t *testing.T) {
	eng := testEngine(t, Options{})

	txn, _ := eng.AddTransaction(TransactionRequest{
		Kind:   database.KindRevenue,
		Amount: 300,
	})

	paid, err := eng.MarkTransactionPaid(txn.ID)
	if err != nil {
		t.Fatalf("MarkTransactionPaid failed: %v", err)
	}
	if paid.Status != database.TransactionPaid {
		t.Errorf("Expected Paid, got %s", paid.Status)
	}

	if _, err := eng.MarkTransactionPaid(txn.ID); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("Expected ErrAlreadyPaid, got %v", err)
	}

	if _, err := eng.MarkTransactionPaid("missing"); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestUpdatePartnerKeepsCascadeCounters(t *testing.T) {
	eng := testEngine(t, Options{})

	partner, _ := eng.AddPartner(PartnerRequest{Name: "Parceiro"})
	eng.AddClient(ClientRequest{Name: "Cliente", ReferredBy: partner.ID})
	eng.AddTransaction(TransactionRequest{Kind: database.KindRevenue, Amount: 800, PartnerID: partner.ID})

	updated, err := eng.UpdatePartner(partner.ID, PartnerRequest{Name: "Parceiro Renomeado", Type: database.PartnerAds})
	if err != nil {
		t.Fatalf("UpdatePartner failed: %v", err)
	}

	if updated.Name != "Parceiro Renomeado" {
		t.Errorf("Expected renamed partner, got %q", updated.Name)
	}
	if updated.ReferredClients != 1 {
		t.Errorf("Referred-clients counter must survive edits, got %d", updated.ReferredClients)
	}
	if updated.TotalValueGenerated != 800 {
		t.Errorf("Generated total must survive edits, got %v", updated.TotalValueGenerated)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	eng := testEngine(t, Options{})

	names := []string{"Primeiro", "Segundo", "Terceiro"}
	for _, name := range names {
		if _, err := eng.AddClient(ClientRequest{Name: name}); err != nil {
			t.Fatalf("AddClient failed: %v", err)
		}
	}

	clients := eng.Clients()
	for i, name := range names {
		if clients[i].Name != name {
			t.Errorf("Position %d: expected %q, got %q", i, name, clients[i].Name)
		}
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	eng := testEngine(t, Options{})

	partner, _ := eng.AddPartner(PartnerRequest{Name: "Parceiro"})
	client, _ := eng.AddClient(ClientRequest{Name: "Cliente", ReferredBy: partner.ID})
	eng.AddProcess(ProcessRequest{CaseNumber: "123", ClientID: client.ID, UpfrontAmount: 100})

	snap := eng.Snapshot()

	restored := testEngine(t, Options{})
	restored.Restore(snap)

	if len(restored.Clients()) != 1 || len(restored.Processes()) != 1 ||
		len(restored.Transactions()) != 1 || len(restored.Partners()) != 1 {
		t.Fatal("Restored engine should hold the full snapshot")
	}
	if restored.Partners()[0].ReferredClients != 1 {
		t.Error("Cascade counters must travel with the snapshot")
	}
}

func TestRevisionChangesOnMutation(t *testing.T) {
	eng := testEngine(t, Options{})

	before := eng.Revision()
	eng.Metrics()
	eng.GenerateReport(time.Now().AddDate(0, -1, 0), time.Now())
	if eng.Revision() != before {
		t.Error("Derived reads must not change the revision")
	}

	eng.AddClient(ClientRequest{Name: "Cliente"})
	if eng.Revision() == before {
		t.Error("Mutations must change the revision")
	}
}
