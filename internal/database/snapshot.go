package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Snapshot is the full dashboard state as stored on disk. Seq columns keep
// insertion order stable across a save/load cycle.
type Snapshot struct {
	Clients      []Client
	Processes    []Process
	Transactions []Transaction
	Partners     []Partner
}

// SaveSnapshot replaces the persisted state with the given one. The whole
// replacement runs inside a single transaction.
func SaveSnapshot(db *gorm.DB, snap *Snapshot) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&Client{}, &Process{}, &Transaction{}, &Partner{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear table: %w", err)
			}
		}

		for i := range snap.Clients {
			snap.Clients[i].Seq = int64(i)
		}
		for i := range snap.Processes {
			snap.Processes[i].Seq = int64(i)
		}
		for i := range snap.Transactions {
			snap.Transactions[i].Seq = int64(i)
		}
		for i := range snap.Partners {
			snap.Partners[i].Seq = int64(i)
		}

		if len(snap.Clients) > 0 {
			if err := tx.Create(snap.Clients).Error; err != nil {
				return fmt.Errorf("failed to save clients: %w", err)
			}
		}
		if len(snap.Processes) > 0 {
			if err := tx.Create(snap.Processes).Error; err != nil {
				return fmt.Errorf("failed to save processes: %w", err)
			}
		}
		if len(snap.Transactions) > 0 {
			if err := tx.Create(snap.Transactions).Error; err != nil {
				return fmt.Errorf("failed to save transactions: %w", err)
			}
		}
		if len(snap.Partners) > 0 {
			if err := tx.Create(snap.Partners).Error; err != nil {
				return fmt.Errorf("failed to save partners: %w", err)
			}
		}

		return nil
	})
}

// LoadSnapshot reads the persisted state back in insertion order
func LoadSnapshot(db *gorm.DB) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := db.Order("seq").Find(&snap.Clients).Error; err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	if err := db.Order("seq").Find(&snap.Processes).Error; err != nil {
		return nil, fmt.Errorf("failed to load processes: %w", err)
	}
	if err := db.Order("seq").Find(&snap.Transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if err := db.Order("seq").Find(&snap.Partners).Error; err != nil {
		return nil, fmt.Errorf("failed to load partners: %w", err)
	}

	return snap, nil
}
