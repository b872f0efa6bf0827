package store

import (
	"context"
	"sync"

	id "caseworks/pkg/domain"
)

// InMemoryDirectory is a test double: a fixed set of known beneficiaries.
type InMemoryDirectory struct {
	mu            sync.RWMutex
	beneficiaries map[id.BeneficiaryID]struct{}
}

func NewInMemory() *InMemoryDirectory {
	return &InMemoryDirectory{beneficiaries: make(map[id.BeneficiaryID]struct{})}
}

// AddBeneficiary registers a beneficiary as existing.
func (d *InMemoryDirectory) AddBeneficiary(beneficiaryID id.BeneficiaryID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beneficiaries[beneficiaryID] = struct{}{}
}

func (d *InMemoryDirectory) BeneficiaryExists(_ context.Context, beneficiaryID id.BeneficiaryID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.beneficiaries[beneficiaryID]
	return ok, nil
}
