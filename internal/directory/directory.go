// Package directory resolves references owned by the surrounding platform.
//
// Beneficiary records (and the user accounts behind the auth tokens) are
// created and edited elsewhere; this core only needs to know whether a
// referenced beneficiary exists before allocating a bed or starting a timer.
package directory

import (
	"context"

	id "caseworks/pkg/domain"
)

// Directory answers existence lookups against the platform's registry.
type Directory interface {
	BeneficiaryExists(ctx context.Context, beneficiaryID id.BeneficiaryID) (bool, error)
}
