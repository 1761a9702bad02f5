// Package fee computes the settlement split between the treasury and the campaign creator.
package fee

import (
	"github.com/mxpv/kickstarter/pkg/model"
)

// Split returns the creator payout and the treasury fee for the given balance.
// The fee is floor(balance / 20), so payout+fee always equals balance.
func Split(balance uint64) (payout uint64, fee uint64) {
	fee = balance / model.FeeDivisor
	payout = balance - fee
	return
}
