package ledger

import (
	"fmt"
	"time"
)

const creditLegSuffix = "_CREDIT"

// transferReference derives the shared reference root for a transfer pair.
// Nanosecond granularity keeps rapid transfers from the same wallet unique.
func transferReference(senderWalletID int64, now time.Time) string {
	return fmt.Sprintf("TXN%d%d", now.UnixNano(), senderWalletID)
}

// creditLegReference derives the recipient-side reference from the root so
// both legs of a transfer stay linkable while remaining unique.
func creditLegReference(root string) string {
	return root + creditLegSuffix
}

// withdrawalReference generates the reference for a withdrawal debit.
func withdrawalReference(walletID int64, now time.Time) string {
	return fmt.Sprintf("WTH%d%d", now.UnixNano(), walletID)
}
