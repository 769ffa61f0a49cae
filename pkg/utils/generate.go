package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateInvoiceReference builds a human-readable invoice reference,
// e.g. FP-2026-173205-0042. Uniqueness is enforced by the invoices
// table, the random tail only avoids collisions within one second.
func GenerateInvoiceReference(prefix string) string {
	now := time.Now()

	return fmt.Sprintf("%s-%d-%s-%04d",
		prefix, now.Year(), now.Format("150405"), rand.Intn(10000))
}
