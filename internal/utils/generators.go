package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateReceiptRef returns a human-readable receipt reference for printed
// tickets, e.g. rcpt_1735600000_b1946ac9.
func GenerateReceiptRef() string {
	return fmt.Sprintf("rcpt_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}

// GenerateRefundRef returns a reference stamped on refund log lines.
func GenerateRefundRef() string {
	return fmt.Sprintf("rfnd_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}
