package utils

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// GenerateTicketCode creates a human friendly ticket code.
// Format: TCK-YYYYMMDD-HHMMSS-XXXX
func GenerateTicketCode(now time.Time) string {
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.IntN(10000))

	return fmt.Sprintf("TCK-%s-%s-%s", datePart, timePart, randomPart)
}

// GenerateTransactionRef creates a payment reference when the client sends none.
func GenerateTransactionRef() string {
	return "PAY-" + uuid.NewString()[:8]
}
