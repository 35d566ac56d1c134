package viagogo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// TicketID fingerprints one observed offer. position is the offer's 1-based
// index within the container batch it was read from, so the same offer
// rendered at another position gets another id.
func TicketID(eventLink, rawName, price string, quantity, position int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%d", eventLink, rawName, price, quantity, position)))
	return hex.EncodeToString(sum[:])
}

// FormatTicketName breaks the flattened listing text onto labelled lines so
// "Section 118 Row 12" becomes "Section\n118 Row\n12".
func FormatTicketName(raw string) string {
	name := strings.ReplaceAll(raw, "Section ", "Section\n")
	name = strings.ReplaceAll(name, "Row ", "Row\n")
	name = strings.ReplaceAll(name, "ticket", "ticket\n")
	return strings.TrimSpace(name)
}
