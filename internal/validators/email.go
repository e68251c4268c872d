package validators

import (
	"net/mail"
	"strings"
)

// IsValidAddress checks that the address parses and has a non-empty domain.
// No DNS lookup: notification dispatch must not block on a resolver.
func IsValidAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return false
	}

	return true
}
