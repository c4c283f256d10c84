// internal/domain/invitation/token.go
package invitation

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes is the amount of raw entropy behind every invitation token.
// 32 bytes = 256 bits; the token is the sole credential in an invitation
// link, so this floor must not be lowered.
const tokenBytes = 32

// NewToken returns a fresh invitation token: 256 bits from crypto/rand,
// base64url-encoded without padding so it can sit unescaped in a query
// parameter. A failure to source entropy panics — this is a security
// primitive, not a recoverable path.
func NewToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("invitation: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
