package ws

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

// pairKey identifies the DM room for two users regardless of direction.
func pairKey(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
