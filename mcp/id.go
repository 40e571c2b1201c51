package mcp

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// newRequestID produces a unique request identifier with an embedded
// timestamp. Format: req_{YYYYMMDDTHHmmss}_{16 hex chars}. Identifiers are
// never reused; the 8 random bytes make collisions within one second
// vanishingly unlikely.
func newRequestID() string {
	ts := time.Now().UTC().Format("20060102T150405")
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "req_" + ts + "_" + hex.EncodeToString(b)
}
