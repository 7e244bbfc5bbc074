// Package credential mints the human-facing certificate identifier.
package credential

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix of every credential id issued by this system.
const Prefix = "CERT-"

// NewID returns an identifier like CERT-20260830T101530-4F9C2A81D3: the
// fixed prefix, a fixed-width UTC timestamp giving lexical sortability by
// creation time, and 40 bits of randomness. Uniqueness is best effort here;
// the store enforces it with a unique constraint on the column.
func NewID() string {
	ts := time.Now().UTC().Format("20060102T150405")
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("%s%s-%s", Prefix, ts, random)
}
