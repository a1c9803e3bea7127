// Package session generates identifiers for buddy CLI sessions.
package session

import (
	cryptorand "crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var sessionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\-]`)
var ulidEntropy = ulid.Monotonic(cryptorand.Reader, 0)

// GenerateSessionID returns a unique session ID using the provided base name,
// typically the buddy profile name. The ULID suffix keeps ids sortable by
// creation time.
func GenerateSessionID(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "session"
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	base = sessionNameSanitizer.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "session"
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
	return fmt.Sprintf("%s-%s", base, strings.ToLower(id))
}
