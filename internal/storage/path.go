package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename keeps the base name of a path and replaces every
// character outside the alphanumeric/dot/dash/underscore set with an
// underscore, so object keys stay readable without a naming authority.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return unsafePathChars.ReplaceAllString(name, "_")
}

// BuildPathname namespaces an object under its owner with a millisecond
// timestamp token: {userID}/{millis}-{sanitized}. The timestamp keeps keys
// collision-free per user without coordination. The owner segment passes
// through the same character filter as the filename, so the only `/` in
// the key is the fixed separator.
func BuildPathname(userID, filename string, now time.Time) string {
	owner := unsafePathChars.ReplaceAllString(userID, "_")
	return fmt.Sprintf("%s/%d-%s", owner, now.UnixMilli(), SanitizeFilename(filename))
}
