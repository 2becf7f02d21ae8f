// Package dedup fingerprints accepted articles and tracks repeats within one session.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
)

// PrefixRunes is how much of the content takes part in the fingerprint.
const PrefixRunes = 500

// Fingerprint returns a 32-character hex digest of title plus the first PrefixRunes
// characters of content.
func Fingerprint(title, content string) string {
	h := md5.Sum([]byte(title + prefix(content, PrefixRunes)))
	return hex.EncodeToString(h[:])
}

func prefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Set is the session-scoped seen set. The zero value is ready to use; it is not safe for
// concurrent use.
type Set struct {
	seen map[string]struct{}
}

// SeenBefore reports whether hash was already added.
func (s *Set) SeenBefore(hash string) bool {
	_, ok := s.seen[hash]
	return ok
}

// Add records hash.
func (s *Set) Add(hash string) {
	if s.seen == nil {
		s.seen = map[string]struct{}{}
	}
	s.seen[hash] = struct{}{}
}

// Len returns the number of distinct fingerprints recorded.
func (s *Set) Len() int {
	return len(s.seen)
}
