// Package storage manages the on-disk artifact layout: content-addressed
// audio/thumbnail files under per-subscription directories, atomic file
// replacement, and the data-directory lock.
package storage

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint maps a video title to the stable identifier used as the
// artifact filename stem. The digest is computed over the title exactly as
// observed, with no trimming or case folding: feed synthesis re-derives
// fingerprints from candidate titles, and any normalization difference would
// silently break the match.
//
// MD5 is kept deliberately for filename compatibility with existing artifact
// directories. Two distinct videos with an identical title collide; that
// ambiguity is accepted.
func Fingerprint(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}
