// Package credentials generates the two-part anonymous credential handed to
// a submitter: an unguessable reference code and a memorable passphrase.
// Generation is pure; persistence and uniqueness are the caller's job.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	referenceCodeLength  = 8
	referenceCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passphraseWordCount  = 3
)

var passphraseWords = []string{
	"apple", "brave", "chair", "dance", "eagle", "flame", "grace", "heart",
	"ivory", "jolly", "kraft", "lemon", "music", "novel", "ocean", "peace",
	"queen", "river", "smile", "tower", "unity", "voice", "water", "youth",
}

// GenerateReferenceCode returns an 8-character code drawn uniformly from
// [A-Z0-9] using crypto/rand. The reports table enforces uniqueness; on a
// collision the caller retries with a fresh code.
func GenerateReferenceCode() (string, error) {
	var b strings.Builder
	b.Grow(referenceCodeLength)
	max := big.NewInt(int64(len(referenceCodeCharset)))
	for i := 0; i < referenceCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b.WriteByte(referenceCodeCharset[n.Int64()])
	}
	return b.String(), nil
}

// GeneratePassphrase returns three distinct words joined by hyphens and a
// zero-padded number in [001,999], e.g. "ocean-brave-lemon-042".
func GeneratePassphrase() (string, error) {
	picked := make([]string, 0, passphraseWordCount)
	used := make(map[int]bool, passphraseWordCount)
	for len(picked) < passphraseWordCount {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passphraseWords))))
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		idx := int(n.Int64())
		if used[idx] {
			continue
		}
		used[idx] = true
		picked = append(picked, passphraseWords[idx])
	}

	n, err := rand.Int(rand.Reader, big.NewInt(999))
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	number := n.Int64() + 1 // [1,999]

	return fmt.Sprintf("%s-%03d", strings.Join(picked, "-"), number), nil
}
