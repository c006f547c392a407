// Package token generates the short random lowercase correlation id that
// disambiguates parallel build-mode invocations against the same project and
// prefix. The id is probabilistically unique only; callers needing a
// guarantee must bring their own scheme.
package token

import (
	"crypto/rand"
	"fmt"
	"regexp"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
)

const (
	// MinLength and MaxLength bound the supported id lengths.
	MinLength = 6
	MaxLength = 10

	// DefaultLength is the length used when the caller has no preference.
	DefaultLength = 8

	alphabet = "abcdefghijklmnopqrstuvwxyz"
)

var tokenPattern = regexp.MustCompile(`^[a-z]+$`)

// Generate returns a random string of exactly length lowercase ASCII
// letters. Lengths outside [MinLength, MaxLength] are rejected, never
// clamped. Samples are drawn uniformly with rejection so no letter is
// favored.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", errors.NewWithContext(errors.CodeInvalidLength,
			fmt.Sprintf("correlation id length %d is outside [%d, %d]",
				length, MinLength, MaxLength),
			map[string]any{"min": MinLength, "max": MaxLength})
	}

	out := make([]byte, length)
	for i := range out {
		idx, err := uniformIndex(len(alphabet))
		if err != nil {
			return "", errors.Wrap(err, errors.CodeInternal,
				"correlation id randomness unavailable")
		}
		out[i] = alphabet[idx]
	}

	id := string(out)
	if len(id) != length || !tokenPattern.MatchString(id) {
		return "", errors.Newf(errors.CodeInternal,
			"generated correlation id %q failed self-check", id)
	}
	return id, nil
}

// Default generates an id of DefaultLength.
func Default() (string, error) {
	return Generate(DefaultLength)
}

// uniformIndex draws a uniform index in [0, n) via rejection sampling over
// single random bytes. n must be at most 256.
func uniformIndex(n int) (int, error) {
	limit := 256 - (256 % n)
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, err
		}
		if int(b[0]) < limit {
			return int(b[0]) % n, nil
		}
	}
}
