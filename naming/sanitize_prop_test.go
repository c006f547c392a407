package naming

import (
	"regexp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// sanitizedPattern is the shape every sanitized string must have.
var sanitizedPattern = regexp.MustCompile(`^[a-z0-9-]*$`)

func TestSanitizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("sanitize is total", prop.ForAll(
		func(s string) bool {
			return sanitizedPattern.MatchString(Sanitize(s))
		},
		gen.AnyString(),
	))

	properties.Property("sanitize is idempotent", prop.ForAll(
		func(s string) bool {
			once := Sanitize(s)
			return Sanitize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("sanitize never produces leading or trailing hyphens", prop.ForAll(
		func(s string) bool {
			out := Sanitize(s)
			if out == "" {
				return true
			}
			return out[0] != '-' && out[len(out)-1] != '-'
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
