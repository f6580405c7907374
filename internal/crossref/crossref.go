// Package crossref checks VCF identifiers against externally supplied
// identifier sets: chromosome ids against an assembly's contigs, and
// genotype sample ids against a sample-attribute mapping.
package crossref

import (
	"fmt"
	"strings"
)

// Mode controls how unresolved identifiers are handled.
type Mode int

const (
	// Lenient reports unresolved identifiers but lets the import
	// proceed. This mirrors the historical behavior of the pipeline.
	Lenient Mode = iota

	// Strict fails the import when any identifier is unresolved.
	Strict
)

// Kind names the identifier set being checked, for error messages and
// log output.
type Kind string

const (
	KindAssembly Kind = "assembly contig"
	KindSample   Kind = "sample attribute"
)

// MismatchError reports identifiers that could not be resolved against
// the reference set. It is returned only in Strict mode.
type MismatchError struct {
	Kind       Kind
	Unresolved []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%d vcf id(s) not present in %s set: %s",
		len(e.Unresolved), e.Kind, strings.Join(e.Unresolved, " "))
}

// Result holds the outcome of a single cross-reference check.
type Result struct {
	Kind       Kind
	Unresolved []string // ids as they appeared in the input, order preserved
}

// Resolved reports whether every identifier was found.
func (r *Result) Resolved() bool {
	return len(r.Unresolved) == 0
}

// Check verifies that every id in ids appears in known. The comparison
// is case-insensitive and whitespace-trimmed on both sides. known may
// be a superset of ids; the reverse is what gets flagged. Unresolved
// ids are reported in their original spelling, input order preserved,
// so warnings point at what the file actually says.
func Check(kind Kind, ids, known []string) *Result {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[normalize(k)] = struct{}{}
	}

	result := &Result{Kind: kind}
	for _, id := range ids {
		if _, ok := knownSet[normalize(id)]; !ok {
			result.Unresolved = append(result.Unresolved, id)
		}
	}

	return result
}

// Enforce converts a result into an error according to the mode.
// In Lenient mode it always returns nil; the caller is expected to log
// the unresolved ids.
func Enforce(r *Result, mode Mode) error {
	if mode == Strict && !r.Resolved() {
		return &MismatchError{Kind: r.Kind, Unresolved: r.Unresolved}
	}
	return nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
