// Package codegen derives record codes from display names.
//
// A code is the display name trimmed, uppercased, with each whitespace run
// turned into a single underscore and every character outside A-Z, 0-9 and
// underscore removed. When that base code is taken, a numeric suffix is
// appended ("_1", "_2", ...) until a free code is found.
package codegen

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/slate/pkg/core"
)

// Normalize converts a display name into a base code.
// An empty or fully stripped name yields "".
func Normalize(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(upper))
	inSpace := false
	for _, r := range upper {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if isCodeRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCodeRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// DeriveUniqueCode returns the first code built from name that taken
// reports as free. It returns "" when name normalizes to nothing; callers
// must treat that as "not yet derivable".
func DeriveUniqueCode(name string, taken func(code string) bool) string {
	base := Normalize(name)
	if base == "" {
		return ""
	}
	if taken == nil || !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// CodeSet collects the codes present in a snapshot.
func CodeSet[R core.Record](snapshot []R) map[string]struct{} {
	set := make(map[string]struct{}, len(snapshot))
	for _, rec := range snapshot {
		set[rec.Key()] = struct{}{}
	}
	return set
}

// Derive is DeriveUniqueCode against the codes of snapshot.
func Derive[R core.Record](name string, snapshot []R) string {
	set := CodeSet(snapshot)
	return DeriveUniqueCode(name, func(code string) bool {
		_, ok := set[code]
		return ok
	})
}
