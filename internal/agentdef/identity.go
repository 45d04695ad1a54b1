package agentdef

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest base name accepted for an agent.
const MaxNameLength = 80

// ErrInvalidName is wrapped by every base name validation failure.
var ErrInvalidName = errors.New("invalid agent name")

var (
	namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

	// Callers sometimes pass a file name instead of a bare agent name.
	strippedExtPattern = regexp.MustCompile(`(?i)\.(toml|md|markdown|yaml|yml)$`)
)

// Identity is the derived identity of an agent. Only BaseName is stored;
// the agent ID and display name are always recomputed from it.
type Identity struct {
	BaseName string
}

// ParseName trims raw, strips a recognized artifact extension, and validates
// the result as a base name.
func ParseName(raw string) (Identity, error) {
	base := strippedExtPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if err := ValidateBaseName(base); err != nil {
		return Identity{}, err
	}
	return Identity{BaseName: base}, nil
}

// ValidateBaseName checks base against the identifier rule: lowercase
// letters, digits, hyphens and underscores, starting with a letter or digit,
// at most MaxNameLength characters.
func ValidateBaseName(base string) error {
	if base == "" {
		return fmt.Errorf("%w: agent name is empty", ErrInvalidName)
	}
	if len(base) > MaxNameLength {
		return fmt.Errorf("%w: agent name is too long (max %d characters)", ErrInvalidName, MaxNameLength)
	}
	if !namePattern.MatchString(base) {
		return fmt.Errorf("%w %q: use lowercase letters, digits, hyphens, and underscores only (must start with a letter or digit)", ErrInvalidName, base)
	}
	return nil
}

// AgentID returns the canonical machine identifier: the base name with every
// hyphen replaced by an underscore.
func (id Identity) AgentID() string {
	return strings.ReplaceAll(id.BaseName, "-", "_")
}

// DisplayName title-cases each hyphen/underscore-delimited segment of the
// base name and joins them with spaces ("api-analyzer" → "Api Analyzer").
func (id Identity) DisplayName() string {
	parts := strings.FieldsFunc(strings.TrimSpace(id.BaseName), func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(parts) == 0 {
		return id.BaseName
	}
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}

// DefaultDescription is the description used when the caller supplies none.
func (id Identity) DefaultDescription() string {
	return "Specialized agent for " + strings.ToLower(id.DisplayName()) + " tasks"
}

// String returns the base name.
func (id Identity) String() string { return id.BaseName }
