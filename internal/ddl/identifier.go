package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifierLen is the maximum length allowed for a SQL identifier.
const maxIdentifierLen = 255

// maxCommentLen is the maximum length allowed for an object comment.
const maxCommentLen = 1024

// ValidateIdentifier checks that name is a safe unquoted warehouse identifier:
//   - Non-empty
//   - At most 255 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
//
// Names that pass can be interpolated into DDL without quoting.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// ValidateQualifiedName checks a dotted name (DB.SCHEMA.OBJECT) with one to
// three parts, each a valid identifier.
func ValidateQualifiedName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 3 {
		return fmt.Errorf("name %q has more than three parts", name)
	}
	for _, p := range parts {
		if err := ValidateIdentifier(p); err != nil {
			return fmt.Errorf("invalid name part %q: %w", p, err)
		}
	}
	return nil
}

// Qualify joins validated identifier parts with dots, skipping empty parts.
func Qualify(parts ...string) (string, error) {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if err := ValidateIdentifier(p); err != nil {
			return "", fmt.Errorf("invalid name part %q: %w", p, err)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("name is required")
	}
	return strings.Join(out, "."), nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ValidateComment checks a free-text object comment.
func ValidateComment(comment string) error {
	if len(comment) > maxCommentLen {
		return fmt.Errorf("comment must be at most %d characters", maxCommentLen)
	}
	if strings.ContainsRune(comment, 0) {
		return fmt.Errorf("comment contains invalid characters")
	}
	return nil
}
