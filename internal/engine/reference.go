package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// NewReference generates the next free tender reference for an organization,
// in the team's AO-<initials>-<year>-NNN convention. The sequence number is
// one past the count of existing references with the same prefix.
func (e *Engine) NewReference(ctx context.Context, organization string, year int) (string, error) {
	if strings.TrimSpace(organization) == "" {
		return "", fmt.Errorf("organization is required to generate a reference")
	}
	if year == 0 {
		year = time.Now().Year()
	}

	prefix := fmt.Sprintf("AO-%s-%d-", organizationInitials(organization), year)

	count, err := e.storage.CountReferencesWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count existing references: %w", err)
	}

	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

// organizationInitials takes the upper-cased first letter of up to three
// words of the organization name.
func organizationInitials(organization string) string {
	var initials strings.Builder
	words := strings.Fields(organization)
	for i, word := range words {
		if i == 3 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		initials.WriteRune(unicode.ToUpper(r))
	}
	return initials.String()
}
