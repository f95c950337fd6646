package vision

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vbonduro/wastenot/internal/domain"
)

// ParseLine parses a single "food type | description | quantity" line.
// Returns nil for blank lines, preamble, and lines without a separator.
func ParseLine(line string) *domain.FoodAnalysis {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}
	if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "I see") || strings.HasPrefix(line, "Based on") {
		return nil
	}

	parts := strings.Split(line, "|")
	analysis := &domain.FoodAnalysis{
		FoodType: strings.Trim(strings.TrimSpace(parts[0]), "*-• "),
	}
	if len(parts) >= 2 {
		analysis.Description = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		analysis.Quantity = strings.TrimSpace(parts[2])
	}

	if analysis.FoodType == "" {
		return nil
	}
	if analysis.Quantity == "" {
		analysis.Quantity = "1"
	}
	return analysis
}

// ParseResponse returns the first parseable line of a model response.
func ParseResponse(raw string) (*domain.FoodAnalysis, error) {
	for _, line := range strings.Split(raw, "\n") {
		if analysis := ParseLine(line); analysis != nil {
			return analysis, nil
		}
	}
	return nil, fmt.Errorf("%w in response %q", ErrNoFood, truncate(raw, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
