package vision

import (
	"context"
	"errors"
	"io"

	"github.com/vbonduro/wastenot/internal/domain"
)

// AnalysisPrompt is the shared prompt used by all vision adapters.
const AnalysisPrompt = `Identify the main food item in this photo so it can be listed as a donation.
Respond with exactly one line in plain text, format: food type | short description | quantity
Example: Pizza | Two large margherita pizzas, still warm | 4 servings`

// ErrNoFood is returned when the model response contains no usable line.
var ErrNoFood = errors.New("no food recognised")

type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*domain.FoodAnalysis, error)
}
