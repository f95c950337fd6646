// Package mock is a vision analyzer that needs no model: each call returns
// the next entry of a fixed rotation of drinks.
package mock

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/vbonduro/wastenot/internal/domain"
)

var rotation = []domain.FoodAnalysis{
	{FoodType: "Bottle of Water", Description: "Fresh bottled water", Quantity: "1 bottle"},
	{FoodType: "Cup of Soda", Description: "Refreshing soda drink", Quantity: "1 cup"},
	{FoodType: "Blackcurrant Soda", Description: "Sweet blackcurrant flavored soda", Quantity: "1 can"},
}

type MockAnalyzer struct {
	calls atomic.Uint64
}

func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

func (a *MockAnalyzer) Analyze(ctx context.Context, r io.Reader, _ string) (*domain.FoodAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	n := a.calls.Add(1) - 1
	result := rotation[n%uint64(len(rotation))]
	return &result, nil
}
