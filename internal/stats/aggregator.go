package stats

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/vbonduro/wastenot/internal/domain"
)

// RandSource supplies the random increments for the impact estimates.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// profileRepository is the subset of store.ProfileStore the aggregator needs.
type profileRepository interface {
	Modify(ctx context.Context, fn func(*domain.Profile)) (*domain.Profile, error)
}

type Aggregator struct {
	profiles profileRepository
	rnd      RandSource
}

// NewAggregator returns an Aggregator; a nil rnd uses the runtime's shared
// generator.
func NewAggregator(profiles profileRepository, rnd RandSource) *Aggregator {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Aggregator{profiles: profiles, rnd: rnd}
}

// RecordDonation folds a newly created donation into the profile counters and
// persists the result. peopleHelped and carbonReduced are placeholder
// estimates drawn from the RandSource.
func (a *Aggregator) RecordDonation(ctx context.Context, donation domain.Donation) (*domain.Profile, error) {
	meals := ParseQuantity(donation.Quantity)
	profile, err := a.profiles.Modify(ctx, func(p *domain.Profile) {
		p.DonationsMade++
		p.MealsSaved += meals
		p.PeopleHelped += 1 + a.rnd.IntN(3)
		p.CarbonReduced += 0.5 + 2*a.rnd.Float64()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record donation stats: %w", err)
	}
	return profile, nil
}

var leadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

// ParseQuantity reads the leading integer of a free-text quantity such as
// "4 servings". Text without one, and values below 1, count as 1.
func ParseQuantity(quantity string) int {
	m := leadingInt.FindStringSubmatch(quantity)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
