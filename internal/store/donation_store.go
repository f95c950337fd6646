package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/wastenot/internal/domain"
)

const donationsKey = "donations"

// maxIDAttempts bounds id regeneration when a fresh id collides with an
// existing record.
const maxIDAttempts = 3

type DonationStore struct {
	records *Records
	now     func() time.Time
	newID   func() (string, error)
}

func NewDonationStore(records *Records) *DonationStore {
	return &DonationStore{
		records: records,
		now:     time.Now,
		newID:   newDonationID,
	}
}

// newDonationID returns a UUIDv7, which sorts by creation time.
func newDonationID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *DonationStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Append stores a new donation at the end of the collection and returns it.
func (s *DonationStore) Append(ctx context.Context, input domain.DonationInput) (*domain.Donation, error) {
	var created domain.Donation
	err := s.records.Update(ctx, donationsKey, func(current []byte) ([]byte, error) {
		donations, err := decodeDonations(current)
		if err != nil {
			return nil, err
		}

		id, err := s.uniqueID(donations)
		if err != nil {
			return nil, err
		}

		created = domain.Donation{
			ID:          id,
			FoodType:    input.FoodType,
			Description: input.Description,
			Quantity:    input.Quantity,
			Location:    input.Location,
			Photo:       input.Photo,
			CreatedAt:   s.timestamp(),
		}
		return json.Marshal(append(donations, created))
	})
	if err != nil {
		return nil, persistenceError("append donation", err)
	}

	return &created, nil
}

func (s *DonationStore) uniqueID(existing []domain.Donation) (string, error) {
	for range maxIDAttempts {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate id: %w", err)
		}
		if indexOf(existing, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique id after %d attempts", maxIDAttempts)
}

// List returns every donation in insertion order. A collection that was never
// written is empty, not an error.
func (s *DonationStore) List(ctx context.Context) ([]domain.Donation, error) {
	raw, _, err := s.records.Read(ctx, donationsKey)
	if err != nil {
		return nil, persistenceError("list donations", err)
	}

	donations, err := decodeDonations(raw)
	if err != nil {
		return nil, persistenceError("list donations", err)
	}
	return donations, nil
}

func (s *DonationStore) Get(ctx context.Context, id string) (*domain.Donation, error) {
	donations, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(donations, id)
	if i < 0 {
		return nil, fmt.Errorf("donation %s: %w", id, domain.ErrNotFound)
	}
	return &donations[i], nil
}

// SetClaimed marks the donation as claimed. Claiming is one-way: a donation
// that is already claimed keeps its original ClaimedAt and nothing is written.
func (s *DonationStore) SetClaimed(ctx context.Context, id string) (*domain.Donation, error) {
	var claimed domain.Donation
	err := s.records.Update(ctx, donationsKey, func(current []byte) ([]byte, error) {
		donations, err := decodeDonations(current)
		if err != nil {
			return nil, err
		}

		i := indexOf(donations, id)
		if i < 0 {
			return nil, fmt.Errorf("donation %s: %w", id, domain.ErrNotFound)
		}
		if donations[i].Claimed {
			claimed = donations[i]
			return nil, nil
		}

		at := s.timestamp()
		donations[i].Claimed = true
		donations[i].ClaimedAt = &at
		claimed = donations[i]
		return json.Marshal(donations)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, persistenceError("claim donation", err)
	}

	return &claimed, nil
}

func decodeDonations(raw []byte) ([]domain.Donation, error) {
	donations := []domain.Donation{}
	if len(raw) == 0 {
		return donations, nil
	}
	if err := json.Unmarshal(raw, &donations); err != nil {
		return nil, fmt.Errorf("failed to decode donations: %w", err)
	}
	return donations, nil
}

func indexOf(donations []domain.Donation, id string) int {
	for i := range donations {
		if donations[i].ID == id {
			return i
		}
	}
	return -1
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", domain.ErrPersistence, op, err)
}
