package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vbonduro/wastenot/internal/domain"
)

const profileKey = "userProfile"

type ProfileStore struct {
	records *Records
}

func NewProfileStore(records *Records) *ProfileStore {
	return &ProfileStore{records: records}
}

// Get returns the persisted profile, or the default profile if none was ever
// saved. Reading never writes the defaults back.
func (s *ProfileStore) Get(ctx context.Context) (*domain.Profile, error) {
	raw, ok, err := s.records.Read(ctx, profileKey)
	if err != nil {
		return nil, persistenceError("get profile", err)
	}

	profile, err := decodeProfile(raw, ok)
	if err != nil {
		return nil, persistenceError("get profile", err)
	}
	return profile, nil
}

// Set replaces the stored profile wholesale.
func (s *ProfileStore) Set(ctx context.Context, profile domain.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	err = s.records.Update(ctx, profileKey, func([]byte) ([]byte, error) {
		return payload, nil
	})
	if err != nil {
		return persistenceError("set profile", err)
	}
	return nil
}

// Modify applies fn to the current profile (defaults if absent) and stores
// the result as one serialized read-modify-write.
func (s *ProfileStore) Modify(ctx context.Context, fn func(*domain.Profile)) (*domain.Profile, error) {
	var updated *domain.Profile
	err := s.records.Update(ctx, profileKey, func(current []byte) ([]byte, error) {
		profile, err := decodeProfile(current, current != nil)
		if err != nil {
			return nil, err
		}
		fn(profile)
		updated = profile
		return json.Marshal(profile)
	})
	if err != nil {
		return nil, persistenceError("update profile", err)
	}
	return updated, nil
}

func decodeProfile(raw []byte, ok bool) (*domain.Profile, error) {
	if !ok {
		profile := domain.DefaultProfile()
		return &profile, nil
	}

	profile := &domain.Profile{}
	if err := json.Unmarshal(raw, profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return profile, nil
}
