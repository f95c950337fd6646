package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vbonduro/wastenot/internal/domain"
	"github.com/vbonduro/wastenot/internal/metrics"
	"github.com/vbonduro/wastenot/internal/photostore"
	"github.com/vbonduro/wastenot/internal/vision"
)

// PhotoURLPrefix is the HTTP path under which stored photos are served.
const PhotoURLPrefix = "/photos/"

// donationRepository is the subset of store.DonationStore that DonationService requires.
type donationRepository interface {
	Append(ctx context.Context, input domain.DonationInput) (*domain.Donation, error)
	List(ctx context.Context) ([]domain.Donation, error)
	Get(ctx context.Context, id string) (*domain.Donation, error)
	SetClaimed(ctx context.Context, id string) (*domain.Donation, error)
}

// profileRepository is the subset of store.ProfileStore that DonationService requires.
type profileRepository interface {
	Get(ctx context.Context) (*domain.Profile, error)
	Set(ctx context.Context, profile domain.Profile) error
	Modify(ctx context.Context, fn func(*domain.Profile)) (*domain.Profile, error)
}

// statsRecorder is the subset of stats.Aggregator that DonationService requires.
type statsRecorder interface {
	RecordDonation(ctx context.Context, donation domain.Donation) (*domain.Profile, error)
}

type DonationService struct {
	donations donationRepository
	profiles  profileRepository
	stats     statsRecorder
	visionAPI vision.Analyzer
	photoStg  photostore.PhotoStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewDonationService(
	donations donationRepository,
	profiles profileRepository,
	stats statsRecorder,
	visionAPI vision.Analyzer,
	photoStg photostore.PhotoStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) *DonationService {
	return &DonationService{
		donations: donations,
		profiles:  profiles,
		stats:     stats,
		visionAPI: visionAPI,
		photoStg:  photoStg,
		metrics:   m,
		logger:    logger,
	}
}

// CreateDonation validates and stores a new donation, then folds it into the
// profile stats. A stats failure is logged but does not fail the call: the
// donation is already durable by then.
func (s *DonationService) CreateDonation(ctx context.Context, input domain.DonationInput) (*domain.Donation, error) {
	input = trimInput(input)
	if err := validate(input); err != nil {
		return nil, err
	}

	donation, err := s.donations.Append(ctx, input)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDonationCreated()
	s.logger.Info("donation created", "donation_id", donation.ID, "food_type", donation.FoodType)

	if _, err := s.stats.RecordDonation(ctx, *donation); err != nil {
		s.logger.Error("failed to update profile stats", "donation_id", donation.ID, "error", err)
	}
	return donation, nil
}

// ListDonations returns donations in creation order, narrowed by filter.
func (s *DonationService) ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	all, err := s.donations.List(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]domain.Donation, 0, len(all))
	for _, d := range all {
		if filter.Claimed != nil && d.Claimed != *filter.Claimed {
			continue
		}
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func matchesQuery(d domain.Donation, query string) bool {
	for _, field := range []string{d.FoodType, d.Description, d.Location} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (s *DonationService) GetDonation(ctx context.Context, id string) (*domain.Donation, error) {
	return s.donations.Get(ctx, id)
}

func (s *DonationService) ClaimDonation(ctx context.Context, id string) (*domain.Donation, error) {
	donation, err := s.donations.SetClaimed(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDonationClaimed()
	s.logger.Info("donation claimed", "donation_id", id)
	return donation, nil
}

func (s *DonationService) GetProfile(ctx context.Context) (*domain.Profile, error) {
	return s.profiles.Get(ctx)
}

// UpdateProfile replaces the stored profile wholesale.
func (s *DonationService) UpdateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	if err := validate(profile); err != nil {
		return nil, err
	}
	if err := s.profiles.Set(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "name", profile.Name)
	return &profile, nil
}

// UpdateProfileDetails changes the descriptive profile fields in one
// serialized read-modify-write, so concurrent stats updates are kept.
func (s *DonationService) UpdateProfileDetails(ctx context.Context, details domain.ProfileDetails) (*domain.Profile, error) {
	details = trimDetails(details)
	if err := validate(details); err != nil {
		return nil, err
	}
	updated, err := s.profiles.Modify(ctx, details.Apply)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile details updated", "name", updated.Name)
	return updated, nil
}

// AnalyzeFood stores the image, then asks the vision backend to describe the
// food in it. The stored image is removed again when analysis fails.
func (s *DonationService) AnalyzeFood(ctx context.Context, imageData []byte, mimeType string) (*domain.FoodAnalysis, error) {
	s.logger.Info("food analysis started", "mime_type", mimeType, "bytes", len(imageData))

	storageKey, err := s.photoStg.Save(ctx, "food", mimeType, bytes.NewReader(imageData))
	if err != nil {
		s.metrics.RecordFoodAnalysis("error")
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "storage_key", storageKey)

	analysis, err := s.visionAPI.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		if errors.Is(err, vision.ErrNoFood) {
			s.metrics.RecordFoodAnalysis("no_food")
		} else {
			s.metrics.RecordFoodAnalysis("error")
		}
		s.deletePhoto(ctx, storageKey)
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	s.metrics.RecordFoodAnalysis("ok")
	analysis.Photo = PhotoURLPrefix + storageKey
	s.logger.Info("food analysis complete", "food_type", analysis.FoodType)
	return analysis, nil
}

func (s *DonationService) deletePhoto(ctx context.Context, storageKey string) {
	if err := s.photoStg.Delete(ctx, storageKey); err != nil {
		s.logger.Error("failed to delete photo", "storage_key", storageKey, "error", err)
	}
}

// OpenPhoto returns a reader for a stored photo and its MIME type. The caller
// must close the reader.
func (s *DonationService) OpenPhoto(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	return s.photoStg.Get(ctx, storageKey)
}

func trimInput(in domain.DonationInput) domain.DonationInput {
	in.FoodType = strings.TrimSpace(in.FoodType)
	in.Description = strings.TrimSpace(in.Description)
	in.Quantity = strings.TrimSpace(in.Quantity)
	in.Location = strings.TrimSpace(in.Location)
	in.Photo = strings.TrimSpace(in.Photo)
	return in
}

func trimDetails(d domain.ProfileDetails) domain.ProfileDetails {
	for _, field := range []**string{&d.Name, &d.Type, &d.JoinDate} {
		if *field != nil {
			v := strings.TrimSpace(**field)
			*field = &v
		}
	}
	return d
}
