package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wastenot/internal/db"
	"github.com/vbonduro/wastenot/internal/domain"
	"github.com/vbonduro/wastenot/internal/metrics"
	"github.com/vbonduro/wastenot/internal/photostore"
	"github.com/vbonduro/wastenot/internal/stats"
	"github.com/vbonduro/wastenot/internal/store"
	"github.com/vbonduro/wastenot/internal/vision"
)

// stubVision is a minimal vision.Analyzer for tests.
type stubVision struct {
	result *domain.FoodAnalysis
	err    error
}

func (s *stubVision) Analyze(_ context.Context, _ io.Reader, _ string) (*domain.FoodAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	return &result, nil
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	mu        sync.Mutex
	saved     map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	key := prefix + "_photo.jpg"
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[key]
	if !ok {
		return nil, "", photostore.ErrPhotoNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key)
	delete(s.saved, key)
	return nil
}

type failingStats struct{}

func (failingStats) RecordDonation(context.Context, domain.Donation) (*domain.Profile, error) {
	return nil, domain.ErrPersistence
}

type testService struct {
	*DonationService
	vision   *stubVision
	photos   *stubPhotoStore
	profiles *store.ProfileStore
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	records := store.NewRecords(store.NewSQLiteKV(d))
	profiles := store.NewProfileStore(records)
	sv := &stubVision{result: &domain.FoodAnalysis{FoodType: "Soup", Description: "Lentil soup", Quantity: "6 jars"}}
	photos := newStubPhotoStore()

	svc := NewDonationService(
		store.NewDonationStore(records),
		profiles,
		stats.NewAggregator(profiles, rand.New(rand.NewPCG(7, 7))),
		sv,
		photos,
		metrics.New(true),
		slog.Default(),
	)
	return &testService{DonationService: svc, vision: sv, photos: photos, profiles: profiles}
}

func soup() domain.DonationInput {
	return domain.DonationInput{
		FoodType:    "Soup",
		Description: "Lentil soup in glass jars",
		Quantity:    "6 jars",
		Location:    "Community Hall",
	}
}

func TestDonationServiceCreateDonation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	donation, err := svc.CreateDonation(ctx, soup())
	require.NoError(t, err)
	assert.NotEmpty(t, donation.ID)
	assert.False(t, donation.Claimed)

	profile, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	defaults := domain.DefaultProfile()
	assert.Equal(t, defaults.DonationsMade+1, profile.DonationsMade)
	assert.Equal(t, defaults.MealsSaved+6, profile.MealsSaved)
	assert.Greater(t, profile.PeopleHelped, defaults.PeopleHelped)
	assert.Greater(t, profile.CarbonReduced, defaults.CarbonReduced)
}

func TestDonationServiceCreateDonation_TrimsInput(t *testing.T) {
	svc := newTestService(t)

	input := soup()
	input.FoodType = "  Soup  "
	donation, err := svc.CreateDonation(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Soup", donation.FoodType)
}

func TestDonationServiceCreateDonation_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	input := soup()
	input.FoodType = "   "
	input.Location = ""
	_, err := svc.CreateDonation(ctx, input)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "foodType is required")
	assert.Contains(t, err.Error(), "location is required")

	list, err := svc.ListDonations(ctx, domain.DonationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	profile, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile(), *profile)
}

func TestDonationServiceCreateDonation_StatsFailureKeepsDonation(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	records := store.NewRecords(store.NewSQLiteKV(d))

	svc := NewDonationService(
		store.NewDonationStore(records),
		store.NewProfileStore(records),
		failingStats{},
		&stubVision{},
		newStubPhotoStore(),
		nil,
		slog.Default(),
	)
	ctx := context.Background()

	donation, err := svc.CreateDonation(ctx, soup())
	require.NoError(t, err)

	stored, err := svc.GetDonation(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, *donation, *stored)
}

func TestDonationServiceListDonations_Filters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	inputs := []domain.DonationInput{
		{FoodType: "Soup", Description: "Lentil soup", Quantity: "6 jars", Location: "Community Hall"},
		{FoodType: "Bread", Description: "Sourdough loaves", Quantity: "3", Location: "Corner Bakery"},
		{FoodType: "Apples", Description: "Crisp and sweet", Quantity: "1 crate", Location: "Farmers Market"},
	}
	var ids []string
	for _, in := range inputs {
		d, err := svc.CreateDonation(ctx, in)
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	_, err := svc.ClaimDonation(ctx, ids[1])
	require.NoError(t, err)

	all, err := svc.ListDonations(ctx, domain.DonationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	claimed := true
	got, err := svc.ListDonations(ctx, domain.DonationFilter{Claimed: &claimed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids[1], got[0].ID)

	unclaimed := false
	got, err = svc.ListDonations(ctx, domain.DonationFilter{Claimed: &unclaimed})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListDonations(ctx, domain.DonationFilter{Query: "  BAKERY "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bread", got[0].FoodType)

	got, err = svc.ListDonations(ctx, domain.DonationFilter{Query: "sweet", Claimed: &claimed})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDonationServiceClaimDonation_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ClaimDonation(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDonationServiceUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	want := domain.Profile{Name: "Ada", Type: "Restaurant", JoinDate: "Jan 2025", MealsSaved: 1}
	updated, err := svc.UpdateProfile(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, want, *updated)

	got, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestDonationServiceUpdateProfile_Validation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateProfile(context.Background(), domain.Profile{Name: "Ada", Type: "Cafe", JoinDate: "Jan 2025", MealsSaved: -1})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "mealsSaved must be at least 0")
}

func TestDonationServiceUpdateProfileDetails_KeepsCounters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDonation(ctx, soup())
	require.NoError(t, err)
	before, err := svc.GetProfile(ctx)
	require.NoError(t, err)

	name := "  Ada  "
	updated, err := svc.UpdateProfileDetails(ctx, domain.ProfileDetails{Name: &name})
	require.NoError(t, err)

	want := *before
	want.Name = "Ada"
	assert.Equal(t, want, *updated)

	got, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestDonationServiceUpdateProfileDetails_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	blank := "   "
	_, err := svc.UpdateProfileDetails(ctx, domain.ProfileDetails{Type: &blank})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "type is required")

	got, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile(), *got)
}

// Detail edits racing with donations must not drop any stats increment.
func TestDonationServiceUpdateProfileDetails_ConcurrentWithDonations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const rounds = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateDonation(ctx, soup()); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			joinDate := fmt.Sprintf("Round %d", i)
			if _, err := svc.UpdateProfileDetails(ctx, domain.ProfileDetails{JoinDate: &joinDate}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile().DonationsMade+rounds, got.DonationsMade)
	assert.Equal(t, domain.DefaultProfile().MealsSaved+6*rounds, got.MealsSaved)
}

func TestDonationServiceAnalyzeFood(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	analysis, err := svc.AnalyzeFood(ctx, image, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Soup", analysis.FoodType)
	assert.Equal(t, "6 jars", analysis.Quantity)
	require.True(t, strings.HasPrefix(analysis.Photo, PhotoURLPrefix))

	r, mimeType, err := svc.OpenPhoto(ctx, strings.TrimPrefix(analysis.Photo, PhotoURLPrefix))
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, image, data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestDonationServiceAnalyzeFood_NoFood(t *testing.T) {
	svc := newTestService(t)
	svc.vision.err = vision.ErrNoFood

	_, err := svc.AnalyzeFood(context.Background(), []byte{0xFF}, "image/jpeg")
	assert.ErrorIs(t, err, vision.ErrNoFood)
	assert.Empty(t, svc.photos.saved)
	assert.Equal(t, []string{"food_photo.jpg"}, svc.photos.deleted)
}

func TestDonationServiceAnalyzeFood_VisionErrorRemovesPhoto(t *testing.T) {
	svc := newTestService(t)
	svc.vision.err = errors.New("backend unavailable")

	_, err := svc.AnalyzeFood(context.Background(), []byte{0xFF}, "image/jpeg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, vision.ErrNoFood)
	assert.Empty(t, svc.photos.saved)
	assert.Equal(t, []string{"food_photo.jpg"}, svc.photos.deleted)
}

func TestDonationServiceAnalyzeFood_DeleteFailureKeepsAnalysisError(t *testing.T) {
	svc := newTestService(t)
	svc.vision.err = vision.ErrNoFood
	svc.photos.deleteErr = errors.New("permission denied")

	_, err := svc.AnalyzeFood(context.Background(), []byte{0xFF}, "image/jpeg")
	assert.ErrorIs(t, err, vision.ErrNoFood)
}

func TestDonationServiceAnalyzeFood_SuccessKeepsPhoto(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AnalyzeFood(context.Background(), []byte{0xFF}, "image/jpeg")
	require.NoError(t, err)
	assert.Len(t, svc.photos.saved, 1)
	assert.Empty(t, svc.photos.deleted)
}

func TestDonationServiceAnalyzeFood_SaveError(t *testing.T) {
	svc := newTestService(t)
	svc.photos.saveErr = errors.New("disk full")

	svc.vision.err = errors.New("must not be called")

	_, err := svc.AnalyzeFood(context.Background(), []byte{0xFF}, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save photo")
	assert.Empty(t, svc.photos.deleted)
}

func TestDonationServiceOpenPhoto_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.OpenPhoto(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, photostore.ErrPhotoNotFound)
}
