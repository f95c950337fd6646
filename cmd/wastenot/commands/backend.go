package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vbonduro/wastenot/internal/client"
	"github.com/vbonduro/wastenot/internal/config"
	"github.com/vbonduro/wastenot/internal/db"
	"github.com/vbonduro/wastenot/internal/domain"
	"github.com/vbonduro/wastenot/internal/metrics"
	"github.com/vbonduro/wastenot/internal/photostore"
	"github.com/vbonduro/wastenot/internal/photostore/local"
	s3photos "github.com/vbonduro/wastenot/internal/photostore/s3"
	"github.com/vbonduro/wastenot/internal/service"
	"github.com/vbonduro/wastenot/internal/stats"
	"github.com/vbonduro/wastenot/internal/store"
	"github.com/vbonduro/wastenot/internal/store/dynamo"
	"github.com/vbonduro/wastenot/internal/vision"
	claudevision "github.com/vbonduro/wastenot/internal/vision/claude"
	"github.com/vbonduro/wastenot/internal/vision/mock"
	ollamavision "github.com/vbonduro/wastenot/internal/vision/ollama"
)

// Backend is what the commands need from either the local service or the
// HTTP client.
type Backend interface {
	CreateDonation(ctx context.Context, input domain.DonationInput) (*domain.Donation, error)
	ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error)
	ClaimDonation(ctx context.Context, id string) (*domain.Donation, error)
	GetProfile(ctx context.Context) (*domain.Profile, error)
	UpdateProfileDetails(ctx context.Context, details domain.ProfileDetails) (*domain.Profile, error)
	AnalyzeFood(ctx context.Context, imageData []byte, mimeType string) (*domain.FoodAnalysis, error)
}

var (
	_ Backend = (*service.DonationService)(nil)
	_ Backend = (*client.Client)(nil)
)

func (a *app) defaultBackend(cmd *cobra.Command) (Backend, func(), error) {
	cfg, logger, cleanupLog, err := a.config()
	if err != nil {
		return nil, nil, err
	}

	if a.server != "" || a.remote {
		baseURL := a.server
		if baseURL == "" {
			baseURL = cfg.APIBaseURL
		}
		logger.Debug("using remote backend", "url", baseURL)
		return client.New(baseURL, cfg.APITimeout), cleanupLog, nil
	}

	svc, cleanupSvc, err := buildService(cmd.Context(), cfg, logger, nil)
	if err != nil {
		cleanupLog()
		return nil, nil, err
	}
	return svc, func() {
		cleanupSvc()
		cleanupLog()
	}, nil
}

// buildService wires the configured storage, vision and photo backends into a
// DonationService. The returned cleanup releases the storage handles.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*service.DonationService, func(), error) {
	kv, cleanup, err := openKV(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	analyzer := newVisionAnalyzer(cfg, logger)

	photos, err := newPhotoStore(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	records := store.NewRecords(kv)
	profiles := store.NewProfileStore(records)
	svc := service.NewDonationService(
		store.NewDonationStore(records),
		profiles,
		stats.NewAggregator(profiles, nil),
		analyzer,
		photos,
		m,
		logger,
	)
	return svc, cleanup, nil
}

func openKV(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.KV, func(), error) {
	switch cfg.KVBackend {
	case "dynamodb":
		logger.Info("using DynamoDB storage", "table", cfg.DynamoDBTable, "region", cfg.AWSRegion)
		kv, err := dynamo.Connect(ctx, cfg.AWSRegion, cfg.DynamoDBTable)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to dynamodb: %w", err)
		}
		return kv, func() {}, nil
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return store.NewSQLiteKV(database), func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}, nil
	}
}

func newVisionAnalyzer(cfg *config.Config, logger *slog.Logger) vision.Analyzer {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("using mock vision backend")
		return mock.NewMockAnalyzer()
	}
}

func newPhotoStore(ctx context.Context, cfg *config.Config) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		ps, err := s3photos.Connect(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize photo store: %w", err)
		}
		return ps, nil
	default:
		ps, err := local.NewLocalPhotoStore(cfg.PhotoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize photo store: %w", err)
		}
		return ps, nil
	}
}
