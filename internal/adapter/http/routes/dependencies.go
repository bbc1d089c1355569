package routes

import (
	"context"
	"fmt"
	"time"

	"clearing_proposals/internal/adapter/http/handlers"
	"clearing_proposals/internal/adapter/persistence/memory"
	"clearing_proposals/internal/adapter/persistence/repository"
	"clearing_proposals/internal/config"
	"clearing_proposals/internal/domain/entities"
	"clearing_proposals/internal/domain/token"
	"clearing_proposals/internal/infrastructure/database"
	"clearing_proposals/internal/infrastructure/email"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/infrastructure/payments"
	"clearing_proposals/internal/infrastructure/pdf"
	"clearing_proposals/internal/infrastructure/ratelimit"
	"clearing_proposals/internal/infrastructure/storage"
	"clearing_proposals/internal/usecase"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type dependencies struct {
	Handlers Handlers
	Limiter  ratelimit.Limiter
	closers  []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

type repositories struct {
	proposals interfaces.IProposalRepository
	templates interfaces.ICatalogRepository
	snapshots interfaces.ISnapshotRepository
	payments  interfaces.IPaymentRepository
}

func buildDependencies(ctx context.Context, cfg *config.Config, l *zap.Logger) (*dependencies, error) {
	l = logger.OrNop(l)
	deps := &dependencies{}

	var (
		awsCfg    aws.Config
		awsLoaded bool
	)
	loadAWS := func() (aws.Config, error) {
		if awsLoaded {
			return awsCfg, nil
		}
		c, err := database.NewAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg, awsLoaded = c, true
		return awsCfg, nil
	}

	repos, err := buildRepositories(cfg, l, loadAWS)
	if err != nil {
		return nil, err
	}

	var assets interfaces.IAssetStore
	if cfg.Assets.Bucket != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		s3Store, err := storage.NewS3Store(c, storage.S3StoreConfig{
			Bucket:       cfg.Assets.Bucket,
			Endpoint:     cfg.AWS.S3Endpoint,
			UsePathStyle: cfg.Assets.UsePathStyle,
		}, l)
		if err != nil {
			return nil, err
		}
		assets = s3Store
	} else {
		l.Warn("[bootstrap] ASSETS_BUCKET not set; proposal PDFs are kept in memory")
		memStore := storage.NewMemoryStore(cfg.Server.APIBaseURL)
		assets = memStore
		deps.Handlers.Assets = handlers.NewAssetHandler(memStore)
	}

	var mailer interfaces.IMailer
	switch cfg.Email.Transport {
	case "ses":
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		sesMailer, err := email.NewSESMailer(c, cfg.AWS, cfg.Email.From, l)
		if err != nil {
			return nil, err
		}
		mailer = sesMailer
	default:
		mailer = email.NewLogMailer(l)
	}

	var gateway interfaces.IPaymentGateway
	switch {
	case cfg.Payments.Mock:
		l.Warn("[bootstrap] payment gateway running in mock mode")
		gateway = payments.NewMockGateway(cfg.Server.APIBaseURL, l)
	default:
		mp, err := payments.NewMercadoPagoGateway(cfg.Payments.AccessToken, l)
		if err != nil {
			l.Warn("[bootstrap] Mercado Pago gateway not configured; deposits cannot be collected", zap.Error(err))
		} else {
			gateway = mp
		}
	}

	tokens, err := token.NewManager(cfg.Token.Secret, token.WithDefaultTTL(cfg.Token.TTL))
	if err != nil {
		return nil, err
	}

	catalogUseCase := usecase.NewCatalogUseCase(repos.templates, repos.snapshots, l)
	proposalUseCase := usecase.NewProposalUseCase(usecase.ProposalDependencies{
		Repo:        repos.proposals,
		Snapshots:   catalogUseCase,
		Tokens:      tokens,
		Renderer:    pdf.NewRenderer(cfg.App.CompanyName, cfg.App.Currency),
		Assets:      assets,
		Mailer:      mailer,
		Gateway:     gateway,
		PaymentRepo: repos.payments,
		Logger:      l,
	}, usecase.ProposalSettings{
		PublicBaseURL: cfg.Server.PublicBaseURL,
		TokenTTL:      cfg.Token.TTL,
		PDFURLTTL:     cfg.Assets.URLTTL,
		Currency:      cfg.App.Currency,
		CompanyName:   cfg.App.CompanyName,
	})
	paymentUseCase := usecase.NewPaymentUseCase(repos.payments, gateway, proposalUseCase, l)

	deps.Handlers.Proposal = handlers.NewProposalHandler(proposalUseCase, l)
	deps.Handlers.Public = handlers.NewPublicProposalHandler(proposalUseCase, l)
	deps.Handlers.Catalog = handlers.NewCatalogHandler(catalogUseCase, l)
	deps.Handlers.Payment = handlers.NewPaymentHandler(paymentUseCase, cfg.Payments.WebhookSecret, l)

	limiter, closeLimiter, err := buildLimiter(ctx, cfg.RateLimit, l)
	if err != nil {
		return nil, err
	}
	deps.Limiter = limiter
	deps.closers = append(deps.closers, closeLimiter)

	return deps, nil
}

func buildRepositories(cfg *config.Config, l *zap.Logger, loadAWS func() (aws.Config, error)) (repositories, error) {
	if cfg.Storage.Backend == "memory" {
		l.Warn("[bootstrap] using in-memory storage; data is lost on restart", zap.String("seed_template_id", cfg.Storage.SeedTemplateID))
		var seed []entities.PricingTemplate
		if cfg.Storage.SeedTemplateID != "" {
			seed = append(seed, memory.StarterTemplate(cfg.Storage.SeedTemplateID, time.Now()))
		}
		return repositories{
			proposals: memory.NewProposalRepository(),
			templates: memory.NewCatalogRepository(seed...),
			snapshots: memory.NewSnapshotRepository(),
			payments:  memory.NewPaymentRepository(),
		}, nil
	}

	awsCfg, err := loadAWS()
	if err != nil {
		return repositories{}, err
	}
	ddb := database.NewDynamoDBClient(awsCfg, cfg.AWS)
	return repositories{
		proposals: repository.NewProposalDynamoRepository(ddb, cfg.Storage.ProposalsTable, cfg.Storage.EventsTable),
		templates: repository.NewCatalogDynamoRepository(ddb, cfg.Storage.TemplatesTable),
		snapshots: repository.NewSnapshotDynamoRepository(ddb, cfg.Storage.SnapshotsTable),
		payments:  repository.NewPaymentDynamoRepository(ddb, cfg.Storage.PaymentsTable),
	}, nil
}

// buildLimiter prefers a shared Redis window so every replica enforces the
// same budget, and falls back to per-process token buckets.
func buildLimiter(ctx context.Context, cfg config.RateLimitConfig, l *zap.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		l.Info("[bootstrap] public rate limit backed by redis", zap.String("addr", cfg.RedisAddr))
		return ratelimit.NewRedisLimiter(client, cfg.Window, cfg.WindowLimit), func() { _ = client.Close() }, nil
	}

	limiter := ratelimit.NewMemoryLimiter(cfg.RequestsPerSecond, cfg.Burst)
	cleanupCtx, cancel := context.WithCancel(ctx)
	go limiter.Cleanup(cleanupCtx)
	return limiter, cancel, nil
}
