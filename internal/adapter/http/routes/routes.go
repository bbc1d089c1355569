package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "clearing_proposals/docs"
	"clearing_proposals/internal/adapter/http/handlers"
	"clearing_proposals/internal/adapter/http/middleware"
	"clearing_proposals/internal/config"
	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/infrastructure/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// Handlers groups every HTTP handler mounted by NewRouter. Assets is nil when
// proposal PDFs live in S3.
type Handlers struct {
	Proposal *handlers.ProposalHandler
	Public   *handlers.PublicProposalHandler
	Catalog  *handlers.CatalogHandler
	Payment  *handlers.PaymentHandler
	Assets   *handlers.AssetHandler
}

type Options struct {
	AdminAPIKey  string
	Limiter      ratelimit.Limiter
	MockCheckout bool
	Logger       *zap.Logger
}

// Run wires the dependencies, serves HTTP and shuts down gracefully when ctx
// is canceled.
func Run(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	l = logger.OrNop(l)
	gin.SetMode(cfg.Server.GinMode)

	deps, err := buildDependencies(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer deps.Close()

	router := NewRouter(deps.Handlers, Options{
		AdminAPIKey:  cfg.Server.AdminAPIKey,
		Limiter:      deps.Limiter,
		MockCheckout: cfg.Payments.Mock,
		Logger:       l,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("[http] listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("[http] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, opts.Logger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	getRoutes(router, h, opts)
	return router
}

func getRoutes(router *gin.Engine, h Handlers, opts Options) {
	v1 := router.Group("/v1")
	addPingRoutes(v1)

	admin := v1.Group("", middleware.AdminKey(opts.AdminAPIKey))
	addProposalRoutes(admin, h.Proposal, h.Payment)
	addCatalogRoutes(admin, h.Catalog)

	public := v1.Group(PathPublic, middleware.RateLimit(opts.Limiter, opts.Logger))
	addPublicRoutes(public, h.Public)

	addWebhookRoutes(v1, h.Payment)

	if h.Assets != nil {
		router.GET("/assets/*key", h.Assets.Get)
	}
	if opts.MockCheckout && h.Payment != nil {
		router.GET("/mock-checkout/:session_id", h.Payment.MockCheckout)
	}
}

func setMiddlewares(router *gin.Engine, l *zap.Logger) {
	l = logger.OrNop(l)
	router.Use(middleware.RequestID(l))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		l.Error("[http] recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}
