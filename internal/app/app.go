package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/mkoreshkov/saas-backend/internal/config"
	"github.com/mkoreshkov/saas-backend/internal/handler"
	"github.com/mkoreshkov/saas-backend/internal/repository"
	"github.com/mkoreshkov/saas-backend/internal/service"
	"github.com/mkoreshkov/saas-backend/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry.Duration)
	refreshManager := service.NewRefreshManager(repos, cfg.Security.TokenHashKey, cfg.JWT.RefreshTokenExpiry.Duration)
	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	notifier := service.NewNotificationService(infra.Mailer(), repos.Notification, infra.Logger())
	googleVerifier := service.NewGoogleVerifier(cfg.Google.ClientID)

	authService := service.NewAuthService(
		repos,
		tokenService,
		refreshManager,
		blacklistService,
		notifier,
		infra.Publisher(),
		googleVerifier,
		infra.Logger(),
		cfg.Security.BCryptCost,
		cfg.Security.ResetTokenExpiry.Duration,
		cfg.Security.ConfirmTokenExpiry.Duration,
		cfg.BaseURL,
		cfg.Google.RequirePhone,
	)

	planService := service.NewPlanService(repos)
	subscriptionService := service.NewSubscriptionService(repos, infra.Publisher(), notifier, infra.Logger())
	teamService := service.NewTeamService(repos)

	authHandler := handler.NewAuthHandler(
		authService,
		notifier,
		infra.Logger(),
		cfg.JWT.RefreshTokenCookie,
		int(cfg.JWT.RefreshTokenExpiry.Duration.Seconds()),
	)
	planHandler := handler.NewPlanHandler(planService)
	teamHandler := handler.NewTeamHandler(teamService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, teamHandler)

	router := gin.Default()
	router.Use(otelgin.Middleware("saas-backend"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, planHandler, teamHandler, subscriptionHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	planHandler *handler.PlanHandler,
	teamHandler *handler.TeamHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limited := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	authed := handler.AuthMiddleware(authService, cfg.JWT.AccessTokenCookie)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited, authHandler.Register)
			auth.POST("/login", limited, authHandler.Login)
			auth.POST("/google", limited, authHandler.GoogleLogin)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/revoke", authHandler.Revoke)
			auth.POST("/forgot-password", limited, authHandler.ForgotPassword)
			auth.POST("/reset-password", limited, authHandler.ResetPassword)
			auth.POST("/confirm-email", authHandler.ConfirmEmail)
			auth.GET("/confirm-email", authHandler.ConfirmEmail)

			auth.POST("/logout", authed, authHandler.Logout)
			auth.POST("/change-password", authed, authHandler.ChangePassword)
			auth.GET("/me", authed, authHandler.GetMe)
			auth.GET("/notifications", authed, authHandler.GetNotifications)
		}

		plans := api.Group("/plans")
		{
			plans.GET("", planHandler.List)
			plans.GET("/:id", planHandler.Get)

			admin := plans.Group("", authed, handler.RequireRole("admin"))
			{
				admin.POST("", planHandler.Create)
				admin.PUT("/:id", planHandler.Update)
				admin.DELETE("/:id", planHandler.Delete)
			}
		}

		teams := api.Group("/teams", authed, handler.RequireConfirmedEmail())
		{
			teams.POST("", teamHandler.Create)
			teams.GET("", teamHandler.List)
			teams.GET("/:id", teamHandler.Get)
			teams.GET("/:id/members", teamHandler.ListMembers)
			teams.POST("/:id/members", teamHandler.AddMember)
			teams.DELETE("/:id/members/:userId", teamHandler.RemoveMember)

			teams.GET("/:id/subscription", subscriptionHandler.Current)
			teams.GET("/:id/subscriptions", subscriptionHandler.History)
			teams.POST("/:id/subscription", subscriptionHandler.Subscribe)
			teams.DELETE("/:id/subscription", subscriptionHandler.Cancel)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
