package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pagarme-checkout/internal/config"
	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/usecase"
)

// Server exposes the checkout endpoints, the gateway postback endpoints, and
// the JWT-guarded admin API.
type Server struct {
	checkoutUC     usecase.CheckoutUseCase
	catalogUC      usecase.CatalogUseCase
	notificationUC usecase.NotificationUseCase
	subUC          usecase.SubscriptionUseCase
	statsUC        usecase.StatsUseCase
	auth           *AuthManager
	cfg            config.ServerConfig
	log            *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	catalogUC usecase.CatalogUseCase,
	notificationUC usecase.NotificationUseCase,
	subUC usecase.SubscriptionUseCase,
	statsUC usecase.StatsUseCase,
	cfg config.ServerConfig,
	dev bool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC:     checkoutUC,
		catalogUC:      catalogUC,
		notificationUC: notificationUC,
		subUC:          subUC,
		statsUC:        statsUC,
		auth:           NewAuthManager(cfg.AdminSecret, !dev, "", cfg.AdminTTL),
		cfg:            cfg,
		log:            logger,
	}
}

// Router builds the chi router with all routes and ambient middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/{slug}", checkoutPageHandler(s.catalogUC))
		r.Post("/{slug}/capture", captureHandler(s.checkoutUC))
		r.Post("/notification", notificationHandler(s.paymentNotification))
		r.Post("/subscription/notification", notificationHandler(s.subscriptionNotification))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", sessionHandler(s.auth, s.cfg.AdminSecret))

		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Get("/items", itemsListHandler(s.catalogUC))
			r.Post("/items", itemCreateHandler(s.catalogUC))
			r.Post("/configs", configCreateHandler(s.catalogUC))
			r.Get("/plans", plansListHandler(s.subUC))
			r.Post("/plans", planCreateHandler(s.subUC))
			r.Post("/subscriptions", subscriptionRegisterHandler(s.subUC))
			r.Get("/stats", statsHandler(s.statsUC))
		})
	})

	return Chain(r,
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(30*time.Second),
	)
}

// paymentNotification adapts the raw postback into the use case call. The
// body is urlencoded; it is parsed here, after the raw bytes were captured
// for signature verification.
func (s *Server) paymentNotification(r *http.Request, body []byte, signature string) error {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return domain.ErrInvalidArgument
	}
	return s.notificationUC.HandlePaymentNotification(r.Context(), form, body, signature)
}

func (s *Server) subscriptionNotification(r *http.Request, body []byte, signature string) error {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return domain.ErrInvalidArgument
	}
	return s.notificationUC.HandleSubscriptionNotification(r.Context(), form, body, signature)
}

// adminOnly guards the admin API with the JWT session.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminSecret == "" {
			s.log.Error().Msg("admin secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}
