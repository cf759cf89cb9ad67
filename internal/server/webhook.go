package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/repo"
	"github.com/squarelan/verify-relay/internal/infra/telegram"
)

const (
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxBodyBytes = 1 << 20
)

// EventHandler consumes inbound events
type EventHandler interface {
	HandleInbound(ctx context.Context, ev domain.Event) error
}

// Config configures the webhook server
type Config struct {
	Port           int
	Domain         string // Public host the platform should call
	Secret         string // Shared secret expected in the webhook header
	OperatorID     string
	RequestTimeout time.Duration // Bound on handling one update
}

// WebhookServer receives platform updates over HTTP
type WebhookServer struct {
	config    Config
	handler   EventHandler
	registrar repo.WebhookRegistrar
	gatherer  prometheus.Gatherer
	log       *slog.Logger

	server *http.Server
}

// NewWebhookServer creates a new webhook server. gatherer may be nil,
// in which case /metrics is not served.
func NewWebhookServer(
	config Config,
	handler EventHandler,
	registrar repo.WebhookRegistrar,
	gatherer prometheus.Gatherer,
	log *slog.Logger,
) *WebhookServer {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	s := &WebhookServer{
		config:    config,
		handler:   handler,
		registrar: registrar,
		gatherer:  gatherer,
		log:       log.With("component", "webhook"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes
func (s *WebhookServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /registerWebhook", s.handleRegister)
	mux.HandleFunc("GET /unRegisterWebhook", s.handleUnregister)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Start starts the HTTP server and blocks until it stops. After Stop it
// returns immediately.
func (s *WebhookServer) Start() error {
	s.log.Info("listening", "port", s.config.Port)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down
func (s *WebhookServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *WebhookServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("request_id", uuid.NewString())

	got := r.Header.Get(secretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.config.Secret)) != 1 {
		log.Warn("rejected update with bad secret", "remote", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	update, err := telegram.ParseUpdate(body)
	if err != nil {
		log.Warn("bad update", "err", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	ev := toEvent(update, s.config.OperatorID)
	if ev == nil {
		log.Debug("ignoring update", "update_id", update.UpdateID)
		writeOk(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	// A 500 makes the platform redeliver the update
	if err := s.handler.HandleInbound(ctx, ev); err != nil {
		log.Error("handle update failed", "update_id", update.UpdateID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeOk(w)
}

func (s *WebhookServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.config.Domain == "" {
		http.Error(w, "DOMAIN not configured", http.StatusInternalServerError)
		return
	}
	url := fmt.Sprintf("https://%s/webhook", s.config.Domain)

	desc, err := s.registrar.SetWebhook(r.Context(), url, s.config.Secret)
	if err != nil {
		s.log.Error("register webhook failed", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("webhook registered", "url", url, "description", desc)
	writeOk(w)
}

func (s *WebhookServer) handleUnregister(w http.ResponseWriter, r *http.Request) {
	desc, err := s.registrar.DeleteWebhook(r.Context())
	if err != nil {
		s.log.Error("unregister webhook failed", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("webhook removed", "description", desc)
	writeOk(w)
}

func writeOk(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ok"))
}
