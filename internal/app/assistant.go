package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xolak-dev/xolak-cli/internal/config"
	"github.com/xolak-dev/xolak-cli/internal/domain"
	"github.com/xolak-dev/xolak-cli/internal/logger"
	"github.com/xolak-dev/xolak-cli/internal/storage"
	"github.com/xolak-dev/xolak-cli/pkg/agentapi"
	"github.com/xolak-dev/xolak-cli/pkg/httpclient"
	"github.com/xolak-dev/xolak-cli/pkg/publishers"
)

// ErrEmptyQuery is returned by Ask when the query is blank.
var ErrEmptyQuery = errors.New("query must not be empty")

// Agent is the backend surface the assistant needs.
type Agent interface {
	QueryAgent(ctx context.Context, query string) (*domain.QueryResponse, error)
	CheckHealth(ctx context.Context) bool
}

// EventPublisher exports answered queries downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// Assistant wires the agent client with the local history store and the
// optional recommendation exporters.
type Assistant struct {
	agent  Agent
	store  storage.Store
	fanout EventPublisher
	log    logger.Logger
	now    func() time.Time
}

// NewAssistant builds an assistant runtime from config.
func NewAssistant(ctx context.Context, cfg *config.Config, log logger.Logger) (*Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	baseURL := agentapi.ResolveBaseURL(cfg)
	httpClient := httpclient.NewRestyClientWithOptions(httpclient.Options{
		Timeout: cfg.RequestTimeout,
		BaseURL: cfg.Origin,
	})
	client := agentapi.NewClient(baseURL, httpClient, log)
	log.InfoObj("agent client initialized", "client_config", map[string]any{
		"base_url":        displayBaseURL(client.BaseURL()),
		"origin":          cfg.Origin,
		"request_timeout": cfg.RequestTimeout.String(),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		HistoryTTL:      cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"history_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	return New(client, store, fanout, log), nil
}

// New assembles an assistant from already-built parts. Nil store and
// fanout disable history and export.
func New(agent Agent, store storage.Store, fanout EventPublisher, log logger.Logger) *Assistant {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if fanout == nil {
		fanout = publishers.NewFanout(nil)
	}
	return &Assistant{
		agent:  agent,
		store:  store,
		fanout: fanout,
		log:    log,
		now:    time.Now,
	}
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultBuilders(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Ask submits query to the agent. Once the agent has answered, history and
// export failures are logged and never fail the call.
func (a *Assistant) Ask(ctx context.Context, query string) (*domain.QueryResponse, error) {
	if a == nil || a.agent == nil {
		return nil, fmt.Errorf("assistant is not initialized")
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	askedAt := a.now()
	resp, err := a.agent.QueryAgent(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := a.store.Record(domain.NewHistoryEntry(query, *resp, askedAt)); err != nil {
		a.log.WarnObj("history record failed", "error", err.Error())
	}

	if a.fanout.Size() > 0 {
		delivered, err := a.fanout.Publish(ctx, publishers.NewEvent(query, *resp))
		if err != nil {
			a.log.WarnObj("recommendation export failed", "export_error", map[string]any{
				"delivered": delivered,
				"error":     err.Error(),
			})
		} else {
			a.log.DebugObj("recommendations exported", "delivered", delivered)
		}
	}

	return resp, nil
}

// Healthy reports whether the backend is up.
func (a *Assistant) Healthy(ctx context.Context) bool {
	if a == nil || a.agent == nil {
		return false
	}
	return a.agent.CheckHealth(ctx)
}

// History returns up to limit recent queries, newest first.
func (a *Assistant) History(limit int) ([]domain.HistoryEntry, error) {
	if a == nil {
		return nil, fmt.Errorf("assistant is not initialized")
	}
	entries, err := a.store.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Close releases the store and publishers. Errors are joined and left to
// the caller to report.
func (a *Assistant) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	return errors.Join(errs...)
}

func displayBaseURL(base string) string {
	if base == "" {
		return "(same origin)"
	}
	return base
}
