// Package notion adapts a Notion database onto the tracker contract. It
// discovers each database's property typing at runtime, builds filters and
// updates that fit it, and falls back when a guess is rejected.
package notion

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/nhle/bugtriage/internal/credential"
	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
)

// MaxPageSize is the largest page_size the query endpoint accepts.
const MaxPageSize = 100

// Config holds the settings for a Service.
type Config struct {
	BaseURL    string
	APIVersion string
	Token      credential.Secret

	// DatabaseID is used when a call does not name a database.
	DatabaseID string

	// StatusProperty is written by UpdateStatus when no property is given.
	StatusProperty string

	Timeout time.Duration

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client

	Logger hclog.Logger

	// PatchStrategies overrides DefaultPatchStrategies.
	PatchStrategies []PatchStrategy
}

// ConfigFromApp builds a service Config from the application config.
func ConfigFromApp(cfg *model.AppConfig, token credential.Secret, logger hclog.Logger) Config {
	return Config{
		BaseURL:        cfg.Notion.BaseURL,
		APIVersion:     cfg.Notion.APIVersion,
		Token:          token,
		DatabaseID:     cfg.Notion.DatabaseID,
		StatusProperty: cfg.Notion.StatusProperty,
		Timeout:        cfg.Notion.Timeout,
		Logger:         logger,
	}
}

// Service implements source.Tracker for a Notion workspace. It owns one
// HTTP client for its lifetime; call Close when done.
type Service struct {
	client         *Client
	databaseID     string
	statusProperty string
	strategies     []PatchStrategy
	logger         hclog.Logger
}

var _ source.Tracker = (*Service)(nil)

// New creates a Service. It fails only when no token is supplied.
func New(cfg Config) (*Service, error) {
	if cfg.Token.IsZero() {
		return nil, ErrTokenRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = model.DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = model.DefaultAPIVersion
	}
	if cfg.StatusProperty == "" {
		cfg.StatusProperty = model.DefaultStatusProperty
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = model.DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if len(cfg.PatchStrategies) == 0 {
		cfg.PatchStrategies = DefaultPatchStrategies
	}

	logger := cfg.Logger.Named("notion")

	return &Service{
		client: NewClient(
			cfg.BaseURL, cfg.Token, cfg.APIVersion,
			cfg.Timeout, cfg.HTTPClient, logger,
		),
		databaseID:     cfg.DatabaseID,
		statusProperty: cfg.StatusProperty,
		strategies:     cfg.PatchStrategies,
		logger:         logger,
	}, nil
}

// Type returns the source type identifier for Notion.
func (s *Service) Type() source.SourceType {
	return source.SourceTypeNotion
}

// DatabaseID returns the default database, which may be empty.
func (s *Service) DatabaseID() string {
	return s.databaseID
}

// Close releases the service's HTTP connections.
func (s *Service) Close() {
	s.client.Close()
}

func (s *Service) resolveDatabaseID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if s.databaseID != "" {
		return s.databaseID, nil
	}
	return "", ErrDatabaseIDRequired
}
