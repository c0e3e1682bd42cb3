package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultNodes are the public Steem API endpoints tried in order. The first
// entry is the primary; the rest are fallbacks.
var DefaultNodes = []string{
	"https://api.steemit.com",
	"https://api.steemyy.com",
	"https://api.justyy.com",
	"https://steem.justyy.com",
}

// Config holds the process-wide configuration for the posting service. It is
// built once at startup and treated as immutable afterwards.
type Config struct {
	// Author is the Steem account that posts are published under.
	Author string

	// PostingKey is the WIF-encoded private posting key for Author.
	PostingKey string

	// APIKey authenticates callers of the HTTP API. Defaults to the posting
	// key when API_KEY is not set.
	APIKey string

	// Port the HTTP server listens on.
	Port string

	// Nodes is the ordered endpoint list used for failover.
	Nodes []string

	// BroadcastTimeout bounds each individual node attempt.
	BroadcastTimeout time.Duration
}

// Load reads the service configuration from the environment. STEEM_POSTING_KEY
// and STEEM_AUTHOR are required; everything else has defaults.
func Load(logger *logrus.Logger) (*Config, error) {
	LoadEnv(logger)

	cfg := &Config{
		Author:           RequireEnv("STEEM_AUTHOR"),
		PostingKey:       RequireEnv("STEEM_POSTING_KEY"),
		Port:             GetEnv("PORT", "5000"),
		Nodes:            DefaultNodes,
		BroadcastTimeout: time.Duration(GetEnvInt("NODE_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	cfg.APIKey = GetEnv("API_KEY", cfg.PostingKey)

	if nodes := GetEnv("STEEM_NODES", ""); nodes != "" {
		cfg.Nodes = nil
		for _, n := range strings.Split(nodes, ",") {
			if n = strings.TrimSpace(n); n != "" {
				cfg.Nodes = append(cfg.Nodes, n)
			}
		}
	}
	if len(cfg.Nodes) == 0 {
		return nil, fmt.Errorf("STEEM_NODES must contain at least one endpoint")
	}

	return cfg, nil
}
