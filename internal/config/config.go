package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		ListenAddr     string   `env:"LISTEN_ADDR,default=:8080"`
		MetricsAddr    string   `env:"METRICS_ADDR,default=:2112"`
		LogLevel       int      `env:"LOG_LEVEL,default=4"`
		DotPath        string   `env:"DOT_PATH,default=~/.murmur"`
		ExemptActorIDs []string `env:"EXEMPT_ACTOR_IDS"`
		Classifier     Classifier
		SpamGuard      SpamGuard
		Escalation     Escalation
		BanLedger      BanLedger
	}

	Classifier struct {
		APIKey  string        `env:"CLASSIFIER_API_KEY"`
		Model   string        `env:"CLASSIFIER_MODEL,default=omni-moderation-latest"`
		BaseURL string        `env:"CLASSIFIER_API_URL,default=https://api.openai.com/v1"`
		Type    string        `env:"CLASSIFIER_TYPE,default=openai"`
		Timeout time.Duration `env:"CLASSIFIER_TIMEOUT,default=10s"`
	}

	SpamGuard struct {
		PostLimitPerWindow  int           `env:"GUARD_POST_LIMIT,default=4"`
		TimeWindow          time.Duration `env:"GUARD_TIME_WINDOW,default=5m"`
		SimilarityThreshold float64       `env:"GUARD_SIMILARITY_THRESHOLD,default=0.8"`
		MaxWarnings         int           `env:"GUARD_MAX_WARNINGS,default=3"`
		WhitelistThreshold  int           `env:"GUARD_WHITELIST_THRESHOLD,default=10"`
		ViolationCooldown   time.Duration `env:"GUARD_VIOLATION_COOLDOWN,default=5m"`
	}

	Escalation struct {
		ReportRemovalThreshold int `env:"REPORT_REMOVAL_THRESHOLD,default=3"`
		FlagBanThreshold       int `env:"FLAG_BAN_THRESHOLD,default=3"`
	}

	BanLedger struct {
		SweepInterval time.Duration `env:"BAN_SWEEP_INTERVAL,default=1h"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("MURMUR_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		dotPath, err := homedir.Expand(cfg.DotPath)
		if err != nil {
			globalErr = fmt.Errorf("expand dot path: %w", err)
			return
		}
		cfg.DotPath = dotPath
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}

// ExemptPredicate compiles the configured administrative actor list into
// a lookup closure. Resolved once at startup, injected where needed.
func (c Config) ExemptPredicate() func(actorID string) bool {
	exempt := make(map[string]struct{}, len(c.ExemptActorIDs))
	for _, id := range c.ExemptActorIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		exempt[id] = struct{}{}
	}
	return func(actorID string) bool {
		_, ok := exempt[actorID]
		return ok
	}
}
