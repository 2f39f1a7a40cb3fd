package config

import "time"

// ArbiterConfig tunes the lock protecting each auction's highest-bid key.
type ArbiterConfig struct {
	LockTTL       time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	UpdateChannel string
}

func LoadArbiterConfig() ArbiterConfig {
	cfg := ArbiterConfig{
		LockTTL:       envDur("ARBITER_LOCK_TTL", 5*time.Second),
		MaxAttempts:   envInt("ARBITER_MAX_ATTEMPTS", 3),
		RetryBackoff:  envDur("ARBITER_RETRY_BACKOFF", 200*time.Millisecond),
		UpdateChannel: envStr("ARBITER_UPDATE_CHANNEL", "bid_updates"),
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.LockTTL < time.Second {
		cfg.LockTTL = time.Second
	}
	return cfg
}
