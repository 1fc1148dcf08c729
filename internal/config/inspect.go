package config

import (
	"time"

	"github.com/spf13/pflag"
)

// InspectConfig holds configuration for the inspect command. When RPCURL is
// set, logs are fetched from the chain instead of read from In.
type InspectConfig struct {
	In           string
	Out          string
	Errors       string
	RPCURL       string
	Router       string
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"in":            "./data/notifications.jsonl",
		"out":           "./data/typed_notifications.jsonl",
		"errors":        "./data/decode_errors.jsonl",
		"batch-size":    uint64(2000),
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return InspectConfig{}, err
	}

	return InspectConfig{
		In:           v.GetString("in"),
		Out:          v.GetString("out"),
		Errors:       v.GetString("errors"),
		RPCURL:       v.GetString("rpc"),
		Router:       v.GetString("router"),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		BatchSize:    v.GetUint64("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}
