package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"venueRouter/internal/fees"
)

// RunConfig holds configuration for the run command.
type RunConfig struct {
	RPCURL       string
	ChainID      uint64
	PrevRandao   string
	Router       string
	Owner        string
	Treasury     string
	Collector    string
	Keeper       string
	FeeBps       uint16
	Venues       []string
	In           string
	Journal      string
	Report       string
	PGDSN        string
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	StartBlock   uint64
	LogLevel     string
}

// LoadRun merges config file, environment variables, and flags into RunConfig.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"chain-id":      uint64(31337),
		"fee-bps":       uint(fees.DefaultFeeBps),
		"in":            "./data/ops.jsonl",
		"journal":       "./data/notifications.jsonl",
		"report":        "./data/report.json",
		"batch-size":    500,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"start-block":   uint64(1),
		"log-level":     "info",
	})
	if err != nil {
		return RunConfig{}, err
	}

	feeBps := v.GetUint("fee-bps")
	if feeBps > uint(fees.MaxFeeBps) {
		return RunConfig{}, fmt.Errorf("fee-bps %d: %w", feeBps, fees.ErrInvalidFeeBps)
	}

	cfg := RunConfig{
		RPCURL:       v.GetString("rpc"),
		ChainID:      v.GetUint64("chain-id"),
		PrevRandao:   v.GetString("prev-randao"),
		Router:       v.GetString("router"),
		Owner:        v.GetString("owner"),
		Treasury:     v.GetString("treasury"),
		Collector:    v.GetString("collector"),
		Keeper:       v.GetString("keeper"),
		FeeBps:       uint16(feeBps),
		Venues:       getStringSlice(v, "venues"),
		In:           v.GetString("in"),
		Journal:      v.GetString("journal"),
		Report:       v.GetString("report"),
		PGDSN:        v.GetString("pg-dsn"),
		BatchSize:    v.GetInt("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		StartBlock:   v.GetUint64("start-block"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// Addresses holds the parsed role addresses of a RunConfig.
type Addresses struct {
	Router    common.Address
	Owner     common.Address
	Treasury  common.Address
	Collector common.Address
	Keeper    common.Address
}

// ParseAddresses validates the configured role addresses. The keeper is optional.
func (c RunConfig) ParseAddresses() (Addresses, error) {
	var (
		out Addresses
		err error
	)
	if out.Router, err = ParseAddress(c.Router); err != nil {
		return Addresses{}, fmt.Errorf("router: %w", err)
	}
	if out.Owner, err = ParseAddress(c.Owner); err != nil {
		return Addresses{}, fmt.Errorf("owner: %w", err)
	}
	if out.Treasury, err = ParseAddress(c.Treasury); err != nil {
		return Addresses{}, fmt.Errorf("treasury: %w", err)
	}
	if out.Collector, err = ParseAddress(c.Collector); err != nil {
		return Addresses{}, fmt.Errorf("collector: %w", err)
	}
	if out.Keeper, err = ParseOptionalAddress(c.Keeper); err != nil {
		return Addresses{}, fmt.Errorf("keeper: %w", err)
	}
	return out, nil
}
