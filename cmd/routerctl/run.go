package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"venueRouter/internal/chain"
	"venueRouter/internal/config"
	"venueRouter/internal/events"
	"venueRouter/internal/ident"
	"venueRouter/internal/mirror"
	"venueRouter/internal/registry"
	"venueRouter/internal/router"
	"venueRouter/internal/script"
	"venueRouter/internal/sim"
	"venueRouter/internal/storage"
	"venueRouter/internal/storage/postgres"
)

// chainContext is the environment a run derives its domain tag from.
type chainContext struct {
	chainID    uint64
	prevRandao common.Hash
	startBlock uint64
}

func runScript(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRun(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("script path is required")
	}
	addrs, err := cfg.ParseAddresses()
	if err != nil {
		return err
	}
	venues, err := config.ParseVenues(cfg.Venues)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := chainContext{chainID: cfg.ChainID, startBlock: cfg.StartBlock}
	if cfg.PrevRandao != "" {
		data, err := hexutil.Decode(cfg.PrevRandao)
		if err != nil || len(data) != 32 {
			return fmt.Errorf("invalid prev-randao: %s", cfg.PrevRandao)
		}
		env.prevRandao = common.BytesToHash(data)
	}

	var chainClient *chain.Client
	if cfg.RPCURL != "" {
		chainClient, err = chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		env, err = loadChainContext(ctx, chainClient, cfg, logger)
		if err != nil {
			return err
		}
	}

	domain, err := ident.DomainTag(ident.SystemName, uint256.NewInt(env.chainID), new(uint256.Int).SetBytes(env.prevRandao[:]), ident.DomainSalt)
	if err != nil {
		return fmt.Errorf("derive domain tag: %w", err)
	}

	backend := sim.NewBackend(env.startBlock)
	if chainClient != nil {
		backend.SetFallback(chain.VenueHandler(chainClient, new(big.Int).SetUint64(env.startBlock), logger))
	}

	sink := events.Multi{events.NewLogSink(logger)}
	if cfg.Journal != "" {
		codec, err := events.NewCodec()
		if err != nil {
			return err
		}
		sink = append(sink, events.NewJournalSink(codec, storage.NewJsonlStorage(cfg.Journal), env.chainID, addrs.Router))
	}

	rt, err := router.New(router.Config{
		Address:   addrs.Router,
		Owner:     addrs.Owner,
		Treasury:  addrs.Treasury,
		Collector: addrs.Collector,
		Keeper:    addrs.Keeper,
		FeeBps:    cfg.FeeBps,
		DomainTag: domain,
	}, backend, sink, logger)
	if err != nil {
		return err
	}

	logger.Info("run start",
		zap.String("in", cfg.In),
		zap.Uint64("chain_id", env.chainID),
		zap.Uint64("start_block", env.startBlock),
		zap.String("domain_tag", domain.Hex()),
		zap.String("router", addrs.Router.Hex()),
		zap.Uint16("fee_bps", cfg.FeeBps),
		zap.Int("preset_venues", len(venues)),
		zap.String("journal", cfg.Journal),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	if err := registerPresetVenues(ctx, rt, addrs.Owner, venues); err != nil {
		return err
	}

	report, err := script.NewRunner(rt, backend, logger).RunFile(ctx, cfg.In)
	if err != nil {
		return err
	}

	if cfg.Report != "" {
		if err := script.WriteReport(cfg.Report, report); err != nil {
			return err
		}
	}

	if cfg.PGDSN != "" {
		if err := mirrorState(ctx, cfg, rt, logger); err != nil {
			return err
		}
	}

	if report.Invalid > 0 || report.Mismatches > 0 {
		return fmt.Errorf("script had %d invalid operations and %d unmet expectations", report.Invalid, report.Mismatches)
	}
	return nil
}

func loadChainContext(ctx context.Context, client *chain.Client, cfg config.RunConfig, logger *zap.Logger) (chainContext, error) {
	var env chainContext
	retry := chain.Retry{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff, Logger: logger}
	err := retry.Do(ctx, "chain_context", func(ctx context.Context) error {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("chain id: %w", err)
		}
		latest, err := client.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
		randao, err := client.PrevRandao(ctx, latest)
		if err != nil {
			return fmt.Errorf("prevrandao at %d: %w", latest, err)
		}
		env = chainContext{chainID: chainID, prevRandao: randao, startBlock: latest}
		return nil
	})
	if err != nil {
		return chainContext{}, fmt.Errorf("load chain context: %w", err)
	}
	return env, nil
}

func registerPresetVenues(ctx context.Context, rt *router.Router, owner common.Address, venues []config.VenueSpec) error {
	for start := 0; start < len(venues); start += registry.MaxBatch {
		end := start + registry.MaxBatch
		if end > len(venues) {
			end = len(venues)
		}
		targets := make([]common.Address, 0, end-start)
		labels := make([]common.Hash, 0, end-start)
		for _, venue := range venues[start:end] {
			targets = append(targets, venue.Target)
			labels = append(labels, venue.Label)
		}
		if _, err := rt.RegisterVenues(ctx, owner, targets, labels); err != nil {
			return fmt.Errorf("register preset venues: %w", err)
		}
	}
	return nil
}

func mirrorState(ctx context.Context, cfg config.RunConfig, rt *router.Router, logger *zap.Logger) error {
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if _, err := mirror.New(store, cfg.BatchSize, logger).Sync(ctx, rt); err != nil {
		return err
	}
	return nil
}
