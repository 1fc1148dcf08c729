package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"venueRouter/internal/chain"
	"venueRouter/internal/config"
	"venueRouter/internal/events"
	"venueRouter/internal/model"
	"venueRouter/internal/storage"
)

var errMissingTopic0 = errors.New("missing topic0")

// decoder routes each record to the typed output or the error output.
type decoder struct {
	codec  *events.Codec
	typed  *storage.Output
	failed *storage.Output

	total, decoded, skipped, errored int
}

func (d *decoder) record(record model.LogRecord) error {
	d.total++
	if len(record.Topics) == 0 {
		return d.reject(model.NewDecodeError(record, errMissingTopic0))
	}
	if !d.codec.CanDecode(record.Topics[0]) {
		d.skipped++
		return nil
	}
	event, err := d.codec.Decode(record)
	if err != nil {
		return d.reject(model.NewDecodeError(record, err))
	}
	d.decoded++
	return d.typed.Write(event)
}

func (d *decoder) badLine(line int, err error) {
	d.total++
	// A failed error write surfaces when the output is closed.
	_ = d.reject(model.DecodeError{Error: fmt.Sprintf("line %d: %v", line, err)})
}

func (d *decoder) reject(decodeErr model.DecodeError) error {
	d.errored++
	return d.failed.Write(decodeErr)
}

func runInspect(cmd *cobra.Command, _ []string) (err error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	switch {
	case cfg.RPCURL == "" && cfg.In == "":
		return fmt.Errorf("input path is required")
	case cfg.RPCURL != "" && cfg.Router == "":
		return fmt.Errorf("router address is required with --rpc")
	case cfg.Out == "":
		return fmt.Errorf("output path is required")
	case cfg.Errors == "":
		return fmt.Errorf("errors path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := events.NewCodec()
	if err != nil {
		return err
	}
	typed, err := storage.CreateOutput(cfg.Out)
	if err != nil {
		return err
	}
	defer closeOutput(typed, &err)
	failed, err := storage.CreateOutput(cfg.Errors)
	if err != nil {
		return err
	}
	defer closeOutput(failed, &err)

	d := &decoder{codec: codec, typed: typed, failed: failed}

	if cfg.RPCURL != "" {
		logger.Info("inspect start", zap.String("router", cfg.Router), zap.Uint64("from", cfg.FromBlock), zap.Uint64("to", cfg.ToBlock))
		if err := fetchChainLogs(ctx, cfg, codec.Topics(), logger, d.record); err != nil {
			return err
		}
	} else {
		logger.Info("inspect start", zap.String("in", cfg.In))
		if err := storage.ReadJournal(cfg.In, d.record, d.badLine); err != nil {
			return err
		}
	}

	logger.Info("inspect complete",
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("total", d.total),
		zap.Int("decoded", d.decoded),
		zap.Int("skipped", d.skipped),
		zap.Int("failed", d.errored),
	)
	return nil
}

func fetchChainLogs(ctx context.Context, cfg config.InspectConfig, topics []common.Hash, logger *zap.Logger, fn func(model.LogRecord) error) error {
	routerAddr, err := config.ParseAddress(cfg.Router)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	query := chain.LogQuery{
		Address:      routerAddr,
		Topic0:       topics,
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}
	return client.FetchLogs(ctx, query, logger, func(batch []model.LogRecord) error {
		for _, record := range batch {
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func closeOutput(out *storage.Output, errp *error) {
	if err := out.Close(); err != nil && *errp == nil {
		*errp = err
	}
}
