package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"venueRouter/internal/model"
)

// LogQuery selects router logs from a live chain.
type LogQuery struct {
	Address      common.Address
	Topic0       []common.Hash
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// FetchLogs pulls the router's logs in batches and hands each batch of
// normalized records to fn. A zero ToBlock means the latest block.
func (c *Client) FetchLogs(ctx context.Context, q LogQuery, logger *zap.Logger, fn func([]model.LogRecord) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if q.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	chainID, err := c.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	to := q.ToBlock
	if to == 0 {
		latest, err := c.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}
	if q.FromBlock > to {
		logger.Info("nothing to fetch", zap.Uint64("from", q.FromBlock), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(q.FromBlock, to, q.BatchSize)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var logs []types.Log
		retry := Retry{
			MaxRetries: q.MaxRetries,
			Backoff:    q.RetryBackoff,
			Logger:     logger.With(zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To)),
		}
		err := retry.Do(ctx, "filter_logs", func(ctx context.Context) error {
			var err error
			logs, err = c.FilterLogs(ctx, blockRange.From, blockRange.To, []common.Address{q.Address}, q.Topic0)
			return err
		})
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		records := make([]model.LogRecord, 0, len(logs))
		for _, log := range logs {
			id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			records = append(records, buildLogRecord(chainID, log))
		}
		if err := fn(records); err != nil {
			return err
		}
		logger.Info("batch fetched", zap.Int("logs", len(records)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}
	return nil
}

func buildLogRecord(chainID uint64, log types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
	}
}
