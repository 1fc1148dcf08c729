// Package chain reads the environment a router deployment runs in from an
// Ethereum JSON-RPC endpoint: chain id, block randomness, router logs and
// eth_call results for venues.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client

	mu     sync.RWMutex
	randao map[uint64]common.Hash
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	conn, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		rpc:    conn,
		eth:    ethclient.NewClient(conn),
		randao: make(map[uint64]common.Hash),
	}, nil
}

func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// ChainID returns the chain id. Ids above 2^64-1 are rejected.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("chain id does not fit in uint64: %s", id)
	}
	return id.Uint64(), nil
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// PrevRandao returns the beacon randomness of block number. Post-merge
// headers carry it in the mix digest field. Results are cached per block.
func (c *Client) PrevRandao(ctx context.Context, number uint64) (common.Hash, error) {
	c.mu.RLock()
	cached, ok := c.randao[number]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return common.Hash{}, fmt.Errorf("header %d: %w", number, err)
	}

	c.mu.Lock()
	c.randao[number] = header.MixDigest
	c.mu.Unlock()
	return header.MixDigest, nil
}

// FilterLogs returns the logs emitted by addresses in [from, to] whose first
// topic is one of topic0. An empty topic0 matches every log.
func (c *Client) FilterLogs(ctx context.Context, from, to uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.eth.FilterLogs(ctx, query)
}

// CallContract executes msg as an eth_call at blockNumber.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, blockNumber)
}
