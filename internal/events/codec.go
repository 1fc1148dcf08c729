// Package events converts router notifications to and from EVM-style log
// records and fans them out to sinks.
package events

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"venueRouter/internal/model"
)

// Codec encodes notifications as log records and decodes them back.
type Codec struct {
	routerABI   abi.ABI
	topicToName map[string]string
}

func NewCodec() (*Codec, error) {
	parsed, err := RouterABI()
	if err != nil {
		return nil, err
	}
	topicToName := make(map[string]string, len(parsed.Events))
	for name, event := range parsed.Events {
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}
	return &Codec{routerABI: parsed, topicToName: topicToName}, nil
}

// Topic0 returns the signature hash of the named notification.
func (c *Codec) Topic0(name string) (common.Hash, bool) {
	event, ok := c.routerABI.Events[name]
	if !ok {
		return common.Hash{}, false
	}
	return event.ID, true
}

// Topics returns the signature hashes of every notification.
func (c *Codec) Topics() []common.Hash {
	topics := make([]common.Hash, 0, len(c.routerABI.Events))
	for _, event := range c.routerABI.Events {
		topics = append(topics, event.ID)
	}
	return topics
}

// CanDecode checks if the topic0 belongs to a router notification.
func (c *Codec) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := c.topicToName[strings.ToLower(topic0)]
	return ok
}

// Encode packs ev into a log record emitted by address.
func (c *Codec) Encode(chainID uint64, address common.Address, logIndex uint64, ev model.Event) (model.LogRecord, error) {
	if ev == nil {
		return model.LogRecord{}, fmt.Errorf("nil notification")
	}
	event, ok := c.routerABI.Events[ev.EventName()]
	if !ok {
		return model.LogRecord{}, fmt.Errorf("unsupported notification: %s", ev.EventName())
	}
	values, err := fieldValues(ev)
	if err != nil {
		return model.LogRecord{}, err
	}

	var (
		indexed [][]interface{}
		data    []interface{}
	)
	for _, arg := range event.Inputs {
		value, ok := values[arg.Name]
		if !ok {
			return model.LogRecord{}, fmt.Errorf("%s: missing field %s", event.Name, arg.Name)
		}
		if arg.Indexed {
			indexed = append(indexed, []interface{}{value})
		} else {
			data = append(data, value)
		}
	}

	topicSets, err := abi.MakeTopics(indexed...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("make topics: %w", err)
	}
	topics := make([]string, 0, len(topicSets)+1)
	topics = append(topics, event.ID.Hex())
	for _, set := range topicSets {
		topics = append(topics, set[0].Hex())
	}

	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("pack %s: %w", event.Name, err)
	}

	return model.LogRecord{
		ChainID:     chainID,
		BlockNumber: ev.EventBlock(),
		LogIndex:    logIndex,
		Address:     address.Hex(),
		EventName:   event.Name,
		Topics:      topics,
		Data:        hexutil.Encode(packed),
	}, nil
}

// Decode converts a log record into a TypedEvent.
func (c *Codec) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := c.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid router address: %s", log.Address)
	}
	event := c.routerABI.Events[name]

	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{}, len(event.Inputs))
	if err := abi.ParseTopicsIntoMap(fields, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	data, err := hexutil.Decode(log.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	if err := event.Inputs.NonIndexed().UnpackIntoMap(fields, data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", name, err)
	}

	decoded, err := buildEvent(name, fields, log.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &model.TypedEvent{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		EventName:   name,
		Decoded:     decoded,
	}, nil
}

// fieldValues maps ABI argument names to values accepted by the abi packer.
func fieldValues(ev model.Event) (map[string]interface{}, error) {
	switch e := ev.(type) {
	case model.VenueRegistered:
		return map[string]interface{}{
			"venueId": new(big.Int).SetUint64(e.VenueID),
			"target":  e.Target,
			"label":   [32]byte(e.Label),
		}, nil
	case model.VenuesBatchRegistered:
		return map[string]interface{}{
			"firstId": new(big.Int).SetUint64(e.FirstID),
			"count":   new(big.Int).SetUint64(e.Count),
		}, nil
	case model.VenueToggled:
		return map[string]interface{}{
			"venueId": new(big.Int).SetUint64(e.VenueID),
			"active":  e.Active,
		}, nil
	case model.VenueLabelUpdated:
		return map[string]interface{}{
			"venueId":  new(big.Int).SetUint64(e.VenueID),
			"oldLabel": [32]byte(e.OldLabel),
			"newLabel": [32]byte(e.NewLabel),
		}, nil
	case model.TradeRouted:
		return map[string]interface{}{
			"routeId":   e.RouteID,
			"user":      e.User,
			"venueId":   new(big.Int).SetUint64(e.VenueID),
			"amountIn":  toBig(e.AmountIn),
			"amountOut": toBig(e.AmountOut),
			"fee":       toBig(e.Fee),
		}, nil
	case model.RouteRecorded:
		return map[string]interface{}{
			"routeId":  e.RouteID,
			"sequence": new(big.Int).SetUint64(e.Sequence),
		}, nil
	case model.FeesSwept:
		return map[string]interface{}{
			"recipient": e.Recipient,
			"amount":    toBig(e.Amount),
		}, nil
	case model.PauseToggled:
		return map[string]interface{}{
			"paused": e.Paused,
			"by":     e.By,
		}, nil
	case model.FeeBpsUpdated:
		return map[string]interface{}{
			"oldBps": e.OldBps,
			"newBps": e.NewBps,
		}, nil
	case model.OwnershipTransferred:
		return map[string]interface{}{
			"previousOwner": e.PreviousOwner,
			"newOwner":      e.NewOwner,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported notification type %T", ev)
	}
}

func buildEvent(name string, fields map[string]interface{}, block uint64) (model.Event, error) {
	f := fieldReader{fields: fields}
	var ev model.Event
	switch name {
	case model.EventVenueRegistered:
		ev = model.VenueRegistered{VenueID: f.u64("venueId"), Target: f.addr("target"), Label: f.hash("label"), Block: block}
	case model.EventVenuesBatchRegistered:
		ev = model.VenuesBatchRegistered{FirstID: f.u64("firstId"), Count: f.u64("count"), Block: block}
	case model.EventVenueToggled:
		ev = model.VenueToggled{VenueID: f.u64("venueId"), Active: f.flag("active"), Block: block}
	case model.EventVenueLabelUpdated:
		ev = model.VenueLabelUpdated{VenueID: f.u64("venueId"), OldLabel: f.hash("oldLabel"), NewLabel: f.hash("newLabel"), Block: block}
	case model.EventTradeRouted:
		ev = model.TradeRouted{
			RouteID:   f.hash("routeId"),
			User:      f.addr("user"),
			VenueID:   f.u64("venueId"),
			AmountIn:  f.amount("amountIn"),
			AmountOut: f.amount("amountOut"),
			Fee:       f.amount("fee"),
			Block:     block,
		}
	case model.EventRouteRecorded:
		ev = model.RouteRecorded{RouteID: f.hash("routeId"), Sequence: f.u64("sequence"), Block: block}
	case model.EventFeesSwept:
		ev = model.FeesSwept{Recipient: f.addr("recipient"), Amount: f.amount("amount"), Block: block}
	case model.EventPauseToggled:
		ev = model.PauseToggled{Paused: f.flag("paused"), By: f.addr("by"), Block: block}
	case model.EventFeeBpsUpdated:
		ev = model.FeeBpsUpdated{OldBps: f.u16("oldBps"), NewBps: f.u16("newBps"), Block: block}
	case model.EventOwnershipTransferred:
		ev = model.OwnershipTransferred{PreviousOwner: f.addr("previousOwner"), NewOwner: f.addr("newOwner"), Block: block}
	default:
		return nil, fmt.Errorf("unsupported event name")
	}
	if f.err != nil {
		return nil, f.err
	}
	return ev, nil
}

// fieldReader extracts typed values from an unpacked argument map and keeps
// the first conversion error.
type fieldReader struct {
	fields map[string]interface{}
	err    error
}

func (r *fieldReader) fail(name string, value interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: unexpected type %T", name, value)
	}
}

func (r *fieldReader) bigInt(name string) *big.Int {
	value, ok := r.fields[name].(*big.Int)
	if !ok || value == nil {
		r.fail(name, r.fields[name])
		return new(big.Int)
	}
	return value
}

func (r *fieldReader) u64(name string) uint64 {
	value := r.bigInt(name)
	if !value.IsUint64() {
		if r.err == nil {
			r.err = fmt.Errorf("field %s: %s exceeds uint64", name, value)
		}
		return 0
	}
	return value.Uint64()
}

func (r *fieldReader) amount(name string) *uint256.Int {
	out, overflow := uint256.FromBig(r.bigInt(name))
	if overflow && r.err == nil {
		r.err = fmt.Errorf("field %s: exceeds 256 bits", name)
	}
	return out
}

func (r *fieldReader) u16(name string) uint16 {
	value, ok := r.fields[name].(uint16)
	if !ok {
		r.fail(name, r.fields[name])
	}
	return value
}

func (r *fieldReader) flag(name string) bool {
	value, ok := r.fields[name].(bool)
	if !ok {
		r.fail(name, r.fields[name])
	}
	return value
}

func (r *fieldReader) addr(name string) common.Address {
	value, ok := r.fields[name].(common.Address)
	if !ok {
		r.fail(name, r.fields[name])
	}
	return value
}

func (r *fieldReader) hash(name string) common.Hash {
	switch value := r.fields[name].(type) {
	case [32]byte:
		return common.Hash(value)
	case common.Hash:
		return value
	default:
		r.fail(name, value)
		return common.Hash{}
	}
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	out := make([]common.Hash, 0, indexedCount)
	for _, topic := range topics[1:] {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
