package events

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"venueRouter/internal/model"
)

var routerAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")

func TestCodecTradeRouted(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	user := common.HexToAddress("0x2222222222222222222222222222222222222222")
	routeID := crypto.Keccak256Hash([]byte("route"))
	ev := model.TradeRouted{
		RouteID:   routeID,
		User:      user,
		VenueID:   3,
		AmountIn:  uint256.NewInt(1_000_000),
		AmountOut: uint256.NewInt(999_000),
		Fee:       uint256.NewInt(1_000),
		Block:     77,
	}

	record, err := codec.Encode(56, routerAddr, 4, ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	signature := crypto.Keccak256Hash([]byte("TradeRouted(bytes32,address,uint256,uint256,uint256,uint256)"))
	if len(record.Topics) != 4 || record.Topics[0] != signature.Hex() {
		t.Fatalf("topics mismatch: %v", record.Topics)
	}
	if record.Topics[1] != routeID.Hex() {
		t.Fatalf("route id topic mismatch: %s", record.Topics[1])
	}
	if !strings.HasSuffix(strings.ToLower(record.Topics[2]), strings.ToLower(user.Hex()[2:])) {
		t.Fatalf("user topic mismatch: %s", record.Topics[2])
	}
	if record.Topics[3] != common.BigToHash(uint256.NewInt(3).ToBig()).Hex() {
		t.Fatalf("venue topic mismatch: %s", record.Topics[3])
	}
	// three uint256 words
	if len(record.Data) != 2+3*64 {
		t.Fatalf("data length mismatch: %d", len(record.Data))
	}
	if record.BlockNumber != 77 || record.ChainID != 56 || record.LogIndex != 4 || record.EventName != model.EventTradeRouted {
		t.Fatalf("record metadata mismatch: %+v", record)
	}

	decoded, err := codec.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := decoded.Decoded.(model.TradeRouted)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded.Decoded)
	}
	if got.RouteID != routeID || got.User != user || got.VenueID != 3 || got.Block != 77 {
		t.Fatalf("decoded fields mismatch: %+v", got)
	}
	if !got.AmountIn.Eq(ev.AmountIn) || !got.AmountOut.Eq(ev.AmountOut) || !got.Fee.Eq(ev.Fee) {
		t.Fatalf("decoded amounts mismatch: %+v", got)
	}
}

func TestCodecCoversEveryNotification(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	next := common.HexToAddress("0x3333333333333333333333333333333333333333")
	label := common.BytesToHash([]byte("primary"))

	notifications := []model.Event{
		model.VenueRegistered{VenueID: 1, Target: next, Label: label, Block: 5},
		model.VenuesBatchRegistered{FirstID: 2, Count: 3, Block: 5},
		model.VenueToggled{VenueID: 1, Active: true, Block: 6},
		model.VenueLabelUpdated{VenueID: 1, OldLabel: label, NewLabel: common.Hash{0x09}, Block: 6},
		model.RouteRecorded{RouteID: common.Hash{0x01}, Sequence: 9, Block: 7},
		model.FeesSwept{Recipient: owner, Amount: uint256.NewInt(500), Block: 8},
		model.PauseToggled{Paused: true, By: owner, Block: 9},
		model.FeeBpsUpdated{OldBps: 10, NewBps: 300, Block: 9},
		model.OwnershipTransferred{PreviousOwner: owner, NewOwner: next, Block: 10},
	}
	for i, ev := range notifications {
		record, err := codec.Encode(1, routerAddr, uint64(i), ev)
		if err != nil {
			t.Fatalf("encode %s: %v", ev.EventName(), err)
		}
		if !codec.CanDecode(record.Topics[0]) {
			t.Fatalf("%s: topic0 not recognised", ev.EventName())
		}
		decoded, err := codec.Decode(record)
		if err != nil {
			t.Fatalf("decode %s: %v", ev.EventName(), err)
		}
		if !reflect.DeepEqual(decoded.Decoded, ev) {
			t.Fatalf("%s mismatch: got %+v want %+v", ev.EventName(), decoded.Decoded, ev)
		}
	}
}

func TestCodecRejectsMalformedRecords(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	record, err := codec.Encode(1, routerAddr, 0, model.RouteRecorded{RouteID: common.Hash{0x01}, Sequence: 1, Block: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	missing := record
	missing.Topics = record.Topics[:1]
	if _, err := codec.Decode(missing); err == nil {
		t.Fatalf("expected topic count error")
	}

	unknown := record
	unknown.Topics = []string{common.Hash{0xff}.Hex(), record.Topics[1]}
	if codec.CanDecode(unknown.Topics[0]) {
		t.Fatalf("unknown topic0 should not decode")
	}
	if _, err := codec.Decode(unknown); err == nil {
		t.Fatalf("expected unsupported topic0 error")
	}

	truncated := record
	truncated.Data = "0x01"
	if _, err := codec.Decode(truncated); err == nil {
		t.Fatalf("expected unpack error")
	}
}
