package model

// TypedEvent is a journal record decoded back into its notification.
type TypedEvent struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	LogIndex    uint64 `json:"log_index"`
	Address     string `json:"address"`
	EventName   string `json:"event_name"`
	Decoded     Event  `json:"decoded"`
}
