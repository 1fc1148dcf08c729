package model

// LogRecord is the normalized, ABI-encoded form of a notification. Records
// written by the local journal carry no transaction hash.
type LogRecord struct {
	ChainID     uint64   `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	TxHash      string   `json:"tx_hash,omitempty"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	EventName   string   `json:"event_name,omitempty"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed,omitempty"`
	RecordedAt  string   `json:"recorded_at,omitempty"`
}
