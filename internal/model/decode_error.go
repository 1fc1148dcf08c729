package model

// DecodeError records a decode failure for a journal line.
type DecodeError struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash,omitempty"`
	LogIndex    uint64 `json:"log_index"`
	Address     string `json:"address"`
	Topic0      string `json:"topic0"`
	Error       string `json:"error"`
}

// NewDecodeError describes a record that could not be decoded.
func NewDecodeError(record LogRecord, err error) DecodeError {
	out := DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Error:       err.Error(),
	}
	if len(record.Topics) > 0 {
		out.Topic0 = record.Topics[0]
	}
	return out
}
