package storage

import "venueRouter/internal/model"

// Storage defines a sink for encoded notification records.
type Storage interface {
	PutLogBatch(logs []model.LogRecord) error
}
