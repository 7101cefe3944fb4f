package serde

import (
	"time"

	"go.uber.org/zap"

	"github.com/streamweave/streamweave/pkg/errors"
	"github.com/streamweave/streamweave/pkg/logger"
)

// Record carries the fields a timestamp extractor may inspect.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Timestamp int64
	Key       []byte
	Value     []byte
}

// TimestampExtractor derives the event timestamp for a record.
// partitionTime is the highest timestamp observed so far on the record's
// partition, or -1 when unknown.
type TimestampExtractor interface {
	Extract(record Record, partitionTime int64) (int64, error)
}

// ConfigurableExtractor is implemented by extractors that need access to the
// resolved configuration before use.
type ConfigurableExtractor interface {
	Configure(props map[string]interface{}) error
}

// FailOnInvalidTimestamp rejects records whose embedded timestamp is
// negative. It is the default extractor.
type FailOnInvalidTimestamp struct{}

// Extract implements TimestampExtractor
func (FailOnInvalidTimestamp) Extract(record Record, _ int64) (int64, error) {
	if record.Timestamp < 0 {
		return -1, errors.Newf(errors.ErrorTypeInternal,
			"input record from topic %s partition %d offset %d has invalid (negative) timestamp %d",
			record.Topic, record.Partition, record.Offset, record.Timestamp)
	}
	return record.Timestamp, nil
}

// LogAndSkipOnInvalidTimestamp logs records with invalid timestamps and
// returns the invalid value so the caller can drop the record.
type LogAndSkipOnInvalidTimestamp struct{}

// Extract implements TimestampExtractor
func (LogAndSkipOnInvalidTimestamp) Extract(record Record, _ int64) (int64, error) {
	if record.Timestamp < 0 {
		logger.Warn("skipping record with invalid timestamp",
			zap.String("topic", record.Topic),
			zap.Int32("partition", record.Partition),
			zap.Int64("offset", record.Offset),
			zap.Int64("timestamp", record.Timestamp))
	}
	return record.Timestamp, nil
}

// WallclockTimestamp ignores the record entirely and stamps ingestion time.
type WallclockTimestamp struct{}

// Extract implements TimestampExtractor
func (WallclockTimestamp) Extract(Record, int64) (int64, error) {
	return time.Now().UnixMilli(), nil
}

// UsePartitionTimeOnInvalidTimestamp substitutes the partition time for
// records with invalid timestamps, failing only when no partition time is
// known yet.
type UsePartitionTimeOnInvalidTimestamp struct{}

// Extract implements TimestampExtractor
func (UsePartitionTimeOnInvalidTimestamp) Extract(record Record, partitionTime int64) (int64, error) {
	if record.Timestamp >= 0 {
		return record.Timestamp, nil
	}
	if partitionTime < 0 {
		return -1, errors.Newf(errors.ErrorTypeInternal,
			"could not infer timestamp for record from topic %s partition %d offset %d: partition time is unknown",
			record.Topic, record.Partition, record.Offset)
	}
	return partitionTime, nil
}
