// Package kafka turns resolved client property maps into sarama
// configurations and clients.
package kafka

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/streamweave/streamweave/pkg/config"
	"github.com/streamweave/streamweave/pkg/errors"
	"github.com/streamweave/streamweave/pkg/logger"
)

// BuildConsumerConfig maps a resolved consumer property map onto a sarama
// config. Keys the transport does not model are ignored; the resolver has
// already dropped anything the consumer cannot understand.
func BuildConsumerConfig(props map[string]interface{}) (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true

	if err := applyCommon(cfg, props); err != nil {
		return nil, err
	}

	if raw, ok := props[config.IsolationLevel]; ok {
		switch fmt.Sprintf("%v", raw) {
		case config.ReadCommitted:
			cfg.Consumer.IsolationLevel = sarama.ReadCommitted
		case config.ReadUncommitted:
			cfg.Consumer.IsolationLevel = sarama.ReadUncommitted
		default:
			return nil, errors.NewConfigError(config.IsolationLevel, raw,
				"String must be one of: read_committed, read_uncommitted")
		}
	}

	switch getString(props, config.AutoOffsetReset, "latest") {
	case "earliest":
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	case "latest":
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	default:
		return nil, errors.NewConfigError(config.AutoOffsetReset, props[config.AutoOffsetReset],
			"String must be one of: earliest, latest")
	}

	autoCommit, err := getBool(props, config.EnableAutoCommit, true)
	if err != nil {
		return nil, err
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = autoCommit

	if err := setDuration(props, "session.timeout.ms", &cfg.Consumer.Group.Session.Timeout); err != nil {
		return nil, err
	}
	if err := setDuration(props, "heartbeat.interval.ms", &cfg.Consumer.Group.Heartbeat.Interval); err != nil {
		return nil, err
	}
	if err := setDuration(props, "fetch.max.wait.ms", &cfg.Consumer.MaxWaitTime); err != nil {
		return nil, err
	}

	if raw, ok := props["fetch.min.bytes"]; ok {
		n, err := config.ParseIntValue("fetch.min.bytes", raw)
		if err != nil {
			return nil, err
		}
		cfg.Consumer.Fetch.Min = int32(n)
	}
	if raw, ok := props["max.partition.fetch.bytes"]; ok {
		n, err := config.ParseIntValue("max.partition.fetch.bytes", raw)
		if err != nil {
			return nil, err
		}
		cfg.Consumer.Fetch.Default = int32(n)
	}

	if raw, ok := props[config.GroupInstanceID]; ok {
		cfg.Consumer.Group.InstanceId = fmt.Sprintf("%v", raw)
	}

	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		balanceStrategy(getString(props, config.PartitionAssignmentStrategy, "")),
	}

	return cfg, nil
}

// BuildProducerConfig maps a resolved producer property map onto a sarama
// config.
func BuildProducerConfig(props map[string]interface{}) (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	if err := applyCommon(cfg, props); err != nil {
		return nil, err
	}

	switch getString(props, "acks", "all") {
	case "all", "-1":
		cfg.Producer.RequiredAcks = sarama.WaitForAll
	case "1":
		cfg.Producer.RequiredAcks = sarama.WaitForLocal
	case "0":
		cfg.Producer.RequiredAcks = sarama.NoResponse
	default:
		cfg.Producer.RequiredAcks = sarama.WaitForAll
	}

	switch getString(props, "compression.type", "none") {
	case "gzip":
		cfg.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		cfg.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		cfg.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		cfg.Producer.Compression = sarama.CompressionZSTD
	default:
		cfg.Producer.Compression = sarama.CompressionNone
	}

	if raw, ok := props[config.Retries]; ok {
		n, err := config.ParseIntValue(config.Retries, raw)
		if err != nil {
			return nil, err
		}
		cfg.Producer.Retry.Max = n
	}
	if err := setDuration(props, config.RetryBackoffMs, &cfg.Producer.Retry.Backoff); err != nil {
		return nil, err
	}
	if err := setDuration(props, config.LingerMs, &cfg.Producer.Flush.Frequency); err != nil {
		return nil, err
	}

	if raw, ok := props["batch.size"]; ok {
		n, err := config.ParseIntValue("batch.size", raw)
		if err != nil {
			return nil, err
		}
		cfg.Producer.Flush.Bytes = n
	}
	if raw, ok := props["max.request.size"]; ok {
		n, err := config.ParseIntValue("max.request.size", raw)
		if err != nil {
			return nil, err
		}
		cfg.Producer.MaxMessageBytes = n
	}

	idempotent, err := getBool(props, config.EnableIdempotence, false)
	if err != nil {
		return nil, err
	}
	if idempotent {
		cfg.Producer.Idempotent = true
		cfg.Net.MaxOpenRequests = 1
	} else if raw, ok := props[config.MaxInFlightRequestsPerConnection]; ok {
		n, err := config.ParseIntValue(config.MaxInFlightRequestsPerConnection, raw)
		if err != nil {
			return nil, err
		}
		cfg.Net.MaxOpenRequests = n
	}

	if raw, ok := props["transactional.id"]; ok {
		cfg.Producer.Transaction.ID = fmt.Sprintf("%v", raw)
		cfg.Producer.Idempotent = true
		cfg.Net.MaxOpenRequests = 1
	}
	if err := setDuration(props, "transaction.timeout.ms", &cfg.Producer.Transaction.Timeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BuildAdminConfig maps a resolved admin property map onto a sarama config.
func BuildAdminConfig(props map[string]interface{}) (*sarama.Config, error) {
	cfg := sarama.NewConfig()

	if err := applyCommon(cfg, props); err != nil {
		return nil, err
	}

	if raw, ok := props[config.Retries]; ok {
		n, err := config.ParseIntValue(config.Retries, raw)
		if err != nil {
			return nil, err
		}
		cfg.Admin.Retry.Max = n
		cfg.Metadata.Retry.Max = n
	}
	if err := setDuration(props, config.RetryBackoffMs, &cfg.Admin.Retry.Backoff); err != nil {
		return nil, err
	}
	if err := setDuration(props, "default.api.timeout.ms", &cfg.Admin.Timeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewClient dials the cluster named by bootstrap.servers in the resolved
// map, using the given sarama config.
func NewClient(props map[string]interface{}, cfg *sarama.Config) (sarama.Client, error) {
	brokers := bootstrapList(props)
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "no bootstrap.servers in resolved properties")
	}
	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Kafka client")
	}
	logger.Get().Info("connected to Kafka",
		zap.Strings("brokers", brokers),
		zap.String("client_id", cfg.ClientID))
	return client, nil
}

func applyCommon(cfg *sarama.Config, props map[string]interface{}) error {
	if id := getString(props, config.ClientIDConfig, ""); id != "" {
		cfg.ClientID = id
	}

	if err := setDuration(props, config.RequestTimeoutMs, &cfg.Net.ReadTimeout); err != nil {
		return err
	}
	if err := setDuration(props, config.RetryBackoffMs, &cfg.Metadata.Retry.Backoff); err != nil {
		return err
	}
	if err := setDuration(props, config.MetadataMaxAgeMs, &cfg.Metadata.RefreshFrequency); err != nil {
		return err
	}

	switch getString(props, config.SecurityProtocol, "PLAINTEXT") {
	case "SSL", "SASL_SSL":
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return nil
}

func bootstrapList(props map[string]interface{}) []string {
	switch v := props[config.BootstrapServers].(type) {
	case []string:
		return v
	case string:
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return nil
	}
}

func balanceStrategy(name string) sarama.BalanceStrategy {
	switch name {
	case "roundrobin":
		return sarama.NewBalanceStrategyRoundRobin()
	case "sticky":
		return sarama.NewBalanceStrategySticky()
	default:
		return sarama.NewBalanceStrategyRange()
	}
}

func getString(props map[string]interface{}, key, fallback string) string {
	if raw, ok := props[key]; ok {
		return fmt.Sprintf("%v", raw)
	}
	return fallback
}

func getBool(props map[string]interface{}, key string, fallback bool) (bool, error) {
	raw, ok := props[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, errors.NewConfigError(key, raw, "Expected value to be either true or false")
}

func setDuration(props map[string]interface{}, key string, out *time.Duration) error {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	ms, err := config.ParseInt64Value(key, raw)
	if err != nil {
		return err
	}
	*out = time.Duration(ms) * time.Millisecond
	return nil
}
