package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/streamweave/streamweave/pkg/errors"
	"github.com/streamweave/streamweave/pkg/logger"
	"github.com/streamweave/streamweave/pkg/metrics"
	"github.com/streamweave/streamweave/pkg/serde"
)

// StreamsConfig resolves one flat property set into validated configurations
// for the five clients a streams application runs: the main consumer, the
// restore consumer, the global consumer, the producer, and the admin client.
//
// Construction validates every schema-known key and fails fast. The resolved
// per-role maps are computed on demand; each call returns a fresh map the
// caller owns. Serde and extractor instantiation is deferred until first
// access and memoized, success or failure alike.
type StreamsConfig struct {
	raw       map[string]interface{}
	parsed    map[string]interface{}
	guarantee string
	log       *zap.Logger

	mu            sync.Mutex
	keySerde      serde.Serde
	keySerdeErr   error
	keySerdeSet  bool
	valueSerde    serde.Serde
	valueSerdeErr error
	valueSerdeSet bool
	extractor     serde.TimestampExtractor
	extractorErr  error
	extractorSet  bool
}

// NewStreamsConfig validates props against the streams schema and returns a
// config ready to resolve per-client maps. Keys unknown to every schema are
// retained and forwarded; keys known to the schema are coerced and validated
// here, never lazily.
func NewStreamsConfig(props map[string]interface{}) (*StreamsConfig, error) {
	raw := make(map[string]interface{}, len(props))
	for k, v := range props {
		raw[k] = v
	}

	parsed, err := streamsSchema.Parse(raw)
	if err != nil {
		metrics.RecordConfigError("schema")
		return nil, err
	}

	guarantee := parsed[ProcessingGuarantee].(string)

	// The commit cadence tightens under exactly-once, but only when the
	// user has not chosen one explicitly.
	if _, set := raw[CommitIntervalMs]; !set && guarantee == ExactlyOnce {
		parsed[CommitIntervalMs] = int64(100)
	}

	log := logger.Get().With(zap.String("component", "streams-config"))

	if _, set := raw[PartitionGrouper]; set {
		log.Warn("deprecated config will be removed in a future release",
			zap.String("key", PartitionGrouper))
	}

	return &StreamsConfig{
		raw:       raw,
		parsed:    parsed,
		guarantee: guarantee,
		log:       log,
	}, nil
}

// Guarantee returns the validated processing guarantee.
func (c *StreamsConfig) Guarantee() string { return c.guarantee }

// EosEnabled reports whether exactly-once processing is active.
func (c *StreamsConfig) EosEnabled() bool { return c.guarantee == ExactlyOnce }

// Typed getters over the parsed view. Each panics if the key is not defined
// with the matching type in the schema; misuse is a programming error, not
// input error.

// GetString returns the parsed string value for key.
func (c *StreamsConfig) GetString(key string) string {
	v := c.parsedValue(key)
	if v == nil {
		return ""
	}
	return v.(string)
}

// GetInt returns the parsed 32-bit integer value for key.
func (c *StreamsConfig) GetInt(key string) int {
	return c.parsedValue(key).(int)
}

// GetInt64 returns the parsed 64-bit integer value for key.
func (c *StreamsConfig) GetInt64(key string) int64 {
	return c.parsedValue(key).(int64)
}

// GetBool returns the parsed boolean value for key.
func (c *StreamsConfig) GetBool(key string) bool {
	return c.parsedValue(key).(bool)
}

// GetList returns the parsed list value for key.
func (c *StreamsConfig) GetList(key string) []string {
	v := c.parsedValue(key)
	if v == nil {
		return nil
	}
	return v.([]string)
}

// GetClass returns the registered factory name stored under key.
func (c *StreamsConfig) GetClass(key string) string {
	return c.GetString(key)
}

// IsSet reports whether the user explicitly supplied key, as opposed to the
// schema default filling in.
func (c *StreamsConfig) IsSet(key string) bool {
	_, ok := c.raw[key]
	return ok
}

func (c *StreamsConfig) parsedValue(key string) interface{} {
	v, ok := c.parsed[key]
	if !ok {
		panic(fmt.Sprintf("config key %q is not defined in the schema", key))
	}
	return v
}

// MainConsumerConfigs resolves the configuration for the main processing
// consumer of one stream thread. Beyond the layered property resolution it
// carries the coordination payload the partition assignor needs: replication
// factor, standby count, application server endpoint, changelog retention
// padding, and any topic or admin overrides, forwarded with their prefix
// intact.
func (c *StreamsConfig) MainConsumerConfigs(groupID, clientID string, threadIdx int) map[string]interface{} {
	props := resolveClientProps(c.raw, MainConsumerRole)

	applySoftDefaults(props, consumerSoftDefaults())
	applyForced(props, consumerForced(c.guarantee), MainConsumerRole, c.log)

	props[GroupID] = groupID
	props[ClientIDConfig] = clientID
	if instanceID, ok := props[GroupInstanceID]; ok {
		props[GroupInstanceID] = fmt.Sprintf("%v-%d", instanceID, threadIdx)
	}

	props[ReplicationFactor] = c.GetInt(ReplicationFactor)
	props[NumStandbyReplicas] = c.GetInt(NumStandbyReplicas)
	props[ApplicationServer] = c.GetString(ApplicationServer)
	props[WindowStoreChangeLogAdditionalRetentionMs] = c.GetInt64(WindowStoreChangeLogAdditionalRetentionMs)
	if c.IsSet(UpgradeFrom) {
		props[UpgradeFrom] = c.GetString(UpgradeFrom)
	}
	props[PartitionAssignmentStrategy] = StreamsPartitionAssignorName

	// Internal topic and admin overrides travel inside the assignor
	// payload, prefix and all, so the group leader can create internal
	// topics with them.
	for key, value := range c.raw {
		if strings.HasPrefix(key, TopicPrefix) || strings.HasPrefix(key, AdminClientPrefix) {
			props[key] = value
		}
	}

	metrics.RecordResolution(string(MainConsumerRole))
	return props
}

// RestoreConsumerConfigs resolves the configuration for the consumer that
// replays changelog topics into local state stores. Restoration does not
// participate in group management, so no group id is set.
func (c *StreamsConfig) RestoreConsumerConfigs(clientID string) map[string]interface{} {
	props := c.internalConsumerConfigs(RestoreConsumerRole, clientID+"-restore-consumer")
	metrics.RecordResolution(string(RestoreConsumerRole))
	return props
}

// GlobalConsumerConfigs resolves the configuration for the consumer that
// maintains global table state. Like restoration it runs outside any
// consumer group.
func (c *StreamsConfig) GlobalConsumerConfigs(clientID string) map[string]interface{} {
	props := c.internalConsumerConfigs(GlobalConsumerRole, clientID+"-global-consumer")
	metrics.RecordResolution(string(GlobalConsumerRole))
	return props
}

func (c *StreamsConfig) internalConsumerConfigs(role ClientRole, clientID string) map[string]interface{} {
	props := resolveClientProps(c.raw, role)

	applySoftDefaults(props, consumerSoftDefaults())
	applyForced(props, consumerForced(c.guarantee), role, c.log)

	delete(props, GroupID)
	delete(props, GroupInstanceID)
	props[ClientIDConfig] = clientID
	return props
}

// ProducerConfigs resolves the producer configuration. Under exactly-once
// the in-flight request bound is checked here rather than at construction,
// matching where the value takes effect.
func (c *StreamsConfig) ProducerConfigs(clientID string) (map[string]interface{}, error) {
	props := resolveClientProps(c.raw, ProducerRole)

	if err := checkProducerInFlight(props, c.guarantee); err != nil {
		metrics.RecordConfigError("producer")
		return nil, err
	}

	applySoftDefaults(props, producerSoftDefaults(c.guarantee))
	applyForced(props, producerForced(c.guarantee), ProducerRole, c.log)

	props[ClientIDConfig] = clientID

	metrics.RecordResolution(string(ProducerRole))
	return props, nil
}

// AdminConfigs resolves the admin client configuration. Top-level retries
// and retry.backoff.ms fall through to the admin client when the user set
// them explicitly and no admin-prefixed override exists; schema defaults do
// not leak.
func (c *StreamsConfig) AdminConfigs(clientID string) map[string]interface{} {
	props := resolveClientProps(c.raw, AdminRole)

	if _, overridden := c.raw[AdminClientProp(Retries)]; !overridden && c.IsSet(Retries) {
		props[Retries] = c.GetInt(Retries)
	}
	if _, overridden := c.raw[AdminClientProp(RetryBackoffMs)]; !overridden && c.IsSet(RetryBackoffMs) {
		props[RetryBackoffMs] = c.GetInt64(RetryBackoffMs)
	}

	props[ClientIDConfig] = clientID

	metrics.RecordResolution(string(AdminRole))
	return props
}

// DefaultKeySerde instantiates and configures the default key serde on
// first call; the result, error included, is memoized.
func (c *StreamsConfig) DefaultKeySerde() (serde.Serde, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.keySerdeSet {
		c.keySerde, c.keySerdeErr = serde.InstantiateSerde(
			c.GetClass(DefaultKeySerde), serde.KeySerdeRole, c.serdeProps())
		c.keySerdeSet = true
	}
	return c.keySerde, c.keySerdeErr
}

// DefaultValueSerde instantiates and configures the default value serde on
// first call; the result, error included, is memoized.
func (c *StreamsConfig) DefaultValueSerde() (serde.Serde, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valueSerdeSet {
		c.valueSerde, c.valueSerdeErr = serde.InstantiateSerde(
			c.GetClass(DefaultValueSerde), serde.ValueSerdeRole, c.serdeProps())
		c.valueSerdeSet = true
	}
	return c.valueSerde, c.valueSerdeErr
}

// DefaultTimestampExtractor instantiates the default timestamp extractor on
// first call; the result, error included, is memoized.
func (c *StreamsConfig) DefaultTimestampExtractor() (serde.TimestampExtractor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.extractorSet {
		c.extractor, c.extractorErr = serde.InstantiateExtractor(
			c.GetClass(DefaultTimestampExtractor), c.serdeProps())
		c.extractorSet = true
	}
	return c.extractor, c.extractorErr
}

// serdeProps is the property view handed to Configure: the parsed streams
// values overlaid with the raw opaque entries, so custom keys like encoding
// selectors reach the serde untouched.
func (c *StreamsConfig) serdeProps() map[string]interface{} {
	props := make(map[string]interface{}, len(c.parsed))
	for k, v := range c.parsed {
		props[k] = v
	}
	for k, v := range c.raw {
		if isCustomProp(k) {
			props[k] = v
		}
	}
	return props
}

// CommitIntervalMsValue returns the effective commit cadence, after the
// exactly-once tightening.
func (c *StreamsConfig) CommitIntervalMsValue() int64 {
	return c.GetInt64(CommitIntervalMs)
}

// BootstrapServersList returns the parsed broker list.
func (c *StreamsConfig) BootstrapServersList() []string {
	return c.GetList(BootstrapServers)
}

// ApplicationIDValue returns the validated application id.
func (c *StreamsConfig) ApplicationIDValue() string {
	return c.GetString(ApplicationID)
}

// ParseIntValue exposes the schema's 32-bit coercion for values that client
// builders pull back out of resolved maps.
func ParseIntValue(key string, raw interface{}) (int, error) {
	return coerceInt32(key, raw)
}

// ParseInt64Value coerces a resolved map value to int64 with the schema's
// error shape.
func ParseInt64Value(key string, raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errors.NewConfigError(key, raw, "String value could not be parsed as 64-bit integer")
		}
		return n, nil
	default:
		return 0, errors.NewConfigError(key, raw, "Expected value to be a 64-bit integer")
	}
}
