package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamweave/streamweave/pkg/errors"
)

func baseProps() map[string]interface{} {
	return map[string]interface{}{
		ApplicationID:    "streams-config-test",
		BootstrapServers: "localhost:9092",
	}
}

func newConfig(t *testing.T, props map[string]interface{}) *StreamsConfig {
	t.Helper()
	cfg, err := NewStreamsConfig(props)
	require.NoError(t, err)
	return cfg
}

func TestNewStreamsConfigRequiresApplicationID(t *testing.T) {
	_, err := NewStreamsConfig(map[string]interface{}{
		BootstrapServers: "localhost:9092",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Missing required configuration "application.id"`)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewStreamsConfigRequiresBootstrapServers(t *testing.T) {
	_, err := NewStreamsConfig(map[string]interface{}{
		ApplicationID: "app",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Missing required configuration "bootstrap.servers"`)
}

func TestNegativeCommitIntervalRejected(t *testing.T) {
	props := baseProps()
	props[CommitIntervalMs] = -1
	_, err := NewStreamsConfig(props)
	require.Error(t, err)
	assert.Contains(t, err.Error(),
		"Invalid value -1 for configuration commit.interval.ms: Value must be at least 0")
}

func TestInvalidProcessingGuaranteeRejected(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = "at_most_once"
	_, err := NewStreamsConfig(props)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "String must be one of: at_least_once, exactly_once")
}

func TestDefaultsApplied(t *testing.T) {
	cfg := newConfig(t, baseProps())

	assert.Equal(t, AtLeastOnce, cfg.Guarantee())
	assert.False(t, cfg.EosEnabled())
	assert.Equal(t, int64(30000), cfg.CommitIntervalMsValue())
	assert.Equal(t, 1, cfg.GetInt(ReplicationFactor))
	assert.Equal(t, 0, cfg.GetInt(NumStandbyReplicas))
	assert.Equal(t, "bytearray", cfg.GetClass(DefaultKeySerde))
	assert.Equal(t, []string{"localhost:9092"}, cfg.BootstrapServersList())
	assert.Equal(t, "streams-config-test", cfg.ApplicationIDValue())
}

func TestBootstrapServersAcceptsList(t *testing.T) {
	props := baseProps()
	props[BootstrapServers] = []string{"a:9092", "b:9092"}
	cfg := newConfig(t, props)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.BootstrapServersList())
}

func TestStringValuesCoerced(t *testing.T) {
	props := baseProps()
	props[ReplicationFactor] = "3"
	props[CommitIntervalMs] = "5000"
	cfg := newConfig(t, props)
	assert.Equal(t, 3, cfg.GetInt(ReplicationFactor))
	assert.Equal(t, int64(5000), cfg.GetInt64(CommitIntervalMs))
}

func TestCommitIntervalTightensUnderEos(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	cfg := newConfig(t, props)
	assert.Equal(t, int64(100), cfg.CommitIntervalMsValue())
}

func TestExplicitCommitIntervalSurvivesEos(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	props[CommitIntervalMs] = 73
	cfg := newConfig(t, props)
	assert.Equal(t, int64(73), cfg.CommitIntervalMsValue())
}

func TestIsSetDistinguishesDefaults(t *testing.T) {
	props := baseProps()
	props[Retries] = 7
	cfg := newConfig(t, props)
	assert.True(t, cfg.IsSet(Retries))
	assert.False(t, cfg.IsSet(RetryBackoffMs))
}

// Precedence across the three layers for one key: the most specific prefix
// always wins, independent of map iteration order.

func TestMainConsumerPrefixWinsOverConsumerPrefix(t *testing.T) {
	props := baseProps()
	props[MaxPollRecords] = "5"
	props[ConsumerProp(MaxPollRecords)] = "10"
	props[MainConsumerProp(MaxPollRecords)] = "15"
	cfg := newConfig(t, props)

	main := cfg.MainConsumerConfigs("group", "client", 0)
	assert.Equal(t, "15", main[MaxPollRecords])
}

func TestConsumerPrefixWinsOverUnprefixed(t *testing.T) {
	props := baseProps()
	props[MaxPollRecords] = "5"
	props[ConsumerProp(MaxPollRecords)] = "10"
	cfg := newConfig(t, props)

	main := cfg.MainConsumerConfigs("group", "client", 0)
	assert.Equal(t, "10", main[MaxPollRecords])

	restore := cfg.RestoreConsumerConfigs("client")
	assert.Equal(t, "10", restore[MaxPollRecords])
}

func TestUnprefixedReachesAllFamilies(t *testing.T) {
	props := baseProps()
	props[RequestTimeoutMs] = "15000"
	cfg := newConfig(t, props)

	assert.Equal(t, "15000", cfg.MainConsumerConfigs("g", "c", 0)[RequestTimeoutMs])
	producer, err := cfg.ProducerConfigs("c")
	require.NoError(t, err)
	assert.Equal(t, "15000", producer[RequestTimeoutMs])
	assert.Equal(t, "15000", cfg.AdminConfigs("c")[RequestTimeoutMs])
}

func TestRolePrefixDoesNotLeakAcrossRoles(t *testing.T) {
	props := baseProps()
	props[MainConsumerProp(MaxPollRecords)] = "15"
	cfg := newConfig(t, props)

	restore := cfg.RestoreConsumerConfigs("client")
	assert.Equal(t, "1000", restore[MaxPollRecords])

	global := cfg.GlobalConsumerConfigs("client")
	assert.Equal(t, "1000", global[MaxPollRecords])
}

func TestStreamsKeysDoNotLeakIntoClientConfigs(t *testing.T) {
	cfg := newConfig(t, baseProps())

	main := cfg.MainConsumerConfigs("group", "client", 0)
	assert.NotContains(t, main, ApplicationID)
	assert.NotContains(t, main, ProcessingGuarantee)
	assert.NotContains(t, main, StateDir)
}

func TestTopLevelRetriesDoesNotLeakIntoConsumerConfigs(t *testing.T) {
	props := baseProps()
	props[Retries] = 10
	cfg := newConfig(t, props)

	main := cfg.MainConsumerConfigs("group", "client", 0)
	assert.NotContains(t, main, Retries)
	restore := cfg.RestoreConsumerConfigs("client")
	assert.NotContains(t, restore, Retries)
}

// Custom properties are opaque to every schema and forward to all roles.

func TestCustomPropertyForwardsToAllClients(t *testing.T) {
	props := baseProps()
	props["custom.property.host"] = "host0"
	cfg := newConfig(t, props)

	assert.Equal(t, "host0", cfg.MainConsumerConfigs("g", "c", 0)["custom.property.host"])
	assert.Equal(t, "host0", cfg.RestoreConsumerConfigs("c")["custom.property.host"])
	assert.Equal(t, "host0", cfg.GlobalConsumerConfigs("c")["custom.property.host"])
	producer, err := cfg.ProducerConfigs("c")
	require.NoError(t, err)
	assert.Equal(t, "host0", producer["custom.property.host"])
	assert.Equal(t, "host0", cfg.AdminConfigs("c")["custom.property.host"])
}

func TestPrefixedCustomPropertyOverridesUnprefixed(t *testing.T) {
	props := baseProps()
	props["custom.property.host"] = "host0"
	props[ConsumerProp("custom.property.host")] = "host1"
	props[ProducerProp("custom.property.host")] = "host2"
	props[AdminClientProp("custom.property.host")] = "host3"
	cfg := newConfig(t, props)

	assert.Equal(t, "host1", cfg.MainConsumerConfigs("g", "c", 0)["custom.property.host"])
	assert.Equal(t, "host1", cfg.RestoreConsumerConfigs("c")["custom.property.host"])
	producer, err := cfg.ProducerConfigs("c")
	require.NoError(t, err)
	assert.Equal(t, "host2", producer["custom.property.host"])
	assert.Equal(t, "host3", cfg.AdminConfigs("c")["custom.property.host"])
}

// Main consumer specifics.

func TestMainConsumerIdentity(t *testing.T) {
	cfg := newConfig(t, baseProps())
	main := cfg.MainConsumerConfigs("app-group", "app-client", 0)

	assert.Equal(t, "app-group", main[GroupID])
	assert.Equal(t, "app-client", main[ClientIDConfig])
}

func TestMainConsumerGroupInstanceIDSuffixed(t *testing.T) {
	props := baseProps()
	props[ConsumerProp(GroupInstanceID)] = "group-instance-id"
	cfg := newConfig(t, props)

	main := cfg.MainConsumerConfigs("g", "c", 1)
	assert.Equal(t, "group-instance-id-1", main[GroupInstanceID])
}

func TestMainConsumerCarriesAssignorSupplement(t *testing.T) {
	props := baseProps()
	props[ReplicationFactor] = 3
	props[NumStandbyReplicas] = 1
	props[ApplicationServer] = "host:8080"
	props[UpgradeFrom] = "2.3"
	cfg := newConfig(t, props)

	main := cfg.MainConsumerConfigs("g", "c", 0)
	assert.Equal(t, 3, main[ReplicationFactor])
	assert.Equal(t, 1, main[NumStandbyReplicas])
	assert.Equal(t, "host:8080", main[ApplicationServer])
	assert.Equal(t, int64(24*60*60*1000), main[WindowStoreChangeLogAdditionalRetentionMs])
	assert.Equal(t, "2.3", main[UpgradeFrom])
	assert.Equal(t, StreamsPartitionAssignorName, main[PartitionAssignmentStrategy])
}

func TestMainConsumerOmitsUpgradeFromWhenUnset(t *testing.T) {
	cfg := newConfig(t, baseProps())
	main := cfg.MainConsumerConfigs("g", "c", 0)
	assert.NotContains(t, main, UpgradeFrom)
}

func TestMainConsumerForwardsTopicAndAdminPrefixedRaw(t *testing.T) {
	props := baseProps()
	props[TopicProp("cleanup.policy")] = "compact"
	props[AdminClientProp(Retries)] = "5"
	cfg := newConfig(t, props)

	main := cfg.MainConsumerConfigs("g", "c", 0)
	assert.Equal(t, "compact", main[TopicProp("cleanup.policy")])
	assert.Equal(t, "5", main[AdminClientProp(Retries)])
}

func TestConsumerAutoCommitAlwaysForcedOff(t *testing.T) {
	props := baseProps()
	props[ConsumerProp(EnableAutoCommit)] = "true"
	cfg := newConfig(t, props)

	assert.Equal(t, "false", cfg.MainConsumerConfigs("g", "c", 0)[EnableAutoCommit])
	assert.Equal(t, "false", cfg.RestoreConsumerConfigs("c")[EnableAutoCommit])
	assert.Equal(t, "false", cfg.GlobalConsumerConfigs("c")[EnableAutoCommit])
}

func TestConsumersNeverLeaveGroupOnClose(t *testing.T) {
	cfg := newConfig(t, baseProps())
	assert.Equal(t, false, cfg.MainConsumerConfigs("g", "c", 0)[InternalLeaveGroupOnClose])
	assert.Equal(t, false, cfg.RestoreConsumerConfigs("c")[InternalLeaveGroupOnClose])
	assert.Equal(t, false, cfg.GlobalConsumerConfigs("c")[InternalLeaveGroupOnClose])
}

func TestConsumerSoftDefaults(t *testing.T) {
	cfg := newConfig(t, baseProps())
	main := cfg.MainConsumerConfigs("g", "c", 0)
	assert.Equal(t, "1000", main[MaxPollRecords])
	assert.Equal(t, "earliest", main[AutoOffsetReset])
}

func TestUserOverridesSoftDefaults(t *testing.T) {
	props := baseProps()
	props[ConsumerProp(AutoOffsetReset)] = "latest"
	cfg := newConfig(t, props)
	assert.Equal(t, "latest", cfg.MainConsumerConfigs("g", "c", 0)[AutoOffsetReset])
}

// Restore and global consumers.

func TestRestoreConsumerHasNoGroupID(t *testing.T) {
	props := baseProps()
	props[ConsumerProp(GroupInstanceID)] = "instance"
	cfg := newConfig(t, props)

	restore := cfg.RestoreConsumerConfigs("client")
	assert.NotContains(t, restore, GroupID)
	assert.NotContains(t, restore, GroupInstanceID)
	assert.Equal(t, "client-restore-consumer", restore[ClientIDConfig])
}

func TestGlobalConsumerHasNoGroupID(t *testing.T) {
	cfg := newConfig(t, baseProps())

	global := cfg.GlobalConsumerConfigs("client")
	assert.NotContains(t, global, GroupID)
	assert.Equal(t, "client-global-consumer", global[ClientIDConfig])
}

func TestRestoreConsumerHonorsRestorePrefix(t *testing.T) {
	props := baseProps()
	props[RestoreConsumerProp(MaxPollRecords)] = "42"
	cfg := newConfig(t, props)

	assert.Equal(t, "42", cfg.RestoreConsumerConfigs("c")[MaxPollRecords])
	assert.Equal(t, "1000", cfg.MainConsumerConfigs("g", "c", 0)[MaxPollRecords])
}

func TestGlobalConsumerHonorsGlobalPrefix(t *testing.T) {
	props := baseProps()
	props[GlobalConsumerProp(MaxPollRecords)] = "42"
	cfg := newConfig(t, props)

	assert.Equal(t, "42", cfg.GlobalConsumerConfigs("c")[MaxPollRecords])
	assert.Equal(t, "1000", cfg.RestoreConsumerConfigs("c")[MaxPollRecords])
}

// Exactly-once cascade.

func TestEosForcesConsumerIsolationLevel(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	props[ConsumerProp(IsolationLevel)] = ReadUncommitted
	cfg := newConfig(t, props)

	assert.Equal(t, ReadCommitted, cfg.MainConsumerConfigs("g", "c", 0)[IsolationLevel])
	assert.Equal(t, ReadCommitted, cfg.RestoreConsumerConfigs("c")[IsolationLevel])
	assert.Equal(t, ReadCommitted, cfg.GlobalConsumerConfigs("c")[IsolationLevel])
}

func TestAlosKeepsUserIsolationLevel(t *testing.T) {
	props := baseProps()
	props[ConsumerProp(IsolationLevel)] = ReadUncommitted
	cfg := newConfig(t, props)
	assert.Equal(t, ReadUncommitted, cfg.MainConsumerConfigs("g", "c", 0)[IsolationLevel])
}

func TestEosProducerDefaults(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	cfg := newConfig(t, props)

	producer, err := cfg.ProducerConfigs("client")
	require.NoError(t, err)
	assert.Equal(t, true, producer[EnableIdempotence])
	assert.Equal(t, math.MaxInt32, producer[DeliveryTimeoutMs])
	assert.Equal(t, "100", producer[LingerMs])
	assert.Equal(t, "client", producer[ClientIDConfig])
}

func TestEosForcesIdempotenceOverUserValue(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	props[ProducerProp(EnableIdempotence)] = "false"
	cfg := newConfig(t, props)

	producer, err := cfg.ProducerConfigs("client")
	require.NoError(t, err)
	assert.Equal(t, true, producer[EnableIdempotence])
}

func TestAlosProducerDefaults(t *testing.T) {
	cfg := newConfig(t, baseProps())
	producer, err := cfg.ProducerConfigs("client")
	require.NoError(t, err)
	assert.Equal(t, "100", producer[LingerMs])
	assert.NotContains(t, producer, EnableIdempotence)
	assert.NotContains(t, producer, DeliveryTimeoutMs)
}

func TestUserLingerOverridesDefault(t *testing.T) {
	props := baseProps()
	props[ProducerProp(LingerMs)] = "250"
	cfg := newConfig(t, props)
	producer, err := cfg.ProducerConfigs("client")
	require.NoError(t, err)
	assert.Equal(t, "250", producer[LingerMs])
}

func TestEosRejectsExcessiveInFlight(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	props[ProducerProp(MaxInFlightRequestsPerConnection)] = 7
	cfg := newConfig(t, props)

	_, err := cfg.ProducerConfigs("client")
	require.Error(t, err)
	assert.Contains(t, err.Error(),
		"Invalid value 7 for configuration max.in.flight.requests.per.connection: Can't exceed 5 when exactly-once processing is enabled")
}

func TestEosRejectsUnparsableInFlight(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	props[ProducerProp(MaxInFlightRequestsPerConnection)] = "not-a-number"
	cfg := newConfig(t, props)

	_, err := cfg.ProducerConfigs("client")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "String value could not be parsed as 32-bit integer")
}

func TestEosAcceptsInFlightAtBound(t *testing.T) {
	props := baseProps()
	props[ProcessingGuarantee] = ExactlyOnce
	props[ProducerProp(MaxInFlightRequestsPerConnection)] = "5"
	cfg := newConfig(t, props)

	producer, err := cfg.ProducerConfigs("client")
	require.NoError(t, err)
	assert.Equal(t, "5", producer[MaxInFlightRequestsPerConnection])
}

func TestAlosAllowsAnyInFlight(t *testing.T) {
	props := baseProps()
	props[ProducerProp(MaxInFlightRequestsPerConnection)] = 7
	cfg := newConfig(t, props)

	producer, err := cfg.ProducerConfigs("client")
	require.NoError(t, err)
	assert.Equal(t, 7, producer[MaxInFlightRequestsPerConnection])
}

// Admin client.

func TestAdminRetriesFallsBackToExplicitTopLevel(t *testing.T) {
	props := baseProps()
	props[Retries] = "10"
	props[RetryBackoffMs] = "500"
	cfg := newConfig(t, props)

	admin := cfg.AdminConfigs("client")
	assert.Equal(t, 10, admin[Retries])
	assert.Equal(t, int64(500), admin[RetryBackoffMs])
	assert.Equal(t, "client", admin[ClientIDConfig])
}

func TestAdminPrefixedRetriesWins(t *testing.T) {
	props := baseProps()
	props[Retries] = "10"
	props[AdminClientProp(Retries)] = "5"
	cfg := newConfig(t, props)

	admin := cfg.AdminConfigs("client")
	assert.Equal(t, "5", admin[Retries])
}

func TestAdminDefaultsDoNotInjectRetries(t *testing.T) {
	cfg := newConfig(t, baseProps())
	admin := cfg.AdminConfigs("client")
	assert.NotContains(t, admin, Retries)
	assert.NotContains(t, admin, RetryBackoffMs)
}

// Resolved maps are independent snapshots.

func TestResolvedMapsAreIndependent(t *testing.T) {
	cfg := newConfig(t, baseProps())

	first := cfg.MainConsumerConfigs("g", "c", 0)
	first[MaxPollRecords] = "poisoned"
	delete(first, EnableAutoCommit)

	second := cfg.MainConsumerConfigs("g", "c", 0)
	assert.Equal(t, "1000", second[MaxPollRecords])
	assert.Equal(t, "false", second[EnableAutoCommit])
}

// Lazy serde and extractor access.

func TestDefaultSerdesInstantiate(t *testing.T) {
	props := baseProps()
	props[DefaultKeySerde] = "string"
	props[DefaultValueSerde] = "int64"
	cfg := newConfig(t, props)

	key, err := cfg.DefaultKeySerde()
	require.NoError(t, err)
	require.NotNil(t, key)

	value, err := cfg.DefaultValueSerde()
	require.NoError(t, err)
	require.NotNil(t, value)
}

func TestUnknownSerdeFailsAtAccessNotConstruction(t *testing.T) {
	props := baseProps()
	props[DefaultKeySerde] = "no-such-serde"
	cfg := newConfig(t, props)

	_, err := cfg.DefaultKeySerde()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to configure key serde")
	assert.Contains(t, err.Error(), "no-such-serde")
}

func TestSerdeErrorIsMemoized(t *testing.T) {
	props := baseProps()
	props[DefaultKeySerde] = "no-such-serde"
	cfg := newConfig(t, props)

	_, err1 := cfg.DefaultKeySerde()
	_, err2 := cfg.DefaultKeySerde()
	require.Error(t, err1)
	assert.Same(t, err1, err2)
}

func TestDefaultTimestampExtractorInstantiates(t *testing.T) {
	cfg := newConfig(t, baseProps())
	extractor, err := cfg.DefaultTimestampExtractor()
	require.NoError(t, err)
	require.NotNil(t, extractor)
}

func TestSerdeConfigureSeesCustomProps(t *testing.T) {
	props := baseProps()
	props[DefaultKeySerde] = "string"
	props["key.serializer.encoding"] = "UTF8"
	cfg := newConfig(t, props)

	_, err := cfg.DefaultKeySerde()
	require.NoError(t, err)
}

func TestSerdeConfigureRejectsUnsupportedEncoding(t *testing.T) {
	props := baseProps()
	props[DefaultKeySerde] = "string"
	props["key.serializer.encoding"] = "UTF-16"
	cfg := newConfig(t, props)

	_, err := cfg.DefaultKeySerde()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to configure key serde string")
}
