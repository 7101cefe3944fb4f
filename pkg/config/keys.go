package config

import "math"

// Streams-level configuration keys. Key names are a compatibility-bearing
// surface: the resolved per-role maps are handed verbatim to external client
// constructors, so renaming a key breaks downstream clients.
const (
	// ApplicationID identifies the streams application; also the default
	// consumer group id. Required.
	ApplicationID = "application.id"
	// BootstrapServers lists the initial broker endpoints. Required.
	BootstrapServers = "bootstrap.servers"
	// ClientIDConfig is the base client id; per-role ids derive from it
	ClientIDConfig = "client.id"
	// ProcessingGuarantee selects at_least_once or exactly_once semantics
	ProcessingGuarantee = "processing.guarantee"
	// CommitIntervalMs is the commit cadence for processed offsets
	CommitIntervalMs = "commit.interval.ms"
	// PollMs is the block time waiting for input
	PollMs = "poll.ms"
	// NumStreamThreads is the number of processing threads
	NumStreamThreads = "num.stream.threads"
	// NumStandbyReplicas is the number of standby task replicas
	NumStandbyReplicas = "num.standby.replicas"
	// ReplicationFactor applies to internal changelog and repartition topics
	ReplicationFactor = "replication.factor"
	// StateDir is the local state directory
	StateDir = "state.dir"
	// CacheMaxBytesBuffering bounds record cache memory across threads
	CacheMaxBytesBuffering = "cache.max.bytes.buffering"
	// DefaultKeySerde names the default serde for record keys
	DefaultKeySerde = "default.key.serde"
	// DefaultValueSerde names the default serde for record values
	DefaultValueSerde = "default.value.serde"
	// DefaultTimestampExtractor names the default timestamp extractor
	DefaultTimestampExtractor = "default.timestamp.extractor"
	// ApplicationServer is the host:port for interactive queries
	ApplicationServer = "application.server"
	// BufferedRecordsPerPartition bounds buffered records per partition
	BufferedRecordsPerPartition = "buffered.records.per.partition"
	// BuiltInMetricsVersion selects the built-in metrics naming scheme
	BuiltInMetricsVersion = "built.in.metrics.version"
	// TopologyOptimization toggles topology optimization
	TopologyOptimization = "topology.optimization"
	// MaxTaskIdleMs is how long a task may stay idle awaiting data
	MaxTaskIdleMs = "max.task.idle.ms"
	// MetricsRecordingLevel is the highest recording level for metrics
	MetricsRecordingLevel = "metrics.recording.level"
	// MetricsNumSamples is the number of samples for metrics computation
	MetricsNumSamples = "metrics.num.samples"
	// MetricsSampleWindowMs is the metrics sample window
	MetricsSampleWindowMs = "metrics.sample.window.ms"
	// SendBufferBytes is the socket send buffer size (-1 = OS default)
	SendBufferBytes = "send.buffer.bytes"
	// ReceiveBufferBytes is the socket receive buffer size (-1 = OS default)
	ReceiveBufferBytes = "receive.buffer.bytes"
	// Retries bounds client retries for broker requests
	Retries = "retries"
	// RetryBackoffMs is the backoff between retries
	RetryBackoffMs = "retry.backoff.ms"
	// RequestTimeoutMs bounds time waiting for a request response
	RequestTimeoutMs = "request.timeout.ms"
	// ConnectionsMaxIdleMs closes idle connections after this time
	ConnectionsMaxIdleMs = "connections.max.idle.ms"
	// ReconnectBackoffMs is the base reconnect backoff
	ReconnectBackoffMs = "reconnect.backoff.ms"
	// ReconnectBackoffMaxMs is the reconnect backoff ceiling
	ReconnectBackoffMaxMs = "reconnect.backoff.max.ms"
	// MetadataMaxAgeMs forces a metadata refresh after this period
	MetadataMaxAgeMs = "metadata.max.age.ms"
	// StateCleanupDelayMs delays removal of unassigned task state
	StateCleanupDelayMs = "state.cleanup.delay.ms"
	// UpgradeFrom enables rolling-upgrade compatibility with older versions
	UpgradeFrom = "upgrade.from"
	// PartitionGrouper names the partition grouper. Deprecated.
	PartitionGrouper = "partition.grouper"
	// WindowStoreChangeLogAdditionalRetentionMs pads changelog retention to
	// tolerate clock drift
	WindowStoreChangeLogAdditionalRetentionMs = "windowstore.changelog.additional.retention.ms"
	// SecurityProtocol is the protocol used to talk to brokers
	SecurityProtocol = "security.protocol"
)

// Processing guarantee values
const (
	// AtLeastOnce is the default processing guarantee
	AtLeastOnce = "at_least_once"
	// ExactlyOnce enables transactional, exactly-once processing
	ExactlyOnce = "exactly_once"
)

// Built-in metrics version values
const (
	// MetricsVersion0100To24 selects the pre-2.5 metrics naming scheme
	MetricsVersion0100To24 = "0.10.0-2.4"
	// MetricsVersionLatest selects the current metrics naming scheme
	MetricsVersionLatest = "latest"
)

// Client-level keys that the resolver forces or supplements. These belong to
// the external client schemas, not the streams schema.
const (
	// GroupID is the consumer group id
	GroupID = "group.id"
	// GroupInstanceID is the static membership instance id
	GroupInstanceID = "group.instance.id"
	// EnableAutoCommit toggles consumer offset auto-commit
	EnableAutoCommit = "enable.auto.commit"
	// AutoOffsetReset selects where to start without committed offsets
	AutoOffsetReset = "auto.offset.reset"
	// IsolationLevel controls visibility of transactional records
	IsolationLevel = "isolation.level"
	// MaxPollRecords bounds records per consumer poll
	MaxPollRecords = "max.poll.records"
	// PartitionAssignmentStrategy names the consumer partition assignor
	PartitionAssignmentStrategy = "partition.assignment.strategy"
	// EnableIdempotence toggles the idempotent producer
	EnableIdempotence = "enable.idempotence"
	// MaxInFlightRequestsPerConnection bounds unacknowledged producer requests
	MaxInFlightRequestsPerConnection = "max.in.flight.requests.per.connection"
	// DeliveryTimeoutMs bounds total time to report send success or failure
	DeliveryTimeoutMs = "delivery.timeout.ms"
	// LingerMs is the producer batching delay
	LingerMs = "linger.ms"
	// InternalLeaveGroupOnClose keeps the main consumer in its group across
	// bounces; always forced off
	InternalLeaveGroupOnClose = "internal.leave.group.on.close"
	// ReadCommitted is the isolation level forced under exactly-once
	ReadCommitted = "read_committed"
	// ReadUncommitted is the default isolation level
	ReadUncommitted = "read_uncommitted"
)

// StreamsPartitionAssignorName is the assignor forced into the main
// consumer's partition.assignment.strategy.
const StreamsPartitionAssignorName = "streamweave-partition-assignor"

// streamsSchema is the process-wide schema table for streams-level keys,
// built once at init and never mutated.
var streamsSchema = buildStreamsSchema()

func buildStreamsSchema() *ConfigDef {
	return NewConfigDef().
		Define(ConfigEntry{Key: ApplicationID, Type: TypeString, Required: true, Validator: NonEmpty(), Importance: ImportanceHigh,
			Doc: "An identifier for the stream processing application. Must be unique within the cluster."}).
		Define(ConfigEntry{Key: BootstrapServers, Type: TypeList, Required: true, Importance: ImportanceHigh,
			Doc: "A list of host:port pairs used to establish the initial cluster connection."}).
		Define(ConfigEntry{Key: ReplicationFactor, Type: TypeInt, Default: 1, Importance: ImportanceHigh,
			Doc: "The replication factor for internal topics created by the application."}).
		Define(ConfigEntry{Key: StateDir, Type: TypeString, Default: "/tmp/streamweave", Importance: ImportanceHigh,
			Doc: "Directory for local state stores."}).
		Define(ConfigEntry{Key: CacheMaxBytesBuffering, Type: TypeLong, Default: int64(10 * 1024 * 1024), Validator: AtLeast(0), Importance: ImportanceMedium,
			Doc: "Maximum number of memory bytes used for record caches across all threads."}).
		Define(ConfigEntry{Key: ClientIDConfig, Type: TypeString, Default: "", Importance: ImportanceMedium,
			Doc: "An id prefix used for internal client ids."}).
		Define(ConfigEntry{Key: DefaultKeySerde, Type: TypeClass, Default: "bytearray", Importance: ImportanceMedium,
			Doc: "Default serde for record keys, by registered name."}).
		Define(ConfigEntry{Key: DefaultValueSerde, Type: TypeClass, Default: "bytearray", Importance: ImportanceMedium,
			Doc: "Default serde for record values, by registered name."}).
		Define(ConfigEntry{Key: DefaultTimestampExtractor, Type: TypeClass, Default: "failoninvalid", Importance: ImportanceMedium,
			Doc: "Default timestamp extractor, by registered name."}).
		Define(ConfigEntry{Key: NumStandbyReplicas, Type: TypeInt, Default: 0, Importance: ImportanceMedium,
			Doc: "Number of standby replicas per task."}).
		Define(ConfigEntry{Key: NumStreamThreads, Type: TypeInt, Default: 1, Importance: ImportanceMedium,
			Doc: "Number of threads executing stream processing."}).
		Define(ConfigEntry{Key: MaxTaskIdleMs, Type: TypeLong, Default: int64(0), Importance: ImportanceMedium,
			Doc: "Maximum time a task stays idle while some of its partitions lack data."}).
		Define(ConfigEntry{Key: ProcessingGuarantee, Type: TypeString, Default: AtLeastOnce, Validator: OneOf(AtLeastOnce, ExactlyOnce), Importance: ImportanceMedium,
			Doc: "The processing guarantee, either at_least_once or exactly_once."}).
		Define(ConfigEntry{Key: SecurityProtocol, Type: TypeString, Default: "PLAINTEXT", Importance: ImportanceMedium,
			Doc: "Protocol used to communicate with brokers."}).
		Define(ConfigEntry{Key: TopologyOptimization, Type: TypeString, Default: "none", Validator: OneOf("none", "all"), Importance: ImportanceMedium,
			Doc: "Whether the topology should be optimized."}).
		Define(ConfigEntry{Key: ApplicationServer, Type: TypeString, Default: "", Importance: ImportanceLow,
			Doc: "host:port pointing to an embedded endpoint for interactive queries."}).
		Define(ConfigEntry{Key: BufferedRecordsPerPartition, Type: TypeInt, Default: 1000, Importance: ImportanceLow,
			Doc: "Maximum number of records buffered per partition."}).
		Define(ConfigEntry{Key: BuiltInMetricsVersion, Type: TypeString, Default: MetricsVersionLatest, Validator: OneOf(MetricsVersion0100To24, MetricsVersionLatest), Importance: ImportanceLow,
			Doc: "Version of the built-in metrics to use."}).
		Define(ConfigEntry{Key: CommitIntervalMs, Type: TypeLong, Default: int64(30000), Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Frequency with which to commit processing progress."}).
		Define(ConfigEntry{Key: ConnectionsMaxIdleMs, Type: TypeLong, Default: int64(540000), Importance: ImportanceLow,
			Doc: "Close idle connections after this number of milliseconds."}).
		Define(ConfigEntry{Key: MetadataMaxAgeMs, Type: TypeLong, Default: int64(300000), Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Force a metadata refresh after this period."}).
		Define(ConfigEntry{Key: MetricsNumSamples, Type: TypeInt, Default: 2, Validator: AtLeast(1), Importance: ImportanceLow,
			Doc: "Number of samples maintained to compute metrics."}).
		Define(ConfigEntry{Key: MetricsRecordingLevel, Type: TypeString, Default: "INFO", Validator: OneOf("INFO", "DEBUG"), Importance: ImportanceLow,
			Doc: "Highest recording level for metrics."}).
		Define(ConfigEntry{Key: MetricsSampleWindowMs, Type: TypeLong, Default: int64(30000), Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Window of time a metrics sample is computed over."}).
		Define(ConfigEntry{Key: PartitionGrouper, Type: TypeClass, Default: "default", Importance: ImportanceLow, Deprecated: true,
			Doc: "Partition grouper, by registered name. Deprecated."}).
		Define(ConfigEntry{Key: PollMs, Type: TypeLong, Default: int64(100), Importance: ImportanceLow,
			Doc: "Time to block waiting for input."}).
		Define(ConfigEntry{Key: ReceiveBufferBytes, Type: TypeInt, Default: 32 * 1024, Validator: AtLeast(-1), Importance: ImportanceLow,
			Doc: "Size of the TCP receive buffer; -1 uses the OS default."}).
		Define(ConfigEntry{Key: ReconnectBackoffMs, Type: TypeLong, Default: int64(50), Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Base wait before attempting to reconnect to a host."}).
		Define(ConfigEntry{Key: ReconnectBackoffMaxMs, Type: TypeLong, Default: int64(1000), Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Maximum wait between reconnection attempts."}).
		Define(ConfigEntry{Key: Retries, Type: TypeInt, Default: 0, Validator: Between(0, math.MaxInt32), Importance: ImportanceLow,
			Doc: "Number of retries for broker requests that return a retryable error."}).
		Define(ConfigEntry{Key: RetryBackoffMs, Type: TypeLong, Default: int64(100), Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Wait before attempting to retry a failed request."}).
		Define(ConfigEntry{Key: RequestTimeoutMs, Type: TypeInt, Default: 40000, Validator: AtLeast(0), Importance: ImportanceLow,
			Doc: "Maximum time to wait for a request response."}).
		Define(ConfigEntry{Key: SendBufferBytes, Type: TypeInt, Default: 128 * 1024, Validator: AtLeast(-1), Importance: ImportanceLow,
			Doc: "Size of the TCP send buffer; -1 uses the OS default."}).
		Define(ConfigEntry{Key: StateCleanupDelayMs, Type: TypeLong, Default: int64(600000), Importance: ImportanceLow,
			Doc: "Delay before state of an unassigned task is cleaned up."}).
		Define(ConfigEntry{Key: UpgradeFrom, Type: TypeString, Default: nil, Importance: ImportanceLow,
			Doc: "Version being upgraded from, for rolling upgrades."}).
		Define(ConfigEntry{Key: WindowStoreChangeLogAdditionalRetentionMs, Type: TypeLong, Default: int64(24 * 60 * 60 * 1000), Importance: ImportanceLow,
			Doc: "Added to windows maintainMs to ensure data is not deleted from the changelog prematurely."})
}

// StreamsSchema returns the process-wide streams schema table.
func StreamsSchema() *ConfigDef {
	return streamsSchema
}

// Known key sets for the external client types. A key absent from the target
// client's set and from the streams schema is dropped from that role's
// resolved map unless it is an opaque custom property.

var commonClientKeys = []string{
	BootstrapServers,
	ClientIDConfig,
	SecurityProtocol,
	SendBufferBytes,
	ReceiveBufferBytes,
	RequestTimeoutMs,
	RetryBackoffMs,
	ReconnectBackoffMs,
	ReconnectBackoffMaxMs,
	ConnectionsMaxIdleMs,
	MetadataMaxAgeMs,
	MetricsNumSamples,
	MetricsRecordingLevel,
	MetricsSampleWindowMs,
}

var consumerKeys = keySet(append([]string{
	GroupID,
	GroupInstanceID,
	EnableAutoCommit,
	"auto.commit.interval.ms",
	AutoOffsetReset,
	IsolationLevel,
	MaxPollRecords,
	"max.poll.interval.ms",
	"session.timeout.ms",
	"heartbeat.interval.ms",
	"fetch.min.bytes",
	"fetch.max.bytes",
	"fetch.max.wait.ms",
	"max.partition.fetch.bytes",
	PartitionAssignmentStrategy,
	"check.crcs",
	"client.rack",
	"default.api.timeout.ms",
	"exclude.internal.topics",
	"allow.auto.create.topics",
	"key.deserializer",
	"value.deserializer",
}, commonClientKeys...))

var producerKeys = keySet(append([]string{
	"acks",
	"buffer.memory",
	"batch.size",
	LingerMs,
	Retries,
	EnableIdempotence,
	"transactional.id",
	"transaction.timeout.ms",
	MaxInFlightRequestsPerConnection,
	DeliveryTimeoutMs,
	"compression.type",
	"max.request.size",
	"max.block.ms",
	"partitioner.class",
	"key.serializer",
	"value.serializer",
}, commonClientKeys...))

var adminKeys = keySet(append([]string{
	Retries,
	"default.api.timeout.ms",
}, commonClientKeys...))

func keySet(keys []string) map[string]bool {
	s := make(map[string]bool, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}
