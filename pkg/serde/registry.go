package serde

import (
	"sync"

	"go.uber.org/zap"

	"github.com/streamweave/streamweave/pkg/errors"
	"github.com/streamweave/streamweave/pkg/logger"
	"github.com/streamweave/streamweave/pkg/metrics"
)

// Role identifies which pluggable slot an implementation is being
// instantiated for. The role shapes both the configuration hook invocation
// and the error reported on failure.
type Role string

const (
	// KeySerdeRole configures a serde for record keys
	KeySerdeRole Role = "key serde"
	// ValueSerdeRole configures a serde for record values
	ValueSerdeRole Role = "value serde"
	// TimestampExtractorRole configures a timestamp extractor
	TimestampExtractorRole Role = "timestamp extractor"
)

// SerdeFactory produces a fresh, unconfigured Serde instance.
type SerdeFactory func() Serde

// ExtractorFactory produces a fresh timestamp extractor instance.
type ExtractorFactory func() TimestampExtractor

// Registry maps implementation names to factories. A process normally uses
// the global registry, which is pre-populated with the built-in
// implementations; tests may create their own.
type Registry struct {
	serdes     map[string]SerdeFactory
	extractors map[string]ExtractorFactory
	mu         sync.RWMutex
	logger     *zap.Logger
}

var globalRegistry = newBuiltinRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		serdes:     make(map[string]SerdeFactory),
		extractors: make(map[string]ExtractorFactory),
		logger:     logger.Get().With(zap.String("component", "serde_registry")),
	}
}

func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.serdes["bytearray"] = func() Serde { return BytesSerde{} }
	r.serdes["string"] = func() Serde { return &StringSerde{} }
	r.serdes["int64"] = func() Serde { return Int64Serde{} }
	r.extractors["failoninvalid"] = func() TimestampExtractor { return FailOnInvalidTimestamp{} }
	r.extractors["logandskip"] = func() TimestampExtractor { return LogAndSkipOnInvalidTimestamp{} }
	r.extractors["wallclock"] = func() TimestampExtractor { return WallclockTimestamp{} }
	r.extractors["usepartitiontime"] = func() TimestampExtractor { return UsePartitionTimeOnInvalidTimestamp{} }
	return r
}

// RegisterSerde registers a serde factory under a name. Registering a name
// twice is a programming error and fails.
func (r *Registry) RegisterSerde(name string, factory SerdeFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.serdes[name]; exists {
		return errors.Newf(errors.ErrorTypeConflict, "serde %q already registered", name)
	}

	r.serdes[name] = factory
	r.logger.Info("serde registered", zap.String("name", name))
	return nil
}

// RegisterExtractor registers a timestamp-extractor factory under a name.
func (r *Registry) RegisterExtractor(name string, factory ExtractorFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.extractors[name]; exists {
		return errors.Newf(errors.ErrorTypeConflict, "timestamp extractor %q already registered", name)
	}

	r.extractors[name] = factory
	r.logger.Info("timestamp extractor registered", zap.String("name", name))
	return nil
}

// InstantiateSerde produces and configures the serde registered under name
// for the given role. props is the merged configuration handed to the
// Configure hook. Any lookup, construction, or configuration failure is
// reported as a single serde error naming the role and the implementation,
// wrapping the underlying cause.
func (r *Registry) InstantiateSerde(name string, role Role, props map[string]interface{}) (Serde, error) {
	r.mu.RLock()
	factory, exists := r.serdes[name]
	r.mu.RUnlock()

	if !exists {
		metrics.RecordSerdeInstantiation(string(role), "failure")
		return nil, errors.Newf(errors.ErrorTypeSerde, "failed to configure %s: unknown serde %q", role, name)
	}

	s := factory()
	if err := s.Configure(props, role == KeySerdeRole); err != nil {
		metrics.RecordSerdeInstantiation(string(role), "failure")
		return nil, errors.Wrap(err, errors.ErrorTypeSerde,
			"failed to configure "+string(role)+" "+name).
			WithDetail("serde", name).
			WithDetail("role", string(role))
	}

	metrics.RecordSerdeInstantiation(string(role), "success")
	return s, nil
}

// InstantiateExtractor produces and, when supported, configures the
// timestamp extractor registered under name.
func (r *Registry) InstantiateExtractor(name string, props map[string]interface{}) (TimestampExtractor, error) {
	r.mu.RLock()
	factory, exists := r.extractors[name]
	r.mu.RUnlock()

	if !exists {
		metrics.RecordSerdeInstantiation(string(TimestampExtractorRole), "failure")
		return nil, errors.Newf(errors.ErrorTypeSerde,
			"failed to configure %s: unknown extractor %q", TimestampExtractorRole, name)
	}

	e := factory()
	if c, ok := e.(ConfigurableExtractor); ok {
		if err := c.Configure(props); err != nil {
			metrics.RecordSerdeInstantiation(string(TimestampExtractorRole), "failure")
			return nil, errors.Wrap(err, errors.ErrorTypeSerde,
				"failed to configure "+string(TimestampExtractorRole)+" "+name).
				WithDetail("extractor", name)
		}
	}

	metrics.RecordSerdeInstantiation(string(TimestampExtractorRole), "success")
	return e, nil
}

// HasSerde reports whether a serde name is registered.
func (r *Registry) HasSerde(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.serdes[name]
	return exists
}

// HasExtractor reports whether an extractor name is registered.
func (r *Registry) HasExtractor(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.extractors[name]
	return exists
}

// Global registry functions

// RegisterSerde registers a serde factory in the global registry
func RegisterSerde(name string, factory SerdeFactory) error {
	return globalRegistry.RegisterSerde(name, factory)
}

// RegisterExtractor registers an extractor factory in the global registry
func RegisterExtractor(name string, factory ExtractorFactory) error {
	return globalRegistry.RegisterExtractor(name, factory)
}

// InstantiateSerde instantiates from the global registry
func InstantiateSerde(name string, role Role, props map[string]interface{}) (Serde, error) {
	return globalRegistry.InstantiateSerde(name, role, props)
}

// InstantiateExtractor instantiates from the global registry
func InstantiateExtractor(name string, props map[string]interface{}) (TimestampExtractor, error) {
	return globalRegistry.InstantiateExtractor(name, props)
}

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}
