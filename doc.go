// Package streamweave resolves a single flat property set into validated,
// per-role client configurations for a distributed stream-processing client.
//
// A streams application drives five internal network clients from one
// user-supplied configuration: a main consumer, a restore consumer, a global
// consumer, a producer, and an admin client. Streamweave computes the final
// effective value of every setting for every role, layering global defaults,
// family prefixes (consumer./producer./admin.), role-specific prefixes
// (main.consumer., restore.consumer., global.consumer.), opaque custom
// properties, and the processing-guarantee cascade (at-least-once vs
// exactly-once).
//
// # Quick Start
//
//	import "github.com/streamweave/streamweave/pkg/config"
//
//	props := map[string]any{
//	    config.ApplicationID:       "orders-app",
//	    config.BootstrapServers:    "localhost:9092",
//	    config.ProcessingGuarantee: config.ExactlyOnce,
//	}
//	cfg, err := config.NewStreamsConfig(props)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	consumerProps := cfg.MainConsumerConfigs("orders-app", "client-1", 0)
//	producerProps, err := cfg.ProducerConfigs("client-1")
//
// The resolved maps use the external clients' own key names, so they can be
// handed directly to client constructors. pkg/clients/kafka translates them
// into sarama configurations.
//
// # Key Packages
//
//	pkg/config        - schema, prefix resolution, guarantee cascade, façade
//	pkg/serde         - pluggable serde and timestamp-extractor registry
//	pkg/clients/kafka - sarama config builders for the resolved maps
//	pkg/errors        - structured error handling
//	pkg/logger        - zap-based structured logging
//	pkg/metrics       - prometheus counters for resolution activity
package streamweave
