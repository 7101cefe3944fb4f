package config

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/streamweave/streamweave/pkg/errors"
)

// Soft defaults fill in only when the user supplied nothing for the key, at
// any prefix level. Forced overrides always win; a conflicting user value is
// discarded with a warning.

func consumerSoftDefaults() map[string]interface{} {
	return map[string]interface{}{
		MaxPollRecords:  "1000",
		AutoOffsetReset: "earliest",
	}
}

func producerSoftDefaults(guarantee string) map[string]interface{} {
	defaults := map[string]interface{}{
		LingerMs: "100",
	}
	if guarantee == ExactlyOnce {
		defaults[DeliveryTimeoutMs] = math.MaxInt32
	}
	return defaults
}

// consumerForced returns the keys every consumer role must carry regardless
// of user input. Offsets are committed by the application itself, so client
// auto-commit stays off, and consumers stay in their group across bounces.
func consumerForced(guarantee string) map[string]interface{} {
	forced := map[string]interface{}{
		EnableAutoCommit:          "false",
		InternalLeaveGroupOnClose: false,
	}
	if guarantee == ExactlyOnce {
		forced[IsolationLevel] = ReadCommitted
	}
	return forced
}

func producerForced(guarantee string) map[string]interface{} {
	if guarantee != ExactlyOnce {
		return nil
	}
	return map[string]interface{}{
		EnableIdempotence: true,
	}
}

// applySoftDefaults fills absent keys only.
func applySoftDefaults(props, defaults map[string]interface{}) {
	for key, value := range defaults {
		if _, ok := props[key]; !ok {
			props[key] = value
		}
	}
}

// applyForced overwrites unconditionally, warning when a user value is
// being discarded.
func applyForced(props, forced map[string]interface{}, role ClientRole, log *zap.Logger) {
	for key, value := range forced {
		if user, ok := props[key]; ok && fmt.Sprintf("%v", user) != fmt.Sprintf("%v", value) {
			log.Warn("unexpected user-specified client config will be ignored",
				zap.String("role", string(role)),
				zap.String("key", key),
				zap.Any("user_value", user),
				zap.Any("forced_value", value))
		}
		props[key] = value
	}
}

// checkProducerInFlight enforces the idempotence bound under exactly-once.
// The producer tolerates at most 5 in-flight requests per connection before
// broker-side sequencing can reorder batches.
func checkProducerInFlight(props map[string]interface{}, guarantee string) error {
	if guarantee != ExactlyOnce {
		return nil
	}
	raw, ok := props[MaxInFlightRequestsPerConnection]
	if !ok {
		return nil
	}
	inFlight, err := coerceInt32(MaxInFlightRequestsPerConnection, raw)
	if err != nil {
		return err
	}
	if inFlight > 5 {
		return errors.NewConfigError(MaxInFlightRequestsPerConnection, raw,
			"Can't exceed 5 when exactly-once processing is enabled")
	}
	return nil
}
