package config

import "strings"

// Config prefixes. A prefixed entry overrides the equivalent unprefixed one
// for the clients the prefix names; the more specific prefix always wins.
const (
	// ConsumerPrefix applies to all three consumer roles
	ConsumerPrefix = "consumer."
	// MainConsumerPrefix applies to the main processing consumer only
	MainConsumerPrefix = "main.consumer."
	// RestoreConsumerPrefix applies to the state restore consumer only
	RestoreConsumerPrefix = "restore.consumer."
	// GlobalConsumerPrefix applies to the global table consumer only
	GlobalConsumerPrefix = "global.consumer."
	// ProducerPrefix applies to the producer
	ProducerPrefix = "producer."
	// AdminClientPrefix applies to the admin client
	AdminClientPrefix = "admin."
	// TopicPrefix applies to internal topic defaults
	TopicPrefix = "topic."
)

// ConsumerProp prefixes a client key so it applies to all consumer roles.
func ConsumerProp(key string) string { return ConsumerPrefix + key }

// MainConsumerProp prefixes a client key so it applies to the main consumer.
func MainConsumerProp(key string) string { return MainConsumerPrefix + key }

// RestoreConsumerProp prefixes a client key so it applies to the restore
// consumer.
func RestoreConsumerProp(key string) string { return RestoreConsumerPrefix + key }

// GlobalConsumerProp prefixes a client key so it applies to the global
// consumer.
func GlobalConsumerProp(key string) string { return GlobalConsumerPrefix + key }

// ProducerProp prefixes a client key so it applies to the producer.
func ProducerProp(key string) string { return ProducerPrefix + key }

// AdminClientProp prefixes a client key so it applies to the admin client.
func AdminClientProp(key string) string { return AdminClientPrefix + key }

// TopicProp prefixes a key so it applies as an internal topic default.
func TopicProp(key string) string { return TopicPrefix + key }

// ClientRole identifies one of the five resolved client configurations.
type ClientRole string

const (
	MainConsumerRole    ClientRole = "main-consumer"
	RestoreConsumerRole ClientRole = "restore-consumer"
	GlobalConsumerRole  ClientRole = "global-consumer"
	ProducerRole        ClientRole = "producer"
	AdminRole           ClientRole = "admin"
)

// clientFamily groups roles that share a family prefix and key set.
type clientFamily struct {
	prefix string
	known  map[string]bool
}

var (
	consumerFamily = clientFamily{prefix: ConsumerPrefix, known: consumerKeys}
	producerFamily = clientFamily{prefix: ProducerPrefix, known: producerKeys}
	adminFamily    = clientFamily{prefix: AdminClientPrefix, known: adminKeys}
)

func (r ClientRole) family() clientFamily {
	switch r {
	case ProducerRole:
		return producerFamily
	case AdminRole:
		return adminFamily
	default:
		return consumerFamily
	}
}

// rolePrefix is the role-specific override prefix, empty for roles that only
// have a family prefix.
func (r ClientRole) rolePrefix() string {
	switch r {
	case MainConsumerRole:
		return MainConsumerPrefix
	case RestoreConsumerRole:
		return RestoreConsumerPrefix
	case GlobalConsumerRole:
		return GlobalConsumerPrefix
	default:
		return ""
	}
}

// rolePrefixes are stripped when deciding whether an unprefixed key exists;
// a key carrying any of these is never treated as a bare client key.
var allPrefixes = []string{
	MainConsumerPrefix,
	RestoreConsumerPrefix,
	GlobalConsumerPrefix,
	ConsumerPrefix,
	ProducerPrefix,
	AdminClientPrefix,
	TopicPrefix,
}

func hasKnownPrefix(key string) bool {
	for _, p := range allPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// isCustomProp reports whether a key is opaque to every schema: not a
// streams key, not known to any client type, and not carrying a recognized
// prefix. Such keys are forwarded to every role untouched.
func isCustomProp(key string) bool {
	if hasKnownPrefix(key) {
		return false
	}
	if streamsSchema.Has(key) {
		return false
	}
	if consumerKeys[key] || producerKeys[key] || adminKeys[key] {
		return false
	}
	return true
}

// resolveClientProps computes the property map for one role from the raw
// user-supplied set. Layers apply in increasing precedence:
//
//	unprefixed keys known to the role's client type, plus custom keys
//	family-prefixed keys (consumer., producer., admin.)
//	role-prefixed keys (main.consumer., restore.consumer., global.consumer.)
//
// Family- and role-prefixed entries override blindly, then anything the
// target client does not recognize is dropped, custom keys excepted.
func resolveClientProps(raw map[string]interface{}, role ClientRole) map[string]interface{} {
	fam := role.family()
	out := make(map[string]interface{})

	for key, value := range raw {
		if hasKnownPrefix(key) {
			continue
		}
		if fam.known[key] || isCustomProp(key) {
			out[key] = value
		}
	}

	for key, value := range raw {
		if rest, ok := strippedByFamily(key, role); ok {
			out[rest] = value
		}
	}

	rp := role.rolePrefix()
	if rp != "" {
		for key, value := range raw {
			if strings.HasPrefix(key, rp) {
				out[strings.TrimPrefix(key, rp)] = value
			}
		}
	}

	for key := range out {
		if !fam.known[key] && !isCustomProp(key) {
			delete(out, key)
		}
	}
	return out
}

// strippedByFamily strips a family prefix from key when the prefix targets
// the given role. The consumer family prefix must not swallow role prefixes,
// which are longer and share the "consumer." suffix only in name.
func strippedByFamily(key string, role ClientRole) (string, bool) {
	fam := role.family()
	if fam.prefix == ConsumerPrefix {
		for _, rp := range []string{MainConsumerPrefix, RestoreConsumerPrefix, GlobalConsumerPrefix} {
			if strings.HasPrefix(key, rp) {
				return "", false
			}
		}
	}
	if strings.HasPrefix(key, fam.prefix) {
		return strings.TrimPrefix(key, fam.prefix), true
	}
	return "", false
}
