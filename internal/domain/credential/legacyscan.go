package credential

import (
	"encoding/json"
	"sort"
)

// LegacyChecksum computes a 32-bit running hash over a canonicalized,
// sorted-key re-serialization of a credential document. It mirrors an
// older fleet generation's duplicate-detection scheme, kept here only as
// an advisory lookup aid for support tooling: it is never consulted by
// the registration engine and never gates a decision.
func LegacyChecksum(doc Document) uint32 {
	canonical := canonicalize(doc)
	var hash uint32 = 2166136261 // FNV-1a offset basis
	for i := 0; i < len(canonical); i++ {
		hash ^= uint32(canonical[i])
		hash *= 16777619
	}
	return hash
}

// canonicalize re-encodes a document with map keys sorted, so structurally
// identical credentials hash identically regardless of field order.
func canonicalize(v interface{}) []byte {
	out, err := json.Marshal(sortKeys(v))
	if err != nil {
		return nil
	}
	return out
}

func sortKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]interface{}, len(val))
		for _, k := range keys {
			ordered[k] = sortKeys(val[k])
		}
		return ordered
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = sortKeys(item)
		}
		return out
	default:
		return val
	}
}
