package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSpec  = "tween/spec/v1"
	DomainTrace = "tween/trace/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes the content address of a tween definition.
// The name is excluded: two definitions that tween identically share a hash.
func SpecHash(s TweenSpec) (string, error) {
	obj := map[string]any{
		"from":       s.From,
		"to":         s.To,
		"duration":   int64(s.Duration),
		"refresh":    int64(s.Refresh),
		"easing":     s.Easing,
		"ir_version": IRVersion,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// TraceHash computes a digest over an ordered sample sequence.
// Equal digests mean the same values were delivered at the same ticks.
func TraceHash(samples []Sample) (string, error) {
	list := make([]any, len(samples))
	for i, s := range samples {
		list[i] = map[string]any{
			"tick":    int64(s.Tick),
			"elapsed": int64(s.Elapsed),
			"values":  s.Values,
			"final":   s.Final,
		}
	}

	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustSpecHash is like SpecHash but panics on error.
func MustSpecHash(s TweenSpec) string {
	h, err := SpecHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
