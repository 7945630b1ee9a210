// Package ir provides the value types shared by the tween engine and its tooling.
//
// This package contains type definitions, the ValueSet validation contract and
// canonical serialization. All other internal packages import ir; ir imports
// nothing internal.
//
// Key design constraints:
//   - ValueSets are flat: string keys to finite float64 values, nothing nested
//   - Durations are time.Duration; JSON tags carry nanosecond integers
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785 key order, NFC keys) is the only encoding used for
//     hashing and for values persisted by the trace store
package ir
