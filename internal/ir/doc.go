// Package ir provides the value types shared by every boutinf package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Message numbers are int64 and unique across the whole system
//   - Attribute values are sealed IRValue types, never floats
//   - Attribute values compare by their canonical JSON encoding (AttrKey)
package ir
