// Package ray provides the in-memory index behind lazy message retrieval.
//
// A Memory ray keeps one roaring bitmap of every message number plus one
// posting bitmap per (attribute, canonical value) pair. Matcher terms jump
// straight to their next match with Rank/Select instead of scanning, so a
// traversal pays per match found, not per message stored.
//
// Message numbers are limited to the 32-bit range [0, 2^32-1]; Add rejects
// anything else.
package ray
