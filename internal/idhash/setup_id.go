// Package idhash computes deterministic identifiers for runs and setups.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSetupID computes a deterministic setup ID using SHA256.
// Formula: SHA256(config_id|asset|ppi_time_ms)
// Returns hex-encoded hash (64 characters). At most one setup per asset
// exists at a given divergence time under one configuration, so the tuple
// is unique within a run.
func ComputeSetupID(configID, asset string, ppiTimeMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", configID, asset, ppiTimeMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeRunID computes a deterministic run ID from the configuration and
// the candle window it was run over.
// Formula: SHA256(config_id|target|reference|start_ms|end_ms)
func ComputeRunID(configID, targetSymbol, referenceSymbol string, startMs, endMs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d", configID, targetSymbol, referenceSymbol, startMs, endMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
