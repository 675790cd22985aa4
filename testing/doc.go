// Package testing provides test utilities for the SLOG-Eval module.
//
// This package offers helpers for setting up test environments, particularly
// an embedded NATS server for exercising the JetStream progress store, plus
// item fixtures shaped like the paired two-source datasets. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream, restartable
//   - EmbeddedNATS.KV: Progress-shaped KV bucket creation
//   - PairedItems: Deterministic two-provenance item sets
//   - NewTestLogger: Logger writing through testing.T and capturing entries
//
// Example usage:
//
//	import (
//	    "testing"
//	    slogtest "github.com/Debodeep94/SLOG-Eval/testing"
//	)
//
//	func TestMyStore(t *testing.T) {
//	    srv := slogtest.StartEmbeddedNATS(t)
//	    kv := srv.KV("")
//	}
package testing
