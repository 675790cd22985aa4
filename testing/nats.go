package testing

import (
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var bucketSeq atomic.Int64

// EmbeddedNATS is an in-process JetStream server with one connected client.
//
// The client reconnects forever, so a test can Shutdown and Restart the
// server to simulate a progress store outage without rebuilding stores.
type EmbeddedNATS struct {
	Server    *server.Server
	Conn      *nats.Conn
	JetStream jetstream.JetStream

	t    *testing.T
	opts *server.Options
}

// StartEmbeddedNATS starts a JetStream-enabled server on a random port.
//
// File-backed streams live under t.TempDir(), so data written before a Restart
// is still there afterwards. Server and client are shut down on test cleanup.
//
// Parameters:
//   - t: Testing context for failures and cleanup
//
// Returns:
//   - *EmbeddedNATS: Running server with connected client
//
// Example:
//
//	func TestKVStore(t *testing.T) {
//	    srv := slogtest.StartEmbeddedNATS(t)
//	    store, err := kvstore.Open(t.Context(), srv.JetStream, "")
//	}
func StartEmbeddedNATS(t *testing.T) *EmbeddedNATS {
	t.Helper()

	e := &EmbeddedNATS{
		t: t,
		opts: &server.Options{
			Host:      "127.0.0.1",
			Port:      -1,
			JetStream: true,
			StoreDir:  t.TempDir(),
			NoLog:     true,
		},
	}
	e.Server = e.startServer()

	// Pin the port so Restart comes back where the client reconnects to.
	if addr, ok := e.Server.Addr().(*net.TCPAddr); ok {
		e.opts.Port = addr.Port
	}

	nc, err := nats.Connect(e.Server.ClientURL(),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(50*time.Millisecond),
	)
	if err != nil {
		e.Server.Shutdown()
		t.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}
	e.Conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("Failed to create JetStream context: %v", err)
	}
	e.JetStream = js

	// Executed in reverse registration order
	t.Cleanup(func() {
		nc.Close()
		e.Shutdown()
	})

	return e
}

// Shutdown stops the server and waits for it. Safe to call more than once.
func (e *EmbeddedNATS) Shutdown() {
	e.Server.Shutdown()
	e.Server.WaitForShutdown()
}

// Restart brings a stopped server back on the same port and store directory
// and waits until the client has reconnected.
func (e *EmbeddedNATS) Restart() {
	e.t.Helper()

	e.Shutdown()
	e.Server = e.startServer()

	deadline := time.Now().Add(10 * time.Second)
	for !e.Conn.IsConnected() {
		if time.Now().After(deadline) {
			e.t.Fatal("NATS client did not reconnect after restart")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// KV creates a file-backed, single-revision KV bucket matching the layout of
// the progress store. An empty name picks a unique one.
//
// Parameters:
//   - bucket: Bucket name, or "" for a generated one
//
// Returns:
//   - jetstream.KeyValue: The created bucket
func (e *EmbeddedNATS) KV(bucket string) jetstream.KeyValue {
	e.t.Helper()

	if bucket == "" {
		bucket = fmt.Sprintf("progress-test-%d", bucketSeq.Add(1))
	}

	kv, err := e.JetStream.CreateKeyValue(e.t.Context(), jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "test progress bucket",
		History:     1,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		e.t.Fatalf("Failed to create KV bucket %s: %v", bucket, err)
	}

	return kv
}

func (e *EmbeddedNATS) startServer() *server.Server {
	e.t.Helper()

	ns, err := server.NewServer(e.opts)
	if err != nil {
		e.t.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		e.t.Fatal("Embedded NATS server not ready within timeout")
	}

	return ns
}
