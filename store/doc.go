// Package store groups the progress store adapters.
//
// Every adapter implements types.ProgressStore and passes the shared contract in
// store/storetest:
//   - memory: in-process slice, with fault injection for tests
//   - filestore: one JSON document per record on local disk
//   - sqlstore: a SQLite "sheet" table, one row per append
//   - kvstore: documents in a NATS JetStream KV bucket
package store
