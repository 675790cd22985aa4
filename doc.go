// Package slogeval coordinates a two-phase human annotation study over paired
// radiology reports.
//
// Every annotator receives two disjoint pools derived deterministically from
// the item set and their user ID: a large quantitative pool (score each symptom)
// and a small qualitative pool (free-text feedback on a handful of cases seen
// under both report sources). The Coordinator answers "what should this user
// label now" purely from the completion records in a ProgressStore, so a
// restarted process, a second browser tab or a different host all resume at the
// same place.
//
// # Quick Start
//
//	import (
//	    "github.com/Debodeep94/SLOG-Eval"
//	    "github.com/Debodeep94/SLOG-Eval/source"
//	    "github.com/Debodeep94/SLOG-Eval/store/sqlstore"
//	)
//
//	cfg := slogeval.DefaultConfig()
//	src := source.NewCSV(
//	    source.CSVFile{Path: "reports_a.csv", Provenance: slogeval.ProvenanceSourceA},
//	    source.CSVFile{Path: "reports_b.csv", Provenance: slogeval.ProvenanceSourceB},
//	)
//	store, _ := sqlstore.Open(ctx, "progress.db")
//
//	coord, err := slogeval.NewCoordinator(&cfg, src, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := coord.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Stop(context.Background())
//
//	a, _ := coord.CurrentAssignment(ctx, "annotator-7")
//	if !a.Complete() {
//	    _, err = coord.Submit(ctx, "annotator-7", a.Phase, a.Item.Key(), labels)
//	}
//
// # Workflow
//
// Each user moves through three derived states:
//
//	QUANT_IN_PROGRESS → QUAL_IN_PROGRESS → ALL_DONE
//
// The qualitative pool opens only once every quantitative item is complete.
// Within a phase the next item is always the first incomplete item in the
// pool's canonical order.
//
// # Stores
//
// Four ProgressStore adapters ship with the module: store/memory,
// store/filestore, store/sqlstore and store/kvstore (NATS JetStream KV).
package slogeval
