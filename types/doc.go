// Package types holds the core data model and the interfaces shared by the
// coordinator and its pluggable collaborators.
//
// It exists so that store adapters, item sources and the partitioner can depend
// on the model without importing the root slogeval package (which would create an
// import cycle). The root package re-exports everything here through type aliases.
package types
