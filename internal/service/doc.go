// Package service implements the ingestion rules that sit between the
// capture adapters and the observation store.
//
// IngestService decomposes each packet into its addresses and metadata,
// inserts every value idempotently and stores the packet itself only when at
// least one of those values was new. A packet whose values were all seen
// before is redundant and is dropped.
package service
