/*
Package cordsearch is a self-contained full-text search engine over a
corpus of scientific documents (built for the CORD-19 dataset). It
maintains an on-disk, segmented inverted index with BM25 ranking,
prefix autocomplete, optional embedding-based query expansion, and
bounded result caches.

# Overview

The index is a sequence of immutable segments, each holding a set of
documents, a lexicon mapping terms to posting-list locations, and the
posting lists themselves, either as a single legacy file pair or
sharded across a fixed number of barrels. Segments are only ever
appended, never mutated: a bulk build produces one segment from a
document batch, and single-document ingestion produces its own N=1
segment. A manifest file records segment order.

# Quick Start

Build a segment and search it through an Engine:

	package main

	import (
	    "context"
	    "fmt"
	    "log"

	    "github.com/wizenheimer/cordsearch"
	)

	func main() {
	    ctx := context.Background()
	    cfg, err := cordsearch.LoadConfig("")
	    if err != nil {
	        log.Fatal(err)
	    }
	    cfg.IndexDir = "./index"

	    w := cordsearch.NewSegmentWriter(0)
	    w.AddDocument(cordsearch.TokenDoc{
	        CordUID: "abc123",
	        Title:   "A study of coronaviruses",
	        Tokens:  []string{"study", "coronavirus", "spike", "protein"},
	    })
	    if _, err := w.WriteSegment(cfg.IndexDir); err != nil {
	        log.Fatal(err)
	    }

	    engine := cordsearch.NewEngine(cfg, nil)
	    if err := engine.Reload(ctx); err != nil {
	        log.Fatal(err)
	    }

	    result, metas, err := engine.Search("coronavirus spike", 10)
	    if err != nil {
	        log.Fatal(err)
	    }
	    for i, hit := range result.Hits {
	        fmt.Println(hit.CordUID, hit.Score, metas[i].Title)
	    }
	}

# Segment Format

Every on-disk file uses fixed-width little-endian integers/floats and
u32-length-prefixed UTF-8 strings, with no padding and no magic
numbers. A segment directory contains stats.bin (document count and
average length), docs.bin (per-document cord_uid/title/length), and
either a legacy lexicon.bin/inverted.bin pair or DefaultBarrelCount
pairs of lexicon_bNNN.bin/inverted_bNNN.bin barrel files. See
ioutil.go, segment_writer.go, and segment_reader.go for the exact
layout.

# Query Evaluation

A query is tokenized into lowercase alphanumeric runs, filtered
against a small stopword list, optionally expanded via word-embedding
nearest neighbors, then scored against every loaded segment using the
standard BM25 formula. Per-segment scores are merged into a single
global top-k result using a bounded min-heap, and the winning
documents are enriched from a metadata.csv sidecar table by seeking to
a cached byte offset.

# Caching

Search results, and AI-generated overviews and summaries fronting an
external LLM, are each held in an independent bounded LRU cache
persisted to disk as JSON. Cache keys, eviction order, and save
cadence are documented on LRUCache.

# Thread Safety

Engine guards its loaded state with a read/write mutex. Search and
Suggest take a snapshot under the read lock and may run concurrently
with each other; Reload builds a new set of loaded segments without the
lock and swaps it in under the write lock once it succeeds, so
in-flight searches never observe a half-loaded index. Each cache has
its own lock.
*/
package cordsearch
