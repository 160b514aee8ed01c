// Package sqlite implements driven.CorpusStore on a single SQLite file,
// corpus.db, using the pure Go modernc.org/sqlite driver.
//
// Documents and chunks live in ordinary tables. Chunk text is mirrored
// into the chunks_fts FTS5 table under the same rowid and ranked with
// bm25(). Both tables are written in one transaction per call, so a
// reader never sees a chunk without its index row. CheckIntegrity
// reports any drift between the two.
//
// The schema is created and upgraded by the migrations subpackage when
// the store is opened.
//
// Connections run in WAL mode with a busy timeout, and write transactions
// begin IMMEDIATE so concurrent ingestion workers queue instead of failing
// with SQLITE_BUSY.
package sqlite
