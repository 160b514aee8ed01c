// Package file keeps corpus configuration in a TOML file under the corpus
// home directory ($CORPUS_HOME, or ~/.corpus).
//
// The file is written as nested tables:
//
//	[chunker]
//	chunk_size = 800
//
// and read back as flat dot-separated keys ("chunker.chunk_size").
package file
