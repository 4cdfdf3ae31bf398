// Package document turns source files into plain text and splits that
// text into overlapping chunks sized for embedding.
//
// Extraction is format-aware: PDF files go through a text extractor,
// plain-text formats are read directly. Chunking operates on runes so
// multi-byte text never splits mid-character.
package document
