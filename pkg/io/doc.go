// Package io loads call-graph inputs and writes exported documents.
//
// # Overview
//
// The call-graph core works on in-memory strings and mappings. This package
// is the file boundary around it:
//
//   - [ImportGraph] reads the raw DOT-like text emitted by the analysis tool
//   - [LoadCoverage] reads a node or edge coverage mapping (JSON object)
//   - [LoadRanking] reads a ranking mapping (JSON object or "sig | score" lines)
//   - [ExportDOT] and [WriteArtifact] write results
//
// # Coverage Format
//
// Coverage is a flat JSON object from node signature or edge key to a
// non-negative score:
//
//	{
//	  "<a.Book: void <init>()>": 3,
//	  "\"<a.Shelf: void add(a.Book)>\"->\"<a.Book: void <init>()>\"": 1
//	}
//
// Entries whose value is not a number are skipped.
//
// # Ranking Format
//
// Ranking is either a JSON object as above or one entry per line:
//
//	<a.Book: void <init>()> | 0.0312
//	<a.Shelf: void add(a.Book)> | 0.1170
//
// The line is split on its last '|'. Blank and malformed lines are skipped.
//
// # Missing Files
//
// A missing coverage or ranking file is not an error: the loaders return an
// empty mapping, so callers can pass optional paths straight through. A
// missing graph file is an error.
package io
