// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Producers (lexer, parser, resolver, type checker, bytecode encoder) never
// print anything. They emit through a Reporter, usually a BagReporter that
// accumulates into a Bag owned by the driver. A phase that reports any error
// stops the pipeline once it finishes; diagnostics inside a phase are
// collected best-effort.
//
// Rendering lives in internal/diagfmt.
//
// Codes are grouped by thousands:
//
//	1000 lexical      LEX
//	2000 syntax       SYN
//	3000 resolution   RES
//	4000 types        TYP
//	5000 encoding     ENC
//	6000 io/project   IO
package diag
