// Package fuzztests houses Go fuzz harnesses for the ash front end and
// pipeline. They feed arbitrary bytes through the lexer, the parser and
// the whole compiler and fail on panics, hangs or broken span and lowering
// invariants.
package fuzztests
