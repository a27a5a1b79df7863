// Package delim scans brace-delimited source text for grouping delimiters.
//
// Delimiters inside string literals, raw strings, character literals and
// comments are ignored. Lifetimes and loop labels ('a) are told apart from
// character literals ('a'). Block comments nest.
//
// The scanner works on lines because every consumer (repair rules, the patch
// applier checks and the tree scan) addresses text by line number.
package delim
