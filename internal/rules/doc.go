// Package rules holds the repair catalog: structural rules that recognise a
// damaged delimiter shape around a diagnosed line and propose a local edit.
//
// Rules are pure functions of (lines, target). They are tried in a fixed
// order and the first match whose edit lowers the file's delimiter imbalance
// wins.
package rules
