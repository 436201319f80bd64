// Package storage defines persistence contracts for campaign state and the
// action log.
//
// Entity structs mirror the relational layout; each die-bearing entity can be
// rendered as an undo.Row snapshot so inserts, deletes and their inverses
// share one encoding.
package storage
