// Package undo defines the closed instruction set used to reverse campaign
// mutations.
//
// Every mutating engine operation is paired with exactly one inverse
// instruction: Delete a row by id, Insert a full row snapshot, or Update one
// numeric field. Instructions are checked against compile-time allow-lists
// before anything touches storage, so a tampered or corrupted log entry can
// never be used to write arbitrary tables or columns.
//
// The same instructions also carry forward writes, which keeps the encoding
// of a row identical on the way in and on the way back.
package undo
