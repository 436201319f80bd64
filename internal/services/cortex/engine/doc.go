// Package engine applies campaign mutations for a Cortex Prime session.
//
// Every mutating operation runs in one storage transaction. Writes go through
// the same allow-listed executor that undo uses, and each write is logged with
// the instruction that reverses it. Edge states such as already_max or
// insufficient are reported as Result outcomes, never as errors.
package engine
