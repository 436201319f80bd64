// Package domain maps MCP tool calls onto campaign engine operations.
//
// Every mutating tool takes the campaign_id and the caller's actor_id and
// returns a structured view. Outcome values such as stressed_out or
// insufficient come back as data; only rejected commands become tool errors.
package domain
