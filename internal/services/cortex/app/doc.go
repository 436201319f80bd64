// Package app assembles the cortex runtime: storage, rules, the campaign
// engine, the MCP server and the optional health endpoint.
package app
