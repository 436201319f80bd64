// Package service runs the cortex MCP server over a transport.
//
// Tool and resource meaning lives in the domain package; this package only
// assembles the server and owns its lifecycle.
package service
