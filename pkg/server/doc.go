// Package server exposes a loaded dataset over HTTP.
//
// The API mirrors the CLI: dropdown options, year lists, flow graphs in any
// flow format and single map frames. A websocket endpoint streams a live
// timelapse where each client owns a [session.Session].
//
// # Routes
//
//	GET /healthz                     liveness probe
//	GET /api/version                 build information
//	GET /api/options/{field}         "all" followed by the sorted values of year, origin or asylum
//	GET /api/years                   map years within the configured bounds
//	GET /api/flow                    flow graph; query year, origin, asylum, min_value, format
//	GET /api/map/{year}              map frame; query format (json or svg)
//	GET /api/sessions/{id}           state of a timelapse session
//	GET /ws/timelapse                timelapse stream; query mode, interval
//
// # Timelapse protocol
//
// After the upgrade the server sends a "session" message with the session ID,
// the years and the legend, then one "frame" message per redraw. Clients send
// actions:
//
//	{"action": "play"}
//	{"action": "pause"}
//	{"action": "toggle"}
//	{"action": "step"}
//	{"action": "year", "year": "2019"}
//
// Play and pause are answered with a "state" message; failures with an
// "error" message. The session is deleted when the connection closes.
package server
