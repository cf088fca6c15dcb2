// Package server provides the HTTP server for the FlightDeck dashboard and API.
//
// This package is internal to FlightDeck and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: JSON endpoints under "/api/flights" for queries and mutations
//   - Server-Sent Events: Real-time flight events at "/api/sse"
//   - Health: Monitor state at "/healthz"
//
// Errors from the core contract are mapped to status codes with errors.Is:
// invalid arguments become 400, unknown flights 404, duplicate numbers 409
// and anything else 500. Error bodies are JSON objects with an "error" key.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the flightdeck library should not need to interact with this
// package directly. The server is started automatically by [flightdeck.FlightDeck.Start].
package server
