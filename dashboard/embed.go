// Package dashboard embeds the FlightDeck departures board.
//
// The board is a single HTML page served at "/" by the server package. The
// page title is filled in from the configured title; everything else is
// static and compiled into the binary.
package dashboard

import "embed"

// Assets holds the board page:
//
//	assets/
//	  index.html    - departures table, add form and filters; it follows
//	                  /api/sse and calls the /api/flights endpoints
//
//go:embed assets/*
var Assets embed.FS
