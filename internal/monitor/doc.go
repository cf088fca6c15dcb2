// Package monitor detects time-driven flight status transitions.
//
// This package is internal to FlightDeck. A [Monitor] runs one background
// loop that snapshots the flight store on a fixed interval, classifies every
// flight against the clock, and publishes a StatusChanged event for each
// flight whose status differs from the previous scan.
//
// The last-known status map is private to the monitor and is only touched
// by the single scan that holds the running flag, so it needs no lock.
package monitor
