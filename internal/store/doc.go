// Package store provides concurrent in-memory storage of flights.
//
// This package is internal to FlightDeck and holds the only shared mutable
// domain state in the process. The main components are:
//
//   - [Store]: Interface defining insert, lookup, delete and listing
//   - [MemoryStore]: Mutex-guarded implementation with a flight number index
//   - [Filter]: Destination and status filters for listing
//
// Flight numbers are unique ignoring case. The uniqueness check and the
// insert are one atomic step, so concurrent adds of "BA100" and "ba100"
// cannot both succeed.
//
// Status is never stored. Listing derives it from the departure time and the
// store's clock at the moment the list runs.
package store
