package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/flightdeck/flight"
)

// File is the YAML seed file layout.
//
//	flights:
//	  - flight_number: BA1234
//	    destination: London
//	    gate: A12
//	    departure_time: 2026-03-01T14:30:00Z
//	  - flight_number: AF88
//	    destination: Paris
//	    gate: C3
//	    departs_in: 25m
type File struct {
	Flights []Entry `yaml:"flights"`
}

// Entry is one seeded flight. Exactly one of DepartureTime and DepartsIn
// must be set; DepartsIn is a Go duration relative to load time and may be
// negative.
type Entry struct {
	Number        string     `yaml:"flight_number"`
	Destination   string     `yaml:"destination"`
	Gate          string     `yaml:"gate"`
	DepartureTime *time.Time `yaml:"departure_time"`
	DepartsIn     string     `yaml:"departs_in"`
}

// LoadFile reads a seed file and resolves relative departures against now.
func LoadFile(path string, now time.Time) ([]flight.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	reqs, err := Parse(data, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// Parse decodes seed YAML. Unknown keys are rejected. Every entry is
// checked and all problems are reported together.
func Parse(data []byte, now time.Time) ([]flight.Request, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	reqs := make([]flight.Request, 0, len(f.Flights))
	var errs []error
	for i, e := range f.Flights {
		req, err := e.request(now)
		if err != nil {
			errs = append(errs, fmt.Errorf("flights[%d]: %w", i, err))
			continue
		}
		reqs = append(reqs, req)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (e Entry) request(now time.Time) (flight.Request, error) {
	req := flight.Request{
		Number:      e.Number,
		Destination: e.Destination,
		Gate:        e.Gate,
	}

	switch {
	case e.DepartureTime != nil && e.DepartsIn != "":
		return req, fmt.Errorf("%w: set departure_time or departs_in, not both", flight.ErrInvalidArgument)
	case e.DepartureTime != nil:
		req.DepartureTime = *e.DepartureTime
	case e.DepartsIn != "":
		d, err := time.ParseDuration(e.DepartsIn)
		if err != nil {
			return req, fmt.Errorf("%w: departs_in: %v", flight.ErrInvalidArgument, err)
		}
		req.DepartureTime = now.Add(d)
	}

	req = req.Normalize()
	if err := req.ValidateFields(); err != nil {
		return req, err
	}
	return req, nil
}
