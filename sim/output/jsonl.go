// Package output provides EventSink implementations for simulation events:
// a JSON-lines file, a SQLite event store, Prometheus counters, an in-memory
// buffer, and a fan-out over several sinks.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/transmission-sim/transmission-sim/sim"
)

// EventsFileName is the JSON-lines event log written under the output directory.
const EventsFileName = "events.jsonl"

// JSONLSink writes one JSON object per event, one event per line.
type JSONLSink struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
}

// NewJSONLSink creates (or truncates) path and returns a sink writing to it.
func NewJSONLSink(path string) (*JSONLSink, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	writer := bufio.NewWriter(file)
	return &JSONLSink{path: path, file: file, writer: writer, enc: json.NewEncoder(writer)}, nil
}

// Emit encodes ev followed by a newline.
func (s *JSONLSink) Emit(ev sim.SimulationEvent) error {
	return s.enc.Encode(ev)
}

// Close flushes buffered events and closes the file.
func (s *JSONLSink) Close() error {
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", s.path, closeErr)
	}
	logrus.Debugf("Successfully wrote to '%s'", s.path)
	return nil
}

// ReadJSONL decodes every event from a JSON-lines stream. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]sim.SimulationEvent, error) {
	var events []sim.SimulationEvent
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev sim.SimulationEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}

// ReplayFile reads an events.jsonl file and folds it into fresh RunStats for
// a population of the given size.
func ReplayFile(path string, populationSize int) (*sim.RunStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening events: %w", err)
	}
	defer f.Close()

	events, err := ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	stats := sim.NewRunStats(populationSize)
	for _, ev := range events {
		stats.Record(ev)
	}
	return stats, nil
}
