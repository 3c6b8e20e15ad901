package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// IncumbentSentinel is written as incumbent_value when a single-objective
// ledger is saved before any evaluation was accepted.
const IncumbentSentinel = 2147483647

// DefaultSnapshotFile is the conventional snapshot file name.
const DefaultSnapshotFile = "history_container.json"

// Snapshot is the decoded single-objective file.
type Snapshot struct {
	TaskID         string
	Records        []Record
	ConfigCounter  int
	IncumbentValue float64
}

// MOSnapshot is the decoded multi-objective file. It carries raw records
// only; incumbents and the Pareto front are rebuilt by replaying them.
type MOSnapshot struct {
	Records []MORecord
}

type snapshotFile struct {
	TaskID         string              `json:"task_id"`
	Data           [][]json.RawMessage `json:"data"`
	ConfigCounter  int                 `json:"config_counter"`
	IncumbentValue float64             `json:"incumbent_value"`
}

type moSnapshotFile struct {
	Data [][]json.RawMessage `json:"data"`
}

// SaveJSON writes every record, in insertion order, with the counters.
// The write is not atomic; a crash mid-write can leave a truncated file.
func (c *Container) SaveJSON(path string) error {
	data := make([][]json.RawMessage, 0, c.records.len())
	for i, cfg := range c.records.configs {
		entry, err := encodeEntry(cfg, c.records.perfs[i].Cost)
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		data = append(data, entry)
	}

	value, ok := c.IncumbentValue()
	if !ok {
		value = IncumbentSentinel
	}
	return writeJSON(path, snapshotFile{
		TaskID:         c.taskID,
		Data:           data,
		ConfigCounter:  c.count,
		IncumbentValue: value,
	})
}

// SaveJSON writes every record, in insertion order, with objective vectors
// as plain number arrays.
func (c *MOContainer) SaveJSON(path string) error {
	data := make([][]json.RawMessage, 0, c.records.len())
	for i, cfg := range c.records.configs {
		entry, err := encodeEntry(cfg, c.records.perfs[i])
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		data = append(data, entry)
	}
	return writeJSON(path, moSnapshotFile{Data: data})
}

func encodeEntry(cfg Configuration, perf any) ([]json.RawMessage, error) {
	dict, err := json.Marshal(cfg.Dictionary())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cfg.String(), err)
	}
	value, err := json.Marshal(perf)
	if err != nil {
		return nil, fmt.Errorf("encode perf of %s: %w", cfg.String(), err)
	}
	return []json.RawMessage{dict, value}, nil
}

func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a single-objective file, rehydrating every
// configuration through decode.
func ReadSnapshot(path string, decode DecodeFunc) (*Snapshot, error) {
	var file snapshotFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}
	if file.Data == nil {
		return nil, fmt.Errorf("read %s: missing data", path)
	}

	snap := &Snapshot{
		TaskID:         file.TaskID,
		ConfigCounter:  file.ConfigCounter,
		IncumbentValue: file.IncumbentValue,
		Records:        make([]Record, 0, len(file.Data)),
	}
	for i, entry := range file.Data {
		var cost float64
		cfg, err := decodeEntry(entry, decode, &cost)
		if err != nil {
			return nil, fmt.Errorf("read %s: data[%d]: %w", path, i, err)
		}
		snap.Records = append(snap.Records, Record{Config: cfg, Perf: Cost(cost)})
	}
	return snap, nil
}

// ReadMOSnapshot decodes a multi-objective file, rehydrating every
// configuration through decode.
func ReadMOSnapshot(path string, decode DecodeFunc) (*MOSnapshot, error) {
	var file moSnapshotFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}
	if file.Data == nil {
		return nil, fmt.Errorf("read %s: missing data", path)
	}

	snap := &MOSnapshot{Records: make([]MORecord, 0, len(file.Data))}
	for i, entry := range file.Data {
		var objectives []float64
		cfg, err := decodeEntry(entry, decode, &objectives)
		if err != nil {
			return nil, fmt.Errorf("read %s: data[%d]: %w", path, i, err)
		}
		snap.Records = append(snap.Records, MORecord{Config: cfg, Objectives: objectives})
	}
	return snap, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func decodeEntry(entry []json.RawMessage, decode DecodeFunc, perf any) (Configuration, error) {
	if len(entry) != 2 {
		return nil, fmt.Errorf("expected [config, perf] pair, got %d elements", len(entry))
	}
	var dict map[string]any
	if err := json.Unmarshal(entry[0], &dict); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := checkPerf(entry[1]); err != nil {
		return nil, fmt.Errorf("perf: %w", err)
	}
	if err := json.Unmarshal(entry[1], perf); err != nil {
		return nil, fmt.Errorf("perf: %w", err)
	}
	cfg, err := decode(dict)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// checkPerf rejects null costs and null vector elements, which
// json.Unmarshal would otherwise decode as 0.
func checkPerf(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		return errors.New("null performance")
	case []any:
		for i, x := range val {
			if x == nil {
				return fmt.Errorf("null objective %d", i)
			}
		}
	}
	return nil
}

// LoadJSON replaces the ledger with the records of a snapshot file,
// replayed through Add in file order, and restores config_counter.
//
// Loading fails open: when the file is missing, unreadable or malformed a
// warning is logged, nil is returned and the ledger is left as it was.
func (c *Container) LoadJSON(path string, decode DecodeFunc) []Record {
	snap, err := ReadSnapshot(path, decode)
	if err != nil {
		c.logger.Warn("could not read history, not adding any runs", "path", path, "error", err)
		return nil
	}

	c.reset()
	c.Replay(snap.Records)

	if c.count != snap.ConfigCounter {
		c.logger.Warn("snapshot config_counter disagrees with its records",
			"path", path, "config_counter", snap.ConfigCounter, "records", c.count)
		c.count = snap.ConfigCounter
	}
	value, ok := c.IncumbentValue()
	if !ok {
		value = IncumbentSentinel
	}
	if value != snap.IncumbentValue {
		c.logger.Warn("snapshot incumbent_value disagrees with its records",
			"path", path, "incumbent_value", snap.IncumbentValue, "replayed", value)
	}
	return snap.Records
}

// LoadJSON reads the records of a snapshot file without touching the
// ledger; merge them with Replay. Loading fails open like
// Container.LoadJSON.
func (c *MOContainer) LoadJSON(path string, decode DecodeFunc) []MORecord {
	snap, err := ReadMOSnapshot(path, decode)
	if err != nil {
		c.logger.Warn("could not read history, not adding any runs", "path", path, "error", err)
		return nil
	}
	return snap.Records
}
