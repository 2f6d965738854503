// Package state saves and restores the parameter values of an instrument.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/justyntemme/polyvoice/pkg/framework/param"
)

var (
	ErrInvalidPreset   = errors.New("invalid preset")
	ErrWrongInstrument = errors.New("preset belongs to another instrument")
)

const (
	magic   = "PVPRESET"
	version = uint32(1)

	maxIDLength = 256
)

// Manager reads and writes presets for one instrument. A preset holds
// the instrument id and the normalized value of every parameter.
type Manager struct {
	instrumentID string
	registry     *param.Registry
}

func NewManager(instrumentID string, registry *param.Registry) *Manager {
	return &Manager{
		instrumentID: instrumentID,
		registry:     registry,
	}
}

type entry struct {
	ID    uint32
	Value float64
}

// Save writes the current parameter values to w.
func (m *Manager) Save(w io.Writer) error {
	if len(m.instrumentID) > maxIDLength {
		return fmt.Errorf("instrument id %q too long", m.instrumentID)
	}

	params := m.registry.All()
	entries := make([]entry, len(params))
	for i, p := range params {
		entries[i] = entry{ID: p.ID, Value: p.GetValue()}
	}

	for _, v := range []any{
		[]byte(magic),
		version,
		uint16(len(m.instrumentID)),
		[]byte(m.instrumentID),
		uint32(len(entries)),
		entries,
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("save preset: %w", err)
		}
	}
	return nil
}

// Load reads a preset written by Save. Nothing is changed unless the
// whole preset is valid. Parameters the instrument no longer has are
// skipped.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if string(header) != magic {
		return fmt.Errorf("%w: bad header %q", ErrInvalidPreset, header)
	}

	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if v > version {
		return fmt.Errorf("%w: version %d is newer than %d", ErrInvalidPreset, v, version)
	}

	var idLength uint16
	if err := binary.Read(r, binary.LittleEndian, &idLength); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if idLength > maxIDLength {
		return fmt.Errorf("%w: instrument id of %d bytes", ErrInvalidPreset, idLength)
	}
	id := make([]byte, idLength)
	if _, err := io.ReadFull(r, id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if string(id) != m.instrumentID {
		return fmt.Errorf("%w: %s, not %s", ErrWrongInstrument, id, m.instrumentID)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	entries := make([]entry, 0, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return fmt.Errorf("%w: parameter %d: %v", ErrInvalidPreset, i, err)
		}
		if math.IsNaN(e.Value) || e.Value < 0 || e.Value > 1 {
			return fmt.Errorf("%w: parameter %d has value %v", ErrInvalidPreset, e.ID, e.Value)
		}
		entries = append(entries, e)
	}

	for _, e := range entries {
		if p := m.registry.Get(e.ID); p != nil {
			p.SetValue(e.Value)
		}
	}
	return nil
}
