package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"memprobe/target"
)

const (
	metaFile = "region.json"
	dataFile = "region.bin"
)

type regionMeta struct {
	Base    uint64              `json:"base"`
	Size    int                 `json:"size"`
	Pid     int                 `json:"pid"`
	Modules []target.ModuleInfo `json:"modules,omitempty"`
}

// Save writes the region's bytes and metadata into dirname, creating
// it if needed.
func (r *Region) Save(dirname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return target.ErrHandleInvalid
	}

	if err := os.MkdirAll(dirname, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	meta := regionMeta{
		Base:    uint64(r.base),
		Size:    len(r.data),
		Pid:     r.pid,
		Modules: r.modules,
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, metaFile), raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, dataFile), r.data, 0o644); err != nil {
		return fmt.Errorf("write snapshot data: %w", err)
	}
	return nil
}

// Load reads a region previously written by Save.
func Load(dirname string) (*Region, error) {
	raw, err := os.ReadFile(filepath.Join(dirname, metaFile))
	if err != nil {
		return nil, fmt.Errorf("read snapshot metadata: %w", err)
	}
	var meta regionMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse snapshot metadata: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dirname, dataFile))
	if err != nil {
		return nil, fmt.Errorf("read snapshot data: %w", err)
	}
	if len(data) != meta.Size {
		return nil, fmt.Errorf("snapshot data is %d bytes, metadata says %d", len(data), meta.Size)
	}

	r := NewRegion(target.Address(meta.Base), data, meta.Modules...)
	r.pid = meta.Pid
	return r, nil
}
