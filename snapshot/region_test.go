package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"memprobe/target"
)

const regionBase = target.Address(0x400000)

func TestReadWriteRaw(t *testing.T) {
	r := NewRegion(regionBase, make([]byte, 64))

	if err := r.WriteRaw(regionBase+8, []byte{0xDE, 0xAD, 0xBE, 0xEF}); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadRaw(regionBase+8, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("read back % X", got)
	}
}

func TestReadRawCopies(t *testing.T) {
	r := NewRegion(regionBase, []byte{1, 2, 3, 4})

	got, err := r.ReadRaw(regionBase, 4)
	if err != nil {
		t.Fatal(err)
	}
	got[0] = 0xFF
	again, err := r.ReadRaw(regionBase, 4)
	if err != nil {
		t.Fatal(err)
	}
	if again[0] != 1 {
		t.Error("ReadRaw must not alias the backing data")
	}
}

func TestBoundsChecks(t *testing.T) {
	r := NewRegion(regionBase, make([]byte, 16))

	if _, err := r.ReadRaw(regionBase-1, 1); err == nil {
		t.Error("read below base should fail")
	}
	if _, err := r.ReadRaw(regionBase+15, 2); err == nil {
		t.Error("read past end should fail")
	}
	if err := r.WriteRaw(regionBase+16, []byte{0}); err == nil {
		t.Error("write past end should fail")
	}
	if _, err := r.ReadRaw(regionBase+16, 0); err != nil {
		t.Errorf("zero-length read at end: %v", err)
	}
}

func TestBoundsChecksNoWraparound(t *testing.T) {
	r := NewRegion(regionBase, make([]byte, 16))

	// Offset plus size overflows uint64; the check must still reject
	// instead of slicing out of range.
	if _, err := r.ReadRaw(target.Address(0xFFFFFFFFFFFFFFF8), 0x400010); err == nil {
		t.Error("wrapping addr/size pair should fail")
	}
	if _, err := r.ReadRaw(regionBase, target.Size(^uint(0))); err == nil {
		t.Error("huge size should fail")
	}
	if err := r.WriteRaw(target.Address(0xFFFFFFFFFFFFFFFF), []byte{0}); err == nil {
		t.Error("write at top of address space should fail")
	}
}

func TestClosedRegion(t *testing.T) {
	r := NewRegion(regionBase, make([]byte, 8))
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := r.ReadRaw(regionBase, 1); !errors.Is(err, target.ErrHandleInvalid) {
		t.Errorf("read after close: %v", err)
	}
	if err := r.WriteRaw(regionBase, []byte{0}); !errors.Is(err, target.ErrHandleInvalid) {
		t.Errorf("write after close: %v", err)
	}
	if _, err := r.ListModules(); !errors.Is(err, target.ErrHandleInvalid) {
		t.Errorf("list after close: %v", err)
	}
}

func TestListModules(t *testing.T) {
	mods := []target.ModuleInfo{
		{Name: "game.exe", Base: regionBase, Size: 0x1000},
		{Name: "engine.dll", Base: regionBase + 0x1000, Size: 0x800},
	}
	r := NewRegion(regionBase, make([]byte, 0x1800), mods...)

	got, err := r.ListModules()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "game.exe" || got[1].Name != "engine.dll" {
		t.Errorf("modules = %+v", got)
	}

	// The returned slice is a copy.
	got[0].Name = "mutated"
	again, _ := r.ListModules()
	if again[0].Name != "game.exe" {
		t.Error("ListModules must return a copy")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	orig := NewRegion(regionBase, data, target.ModuleInfo{
		Name: "game.exe",
		Base: regionBase,
		Size: 256,
	})
	if err := orig.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Base() != regionBase {
		t.Errorf("base = %s, want %s", loaded.Base(), regionBase)
	}
	if loaded.Len() != 256 {
		t.Errorf("len = %d, want 256", loaded.Len())
	}
	got, err := loaded.ReadRaw(regionBase, 256)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("loaded data differs from saved data")
	}
	mods, err := loaded.ListModules()
	if err != nil {
		t.Fatal(err)
	}
	if len(mods) != 1 || mods[0].Name != "game.exe" {
		t.Errorf("modules = %+v", mods)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("loading an empty directory should fail")
	}
}
