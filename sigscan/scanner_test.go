package sigscan

import (
	"encoding/binary"
	"testing"

	"memprobe/mem"
	"memprobe/snapshot"
	"memprobe/target"
)

const scanBase = target.Address(0x140000000)

// scanTarget builds a scanner over a captured region whose whole span
// is reported as the module "game.exe".
func scanTarget(data []byte) *Scanner {
	region := snapshot.NewRegion(scanBase, data, target.ModuleInfo{
		Name: "game.exe",
		Base: scanBase,
		Size: uint64(len(data)),
	})
	return New(mem.New(region))
}

func mustParse(t *testing.T, text string) Pattern {
	t.Helper()
	pat, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	return pat
}

func TestFindInModule(t *testing.T) {
	data := []byte{0x11, 0x22, 0xAA, 0xBB, 0xCC, 0xDD, 0x33}
	s := scanTarget(data)

	addr, found, err := s.FindInModule("game.exe", mustParse(t, "AA BB ? DD"))
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("pattern not found")
	}
	if want := scanBase + 2; addr != want {
		t.Errorf("addr = %s, want %s", addr, want)
	}
}

func TestFindInModuleCaseInsensitiveName(t *testing.T) {
	s := scanTarget([]byte{0xAA, 0xBB})

	_, found, err := s.FindInModule("GAME.EXE", mustParse(t, "AA BB"))
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("module lookup should ignore case")
	}
}

func TestFindInModuleMissingModule(t *testing.T) {
	s := scanTarget([]byte{0xAA, 0xBB})

	addr, found, err := s.FindInModule("other.dll", mustParse(t, "AA BB"))
	if err != nil {
		t.Fatalf("missing module should not error: %v", err)
	}
	if found || addr != 0 {
		t.Errorf("got (%s, %v), want (0x0, false)", addr, found)
	}
}

func TestFindInModulePatternAbsent(t *testing.T) {
	s := scanTarget([]byte{0x11, 0x22, 0x33, 0x44})

	_, found, err := s.FindInModule("game.exe", mustParse(t, "AA BB"))
	if err != nil {
		t.Fatalf("absent pattern should not error: %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
}

func TestFindInModuleLowestAddressWins(t *testing.T) {
	data := []byte{0x00, 0xAA, 0xBB, 0x00, 0xAA, 0xBB}
	s := scanTarget(data)

	addr, found, err := s.FindInModule("game.exe", mustParse(t, "AA BB"))
	if err != nil {
		t.Fatal(err)
	}
	if !found || addr != scanBase+1 {
		t.Errorf("addr = %s, want %s", addr, scanBase+1)
	}
}

func TestFindInModuleOffsetExtra(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	s := scanTarget(data)

	addr, found, err := s.FindInModule("game.exe", mustParse(t, "AA BB"),
		WithOffset(3), WithExtra(0x10))
	if err != nil {
		t.Fatal(err)
	}
	if want := scanBase + 3 + 0x10; !found || addr != want {
		t.Errorf("addr = %s, want %s", addr, want)
	}
}

func TestFindInModuleRelative(t *testing.T) {
	// E8 <rel32> call at offset 4; displacement 0x20 resolves to the
	// instruction end plus 0x20.
	data := make([]byte, 0x40)
	data[4] = 0xE8
	binary.LittleEndian.PutUint32(data[5:], 0x20)
	s := scanTarget(data)

	addr, found, err := s.FindInModule("game.exe", mustParse(t, "E8 ? ? ? ?"),
		WithOffset(1), WithRelative())
	if err != nil {
		t.Fatal(err)
	}
	// match=base+4, read at match+1, final = match+1+4+0x20.
	if want := scanBase + 4 + 1 + 4 + 0x20; !found || addr != want {
		t.Errorf("addr = %s, want %s", addr, want)
	}
}

func TestFindInModuleRelativeNegativeDisplacement(t *testing.T) {
	data := make([]byte, 0x40)
	data[0x20] = 0xE8
	binary.LittleEndian.PutUint32(data[0x21:], uint32(0xFFFFFFF0)) // -0x10
	s := scanTarget(data)

	addr, found, err := s.FindInModule("game.exe", mustParse(t, "E8 ? ? ? ?"),
		WithOffset(1), WithRelative())
	if err != nil {
		t.Fatal(err)
	}
	if want := scanBase + 0x20 + 1 + 4 - 0x10; !found || addr != want {
		t.Errorf("addr = %s, want %s", addr, want)
	}
}

func TestFindAllInModule(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0x00, 0xAA, 0xBB, 0xAA, 0xBB}
	s := scanTarget(data)

	addrs, err := s.FindAllInModule("game.exe", mustParse(t, "AA BB"))
	if err != nil {
		t.Fatal(err)
	}
	want := []target.Address{scanBase, scanBase + 3, scanBase + 5}
	if len(addrs) != len(want) {
		t.Fatalf("got %d matches, want %d", len(addrs), len(want))
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Errorf("match %d = %s, want %s", i, addrs[i], want[i])
		}
	}
}

func TestFindAllInModuleMissingModule(t *testing.T) {
	s := scanTarget([]byte{0xAA})

	addrs, err := s.FindAllInModule("other.dll", mustParse(t, "AA"))
	if err != nil {
		t.Fatalf("missing module should not error: %v", err)
	}
	if len(addrs) != 0 {
		t.Errorf("got %v, want empty", addrs)
	}
}
