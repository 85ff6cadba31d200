package mem

import (
	"encoding/binary"
	"strings"
	"testing"

	"memprobe/snapshot"
	"memprobe/target"
)

// putPointer stores a 64-bit pointer value inside the test region.
func putPointer(t *testing.T, r *snapshot.Region, at target.Address, value target.Address) {
	t.Helper()
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, uint64(value))
	if err := r.WriteRaw(at, raw); err != nil {
		t.Fatal(err)
	}
}

func TestResolveEmptyChain(t *testing.T) {
	a, _ := testAccessor(0x100)
	got, err := a.Resolve(testBase + 0x10)
	if err != nil {
		t.Fatal(err)
	}
	if got != testBase+0x10 {
		t.Errorf("empty chain: got %s, want %s", got, testBase+0x10)
	}
}

func TestResolveTwoHops(t *testing.T) {
	a, r := testAccessor(0x1000)

	p1 := testBase + 0x200
	p2 := testBase + 0x300
	putPointer(t, r, testBase+0x10, p1) // *(base+0x10) = p1
	putPointer(t, r, p1+0x20, p2)      // *(p1+0x20)   = p2

	got, err := a.Resolve(testBase, 0x10, 0x20)
	if err != nil {
		t.Fatal(err)
	}
	if got != p2 {
		t.Errorf("resolve: got %s, want %s", got, p2)
	}
}

func TestResolveNegativeOffset(t *testing.T) {
	a, r := testAccessor(0x1000)

	p1 := testBase + 0x500
	putPointer(t, r, testBase+0x40, p1)
	putPointer(t, r, p1-0x8, testBase+0x600)

	got, err := a.Resolve(testBase, 0x40, -0x8)
	if err != nil {
		t.Fatal(err)
	}
	if got != testBase+0x600 {
		t.Errorf("resolve with negative offset: got %s, want %s", got, testBase+0x600)
	}
}

func TestResolveFailsOnFirstHop(t *testing.T) {
	a, _ := testAccessor(0x100)

	// First hop lands outside the region: the whole resolve fails,
	// and the error names hop 0, proving the second hop never ran.
	_, err := a.Resolve(testBase, 0x10000, 0x20)
	if err == nil {
		t.Fatal("expected error for unreadable first hop, got nil")
	}
	if !strings.Contains(err.Error(), "hop 0") {
		t.Errorf("error should name the failing hop: %v", err)
	}
}

func TestResolveZeroPointerPropagates(t *testing.T) {
	a, r := testAccessor(0x100)

	// *(base+0x10) = 0 is a legal intermediate value; the next hop
	// then reads at 0+0x8, which is unmapped and fails on its own.
	putPointer(t, r, testBase+0x10, 0)
	_, err := a.Resolve(testBase, 0x10, 0x8)
	if err == nil {
		t.Fatal("expected error for hop through zero, got nil")
	}
	if !strings.Contains(err.Error(), "hop 1") {
		t.Errorf("failure should happen at hop 1, not earlier: %v", err)
	}
}

func TestResolvePointerSize4(t *testing.T) {
	region := snapshot.NewRegion(0x400000, make([]byte, 0x1000))
	a := New(region, WithPointerSize(4))

	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, 0x400500)
	if err := region.WriteRaw(0x400010, raw); err != nil {
		t.Fatal(err)
	}

	got, err := a.Resolve(0x400000, 0x10)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x400500 {
		t.Errorf("4-byte resolve: got %s, want 0x400500", got)
	}
}

func TestReadAtThroughChain(t *testing.T) {
	a, r := testAccessor(0x1000)

	p1 := testBase + 0x800
	putPointer(t, r, testBase+0x18, p1)
	if err := Write[int32](a, p1, -1234); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAt[int32](a, testBase, 0x18)
	if err != nil {
		t.Fatal(err)
	}
	if got != -1234 {
		t.Errorf("ReadAt: got %d, want -1234", got)
	}

	// No offsets reads at base directly.
	if err := Write[uint16](a, testBase, 0xBEEF); err != nil {
		t.Fatal(err)
	}
	direct, err := ReadAt[uint16](a, testBase)
	if err != nil {
		t.Fatal(err)
	}
	if direct != 0xBEEF {
		t.Errorf("ReadAt without offsets: got %#x, want 0xBEEF", direct)
	}
}

func TestWriteAtThroughChain(t *testing.T) {
	a, r := testAccessor(0x1000)

	p1 := testBase + 0x900
	putPointer(t, r, testBase+0x28, p1)

	if err := WriteAt(a, testBase, float32(3.25), 0x28); err != nil {
		t.Fatal(err)
	}
	got, err := Read[float32](a, p1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3.25 {
		t.Errorf("WriteAt: got %v, want 3.25", got)
	}
}

func TestHandleInvalidAfterClose(t *testing.T) {
	a, r := testAccessor(0x100)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Read[uint32](a, testBase); err != target.ErrHandleInvalid {
		t.Errorf("read after close: got %v, want ErrHandleInvalid", err)
	}
	if err := Write[uint32](a, testBase, 1); err != target.ErrHandleInvalid {
		t.Errorf("write after close: got %v, want ErrHandleInvalid", err)
	}
}
