package main

import (
	"encoding/binary"
	"fmt"

	"memprobe/mem"
	"memprobe/sigscan"
	"memprobe/snapshot"
	"memprobe/target"
	"memprobe/w2s"
)

// This example runs against a synthetic captured region, so it works
// without attaching to a live process. Against a real target you would
// open a handle with target_linux.Attach / target_windows.Attach and
// hand that to mem.New instead.

const base = target.Address(0x140000000)

func main() {
	region := buildRegion()
	acc := mem.New(region)

	// 1. Signature scan the module for the health marker.
	scanner := sigscan.New(acc)
	pat, err := sigscan.Parse("DE AD ? EF")
	if err != nil {
		panic(err)
	}
	addr, found, err := scanner.FindInModule("game.exe", pat)
	if err != nil {
		panic(err)
	}
	if !found {
		fmt.Println("signature not found")
		return
	}
	fmt.Printf("signature at %s\n", addr)

	// 2. Follow the pointer chain stored after the marker.
	player, err := acc.Resolve(addr+4, 0x0, 0x10)
	if err != nil {
		panic(err)
	}
	health, err := mem.Read[int32](acc, player)
	if err != nil {
		panic(err)
	}
	name, err := acc.ReadString(player+8, 16, mem.UTF8)
	if err != nil {
		panic(err)
	}
	fmt.Printf("player %q at %s, health %d\n", name, player, health)

	// 3. Read the view-projection matrix and project a world point.
	matrix, err := acc.ReadMatrix4x4(base + 0x200)
	if err != nil {
		panic(err)
	}
	screen, ok := w2s.Project(matrix, target.Vector3{X: 0.5, Y: 0.25}, 1920, 1080, w2s.DirectX)
	if ok {
		fmt.Printf("world (0.5, 0.25, 0) -> screen (%.0f, %.0f)\n", screen.X, screen.Y)
	}
}

// buildRegion lays out a small fake module image: a signature, a
// two-hop pointer chain to a player record, and an identity
// view-projection matrix.
func buildRegion() *snapshot.Region {
	data := make([]byte, 0x400)

	// Signature at +0x40, followed by a pointer to +0x100.
	copy(data[0x40:], []byte{0xDE, 0xAD, 0xBE, 0xEF})
	binary.LittleEndian.PutUint64(data[0x44:], uint64(base+0x100))

	// +0x100+0x10 points at the player record at +0x180.
	binary.LittleEndian.PutUint64(data[0x110:], uint64(base+0x180))

	// Player record: int32 health, then a name.
	binary.LittleEndian.PutUint32(data[0x180:], 100)
	copy(data[0x188:], "Rogue\x00")

	// Identity view-projection matrix at +0x200.
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(data[0x200+i*20:], 0x3F800000) // 1.0
	}

	return snapshot.NewRegion(base, data, target.ModuleInfo{
		Name: "game.exe",
		Base: base,
		Size: uint64(len(data)),
	})
}
