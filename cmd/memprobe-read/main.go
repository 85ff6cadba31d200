package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"memprobe/attach"
	"memprobe/hexdump"
	"memprobe/mem"
	"memprobe/target"
	"memprobe/w2s"
)

func main() {
	procFlag := flag.String("proc", "", "Process name to attach to")
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (alternative to --proc)")
	addrFlag := flag.String("addr", "", "Base address, e.g. '0x7FF6A0001000'")
	offsetsFlag := flag.String("offsets", "", "Comma-separated pointer-chain offsets, e.g. '0x10,0x8,0x14'")
	typeFlag := flag.String("type", "u32", "Value type: u8/u16/u32/u64/i8/i16/i32/i64/f32/f64/string/bytes/matrix")
	lenFlag := flag.Uint("len", 64, "Byte count for string/bytes reads")
	worldFlag := flag.String("world", "", "With --type matrix: world point 'x,y,z' to project")
	screenFlag := flag.String("screen", "1920x1080", "With --world: viewport 'WIDTHxHEIGHT'")
	flag.Parse()

	if *addrFlag == "" {
		fmt.Println("Error: --addr is required")
		flag.Usage()
		os.Exit(1)
	}
	if (*procFlag == "") == (*pidFlag == 0) {
		fmt.Println("Error: exactly one of --proc and --pid is required")
		flag.Usage()
		os.Exit(1)
	}

	base, err := strconv.ParseUint(*addrFlag, 0, 64)
	if err != nil {
		fmt.Printf("Error parsing address %q: %v\n", *addrFlag, err)
		os.Exit(1)
	}
	offsets, err := parseOffsets(*offsetsFlag)
	if err != nil {
		fmt.Printf("Error parsing offsets: %v\n", err)
		os.Exit(1)
	}

	handle, err := open(*procFlag, *pidFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer handle.Close()

	acc := mem.New(handle)
	addr, err := acc.Resolve(target.Address(base), offsets...)
	if err != nil {
		fmt.Printf("Error resolving chain: %v\n", err)
		os.Exit(1)
	}
	if len(offsets) > 0 {
		fmt.Printf("Chain resolved to %s\n", addr)
	}

	if err := read(acc, addr, *typeFlag, *lenFlag, *worldFlag, *screenFlag); err != nil {
		fmt.Printf("Error reading: %v\n", err)
		os.Exit(1)
	}
}

func open(name string, pid int) (target.Handle, error) {
	if pid != 0 {
		return attach.ByPid(pid)
	}
	return attach.ByName(name)
}

func parseOffsets(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("offset %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func read(acc *mem.Accessor, addr target.Address, typ string, length uint, world, screen string) error {
	switch typ {
	case "u8":
		return printScalar(mem.Read[uint8](acc, addr))
	case "u16":
		return printScalar(mem.Read[uint16](acc, addr))
	case "u32":
		return printScalar(mem.Read[uint32](acc, addr))
	case "u64":
		return printScalar(mem.Read[uint64](acc, addr))
	case "i8":
		return printScalar(mem.Read[int8](acc, addr))
	case "i16":
		return printScalar(mem.Read[int16](acc, addr))
	case "i32":
		return printScalar(mem.Read[int32](acc, addr))
	case "i64":
		return printScalar(mem.Read[int64](acc, addr))
	case "f32":
		return printScalar(mem.Read[float32](acc, addr))
	case "f64":
		return printScalar(mem.Read[float64](acc, addr))
	case "string":
		s, err := acc.ReadString(addr, target.Size(length), mem.UTF8)
		if err != nil {
			return err
		}
		fmt.Printf("%q\n", s)
		return nil
	case "bytes":
		data, err := acc.ReadBytes(addr, target.Size(length))
		if err != nil {
			return err
		}
		options := hexdump.DefaultOptions()
		options.Base = uint64(addr)
		fmt.Print(hexdump.Dump(data, options))
		return nil
	case "matrix":
		return readMatrix(acc, addr, world, screen)
	default:
		return fmt.Errorf("unknown type %q", typ)
	}
}

func printScalar[T mem.Scalar](v T, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", v)
	return nil
}

func readMatrix(acc *mem.Accessor, addr target.Address, world, screen string) error {
	m, err := acc.ReadMatrix4x4(addr)
	if err != nil {
		return err
	}
	for row := 0; row < 4; row++ {
		r := m.Row(row)
		fmt.Printf("  [%12.4f %12.4f %12.4f %12.4f]\n", r[0], r[1], r[2], r[3])
	}
	if world == "" {
		return nil
	}

	var point target.Vector3
	if _, err := fmt.Sscanf(world, "%f,%f,%f", &point.X, &point.Y, &point.Z); err != nil {
		return fmt.Errorf("world point %q: %w", world, err)
	}
	var width, height int
	if _, err := fmt.Sscanf(screen, "%dx%d", &width, &height); err != nil {
		return fmt.Errorf("viewport %q: %w", screen, err)
	}

	pos, ok := w2s.Project(m, point, width, height, w2s.DirectX)
	if !ok {
		fmt.Println("Point is behind the camera")
		return nil
	}
	fmt.Printf("Screen: (%.1f, %.1f)\n", pos.X, pos.Y)
	return nil
}
