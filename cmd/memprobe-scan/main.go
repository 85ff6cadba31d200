package main

import (
	"flag"
	"fmt"
	"os"

	"memprobe/attach"
	"memprobe/hexdump"
	"memprobe/mem"
	"memprobe/sigscan"
	"memprobe/target"
)

func main() {
	procFlag := flag.String("proc", "", "Process name to attach to")
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (alternative to --proc)")
	moduleFlag := flag.String("module", "", "Module to scan, e.g. 'client.dll'")
	patternFlag := flag.String("pattern", "", "Signature, e.g. '48 8B 05 ? ? ? ? 48 85 C0'")
	offsetFlag := flag.Int64("offset", 0, "Bytes added to the match start before interpretation")
	extraFlag := flag.Int64("extra", 0, "Bytes added unconditionally to the final address")
	relativeFlag := flag.Bool("relative", false, "Resolve a rel32 displacement at match+offset")
	allFlag := flag.Bool("all", false, "Report every match instead of the first")
	contextFlag := flag.Int("context", 16, "Context bytes shown around each match")
	flag.Parse()

	if *moduleFlag == "" || *patternFlag == "" {
		fmt.Println("Error: --module and --pattern are required")
		flag.Usage()
		os.Exit(1)
	}
	if (*procFlag == "") == (*pidFlag == 0) {
		fmt.Println("Error: exactly one of --proc and --pid is required")
		flag.Usage()
		os.Exit(1)
	}

	pat, err := sigscan.Parse(*patternFlag)
	if err != nil {
		fmt.Printf("Error parsing pattern: %v\n", err)
		os.Exit(1)
	}

	handle, err := open(*procFlag, *pidFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer handle.Close()

	acc := mem.New(handle)
	scanner := sigscan.New(acc)

	if *allFlag {
		matches, err := scanner.FindAllInModule(*moduleFlag, pat)
		if err != nil {
			fmt.Printf("Error scanning: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Found %d matches:\n", len(matches))
		for _, m := range matches {
			printMatch(acc, m, pat.Len(), *contextFlag)
		}
		return
	}

	opts := []sigscan.Option{
		sigscan.WithOffset(*offsetFlag),
		sigscan.WithExtra(*extraFlag),
	}
	if *relativeFlag {
		opts = append(opts, sigscan.WithRelative())
	}

	addr, found, err := scanner.FindInModule(*moduleFlag, pat, opts...)
	if err != nil {
		fmt.Printf("Error scanning: %v\n", err)
		os.Exit(1)
	}
	if !found {
		fmt.Println("Pattern not found")
		os.Exit(2)
	}
	fmt.Printf("Resolved address: %s\n", addr)
	printMatch(acc, addr, pat.Len(), *contextFlag)
}

func open(name string, pid int) (target.Handle, error) {
	if pid != 0 {
		return attach.ByPid(pid)
	}
	return attach.ByName(name)
}

func printMatch(acc *mem.Accessor, addr target.Address, length, context int) {
	start := addr - target.Address(context)
	size := target.Size(context*2 + length)
	data, err := acc.ReadBytes(start, size)
	if err != nil {
		fmt.Printf("  (context unreadable: %v)\n", err)
		return
	}
	options := hexdump.DefaultOptions()
	options.Base = uint64(start)
	options.HighlightStart = context
	options.HighlightEnd = context + length
	fmt.Print(hexdump.Dump(data, options))
}
