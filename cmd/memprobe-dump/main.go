package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"memprobe/attach"
	"memprobe/hexdump"
	"memprobe/mem"
	"memprobe/snapshot"
	"memprobe/target"
)

func main() {
	procFlag := flag.String("proc", "", "Process name to attach to")
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (alternative to --proc)")
	moduleFlag := flag.String("module", "", "Module to capture, e.g. 'client.dll'")
	outFlag := flag.String("out", "", "Directory to save the capture into")
	loadFlag := flag.String("load", "", "Inspect a previously saved capture instead of taking one")
	headFlag := flag.Int("head", 256, "Bytes shown when inspecting a capture")
	flag.Parse()

	if *loadFlag != "" {
		inspect(*loadFlag, *headFlag)
		return
	}

	if *moduleFlag == "" || *outFlag == "" {
		fmt.Println("Error: --module and --out are required (or --load to inspect)")
		flag.Usage()
		os.Exit(1)
	}
	if (*procFlag == "") == (*pidFlag == 0) {
		fmt.Println("Error: exactly one of --proc and --pid is required")
		flag.Usage()
		os.Exit(1)
	}

	handle, err := open(*procFlag, *pidFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer handle.Close()

	mod, ok, err := findModule(handle, *moduleFlag)
	if err != nil {
		fmt.Printf("Error listing modules: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Printf("Module %s not loaded\n", *moduleFlag)
		os.Exit(2)
	}

	acc := mem.New(handle)
	data, err := acc.ReadBytes(mod.Base, target.Size(mod.Size))
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", mod, err)
		os.Exit(1)
	}

	region := snapshot.NewRegion(mod.Base, data, mod)
	if err := region.Save(*outFlag); err != nil {
		fmt.Printf("Error saving capture: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s (%d bytes) to %s\n", mod, len(data), *outFlag)
}

func open(name string, pid int) (target.Handle, error) {
	if pid != 0 {
		return attach.ByPid(pid)
	}
	return attach.ByName(name)
}

func findModule(h target.Handle, name string) (target.ModuleInfo, bool, error) {
	mods, err := h.ListModules()
	if err != nil {
		return target.ModuleInfo{}, false, err
	}
	for _, m := range mods {
		if strings.EqualFold(m.Name, name) {
			return m, true, nil
		}
	}
	return target.ModuleInfo{}, false, nil
}

func inspect(dirname string, head int) {
	region, err := snapshot.Load(dirname)
	if err != nil {
		fmt.Printf("Error loading capture: %v\n", err)
		os.Exit(1)
	}
	defer region.Close()

	fmt.Printf("Capture: base %s, %d bytes\n", region.Base(), region.Len())
	mods, err := region.ListModules()
	if err != nil {
		fmt.Printf("Error listing modules: %v\n", err)
		os.Exit(1)
	}
	for _, m := range mods {
		fmt.Printf("  %s\n", m)
	}

	if head > region.Len() {
		head = region.Len()
	}
	data, err := region.ReadRaw(region.Base(), target.Size(head))
	if err != nil {
		fmt.Printf("Error reading capture: %v\n", err)
		os.Exit(1)
	}
	options := hexdump.DefaultOptions()
	options.Base = uint64(region.Base())
	fmt.Print(hexdump.Dump(data, options))
}
