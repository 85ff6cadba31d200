//go:build linux

// Package target_linux attaches to Linux processes and implements
// target.Handle over process_vm_readv/writev, with the module list
// assembled from /proc/[pid]/maps.
package target_linux

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"memprobe/target"
)

// Handle is a live attachment to one Linux process. Access is
// serialized internally with a mutex, so one Handle may be shared
// between goroutines; Close invalidates it.
type Handle struct {
	pid  int
	base target.Address
	log  *logger.Logger

	mu     sync.Mutex
	closed bool
}

var _ target.Handle = (*Handle)(nil)

func (h *Handle) Pid() int {
	return h.pid
}

// BaseAddress returns the load address of the target's main
// executable image, captured at attach time.
func (h *Handle) BaseAddress() target.Address {
	return h.base
}

func (h *Handle) ReadRaw(addr target.Address, size target.Size) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, target.ErrHandleInvalid
	}
	if size == 0 {
		return []byte{}, nil
	}
	return vmRead(h.pid, addr, size)
}

func (h *Handle) WriteRaw(addr target.Address, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return target.ErrHandleInvalid
	}
	if len(data) == 0 {
		return nil
	}
	return vmWrite(h.pid, addr, data)
}

func (h *Handle) ListModules() ([]target.ModuleInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, target.ErrHandleInvalid
	}
	return readModules(h.pid)
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.log.Infoln("detached")
	return nil
}

// readModules parses /proc/[pid]/maps and coalesces the file-backed
// mappings of each object into one module: base is the lowest mapping
// address, size spans to the highest end.
func readModules(pid int) ([]target.ModuleInfo, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, fmt.Errorf("open maps for pid %d: %w", pid, err)
	}
	defer f.Close()

	type span struct {
		start, end uint64
	}
	spans := make(map[string]*span)
	var order []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 || !strings.HasPrefix(fields[5], "/") {
			continue
		}
		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}
		start, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil {
			continue
		}

		path := fields[5]
		if s, ok := spans[path]; ok {
			if start < s.start {
				s.start = start
			}
			if end > s.end {
				s.end = end
			}
		} else {
			spans[path] = &span{start: start, end: end}
			order = append(order, path)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read maps for pid %d: %w", pid, err)
	}

	mods := make([]target.ModuleInfo, 0, len(order))
	for _, path := range order {
		s := spans[path]
		mods = append(mods, target.ModuleInfo{
			Name: filepath.Base(path),
			Base: target.Address(s.start),
			Size: s.end - s.start,
		})
	}
	sort.Slice(mods, func(i, j int) bool {
		return mods[i].Base < mods[j].Base
	})
	return mods, nil
}

func newHandle(pid int, name string) (*Handle, error) {
	h := &Handle{
		pid: pid,
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("target-%d", pid))),
	}

	// Main image base: the module whose name matches the process, or
	// failing that the lowest-addressed one.
	mods, err := readModules(pid)
	if err != nil {
		return nil, err
	}
	for _, m := range mods {
		if m.Name == name {
			h.base = m.Base
			break
		}
	}
	if h.base == 0 && len(mods) > 0 {
		h.base = mods[0].Base
	}

	h.log.Infoln("attached to", name, "base", h.base.String())
	return h, nil
}
