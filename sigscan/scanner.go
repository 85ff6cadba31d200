package sigscan

import (
	"fmt"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"memprobe/mem"
	"memprobe/target"
)

// Scanner searches module images for signatures through an Accessor.
type Scanner struct {
	acc *mem.Accessor
	log *logger.Logger
}

// New creates a Scanner over the given accessor.
func New(acc *mem.Accessor) *Scanner {
	return &Scanner{
		acc: acc,
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "sigscan")),
	}
}

type config struct {
	offset   int64
	extra    int64
	relative bool
}

// Option adjusts how a match is turned into a final address.
type Option func(*config)

// WithOffset adds n bytes to the match start before any further
// interpretation (the point the rel32 read happens at when combined
// with WithRelative).
func WithOffset(n int64) Option {
	return func(c *config) {
		c.offset = n
	}
}

// WithExtra adds n unconditionally to the final address. Ignored in
// relative mode, where the displacement math defines the result.
func WithExtra(n int64) Option {
	return func(c *config) {
		c.extra = n
	}
}

// WithRelative resolves the match as an x86 rel32 reference: a 4-byte
// signed displacement is read at match+offset and the final address
// is match+offset+4+displacement (the standard relative call/lea
// resolution).
func WithRelative() Option {
	return func(c *config) {
		c.relative = true
	}
}

// FindInModule scans the named module for the first occurrence of the
// pattern and returns the adjusted address. A missing module or an
// absent pattern is a normal result (found=false, nil error); only a
// failure to read the module image or the displacement is an error.
// Candidate positions are tried in ascending order, so the lowest
// matching address always wins.
func (s *Scanner) FindInModule(module string, pat Pattern, opts ...Option) (target.Address, bool, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	mod, ok, err := s.findModule(module)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		s.log.Debugln("module not loaded:", module)
		return 0, false, nil
	}

	data, err := s.acc.ReadBytes(mod.Base, target.Size(mod.Size))
	if err != nil {
		return 0, false, fmt.Errorf("read image of %s at %s: %w", mod.Name, mod.Base, err)
	}

	offs := matchOffsets(data, pat, true)
	if len(offs) == 0 {
		s.log.Debugln("pattern", pat.String(), "not found in", mod.Name)
		return 0, false, nil
	}
	match := mod.Base + target.Address(offs[0])
	s.log.Infoln("pattern", pat.String(), "matched in", mod.Name, "at", match.String())

	return s.adjust(match, c)
}

// FindAllInModule returns every match start in the named module, in
// ascending address order, with no post-match adjustment. A missing
// module yields an empty result, not an error.
func (s *Scanner) FindAllInModule(module string, pat Pattern) ([]target.Address, error) {
	mod, ok, err := s.findModule(module)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	data, err := s.acc.ReadBytes(mod.Base, target.Size(mod.Size))
	if err != nil {
		return nil, fmt.Errorf("read image of %s at %s: %w", mod.Name, mod.Base, err)
	}

	offs := matchOffsets(data, pat, false)
	out := make([]target.Address, len(offs))
	for i, off := range offs {
		out[i] = mod.Base + target.Address(off)
	}
	s.log.Infoln("pattern", pat.String(), "matched", len(out), "times in", mod.Name)
	return out, nil
}

// adjust applies the configured offset/extra/relative translation to
// a raw match address.
func (s *Scanner) adjust(match target.Address, c config) (target.Address, bool, error) {
	at := match + target.Address(c.offset)
	if !c.relative {
		return at + target.Address(c.extra), true, nil
	}
	disp, err := mem.Read[int32](s.acc, at)
	if err != nil {
		return 0, false, fmt.Errorf("read rel32 displacement at %s: %w", at, err)
	}
	return at + 4 + target.Address(int64(disp)), true, nil
}

func (s *Scanner) findModule(name string) (target.ModuleInfo, bool, error) {
	mods, err := s.acc.Handle().ListModules()
	if err != nil {
		return target.ModuleInfo{}, false, fmt.Errorf("list modules: %w", err)
	}
	for _, m := range mods {
		if strings.EqualFold(m.Name, name) {
			return m, true, nil
		}
	}
	return target.ModuleInfo{}, false, nil
}
