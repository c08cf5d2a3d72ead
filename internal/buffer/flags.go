package buffer

import (
	"fmt"
	"strings"
)

// Flags describe what a consumer can handle, with the bit values of the
// native buffer protocol (PyBUF_*).
type Flags int

// Request flags.
const (
	FlagSimple      Flags = 0
	FlagWritable    Flags = 0x0001
	FlagFormat      Flags = 0x0004
	FlagND          Flags = 0x0008
	FlagStrides     Flags = 0x0010 | FlagND
	FlagCContiguous Flags = 0x0020 | FlagStrides

	FlagRecords = FlagStrides | FlagWritable | FlagFormat
	FlagFull    = FlagRecords
)

// Has reports whether every bit of other is set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// requiresContiguous reports whether the consumer needs row-major data.
func (f Flags) requiresContiguous() bool {
	return !f.Has(FlagStrides) || f.Has(FlagCContiguous)
}

// String lists the set flags, e.g. "WRITABLE|FORMAT|STRIDES".
func (f Flags) String() string {
	if f == FlagSimple {
		return "SIMPLE"
	}
	var parts []string
	if f.Has(FlagWritable) {
		parts = append(parts, "WRITABLE")
	}
	if f.Has(FlagFormat) {
		parts = append(parts, "FORMAT")
	}
	switch {
	case f.Has(FlagCContiguous):
		parts = append(parts, "C_CONTIGUOUS")
	case f.Has(FlagStrides):
		parts = append(parts, "STRIDES")
	case f.Has(FlagND):
		parts = append(parts, "ND")
	}
	return strings.Join(parts, "|")
}

var flagNames = map[string]Flags{
	"simple":       FlagSimple,
	"writable":     FlagWritable,
	"format":       FlagFormat,
	"nd":           FlagND,
	"strides":      FlagStrides,
	"c_contiguous": FlagCContiguous,
	"records":      FlagRecords,
	"full":         FlagFull,
}

// ParseFlags parses a "|" or "," separated list of flag names, as
// printed by String. Names are case-insensitive and "-" may stand in
// for "_".
func ParseFlags(s string) (Flags, error) {
	var f Flags
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
	for _, name := range fields {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
		bits, ok := flagNames[key]
		if !ok {
			return 0, fmt.Errorf("unknown buffer flag %q", name)
		}
		f |= bits
	}
	return f, nil
}
