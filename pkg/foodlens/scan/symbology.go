package scan

import (
	"fmt"
	"strings"
)

// Symbology is a barcode format the scanner accepts. The set is closed: a
// recognition result of any other type is rejected.
type Symbology string

const (
	QR      Symbology = "qr"
	EAN13   Symbology = "ean13"
	EAN8    Symbology = "ean8"
	UPCA    Symbology = "upc_a"
	UPCE    Symbology = "upc_e"
	Code128 Symbology = "code128"
	Code39  Symbology = "code39"
)

// Supported lists every accepted symbology in display order.
var Supported = []Symbology{QR, EAN13, EAN8, UPCA, UPCE, Code128, Code39}

// aliases maps the names other recognition engines report onto the canonical
// lowercase identifiers.
var aliases = map[string]Symbology{
	"qr":              QR,
	"qrcode":          QR,
	"qr_code":         QR,
	"org.iso.qrcode":  QR,
	"ean13":           EAN13,
	"ean_13":          EAN13,
	"ean-13":          EAN13,
	"org.gs1.ean-13":  EAN13,
	"ean8":            EAN8,
	"ean_8":           EAN8,
	"ean-8":           EAN8,
	"org.gs1.ean-8":   EAN8,
	"upc_a":           UPCA,
	"upca":            UPCA,
	"upc-a":           UPCA,
	"upc_e":           UPCE,
	"upce":            UPCE,
	"upc-e":           UPCE,
	"org.gs1.upc-e":   UPCE,
	"code128":         Code128,
	"code_128":        Code128,
	"code-128":        Code128,
	"org.iso.code128": Code128,
	"code39":          Code39,
	"code_39":         Code39,
	"code-39":         Code39,
	"org.iso.code39":  Code39,
}

// ParseSymbology resolves a recognition engine type name.
func ParseSymbology(name string) (Symbology, error) {
	if s, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedSymbology, name)
}

// String returns the canonical identifier.
func (s Symbology) String() string {
	return string(s)
}

// FixedDigits returns the exact digit count a payload must have, or 0 when the
// symbology has no shape constraint. Only EAN-13 is checked.
func (s Symbology) FixedDigits() int {
	if s == EAN13 {
		return 13
	}
	return 0
}

// Set is a subset of Supported.
type Set map[Symbology]struct{}

// NewSet builds a Set from names, rejecting anything outside the closed list.
// An empty input yields every supported symbology.
func NewSet(names ...string) (Set, error) {
	set := make(Set, len(Supported))
	if len(names) == 0 {
		for _, s := range Supported {
			set[s] = struct{}{}
		}
		return set, nil
	}
	for _, name := range names {
		s, err := ParseSymbology(name)
		if err != nil {
			return nil, err
		}
		set[s] = struct{}{}
	}
	return set, nil
}

// Contains reports whether s is in the set.
func (set Set) Contains(s Symbology) bool {
	_, ok := set[s]
	return ok
}

// Names returns the set's members in Supported order.
func (set Set) Names() []string {
	out := make([]string, 0, len(set))
	for _, s := range Supported {
		if set.Contains(s) {
			out = append(out, s.String())
		}
	}
	return out
}
