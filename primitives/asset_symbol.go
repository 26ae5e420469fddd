package primitives

import (
	"fmt"
	"regexp"
	"strings"
)

// symbolPattern implements spec §6's grammar: [A-Z][A-Z0-9.]{1,6}[A-Z0-9],
// at most one dot, length 3-8, alpha at both ends (spec §3).
var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.]{1,6}[A-Z0-9]$`)

// MaxSymbolLength and MinSymbolLength bound asset symbols (spec §3).
const (
	MinSymbolLength = 3
	MaxSymbolLength = 8
)

// ValidateSymbol checks a candidate asset symbol against spec §3/§6's
// grammar: 3-8 characters from [A-Z0-9.], at most one dot, alphabetic at
// both ends.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("primitives: symbol %q fails grammar", symbol)
	}
	if strings.Count(symbol, ".") > 1 {
		return fmt.Errorf("primitives: symbol %q has more than one dot", symbol)
	}
	first, last := symbol[0], symbol[len(symbol)-1]
	if !isAlpha(first) || !isAlpha(last) {
		return fmt.Errorf("primitives: symbol %q must start and end with a letter", symbol)
	}
	return nil
}

func isAlpha(b byte) bool { return b >= 'A' && b <= 'Z' }
