package primitives

import (
	"fmt"
	"regexp"
)

// accountNamePattern implements spec §6's grammar: lowercase letters,
// digits, hyphen, dot; length 3-16.
var accountNamePattern = regexp.MustCompile(`^[a-z0-9.-]{3,16}$`)

const (
	MinAccountNameLength = 3
	MaxAccountNameLength = 16
)

// ValidateAccountName checks a candidate account name against spec §3/§6's
// grammar.
func ValidateAccountName(name string) error {
	if !accountNamePattern.MatchString(name) {
		return fmt.Errorf("primitives: account name %q fails grammar", name)
	}
	return nil
}
