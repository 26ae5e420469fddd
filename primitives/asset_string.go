package primitives

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAssetAmount parses spec §6's asset textual format,
// "<integer>.<fraction> <space>.<type>.<instance>", into a fixed-precision
// Amount. The fractional part may be shorter than six digits (it is
// zero-padded on the right) but never longer.
func ParseAssetAmount(s string) (Amount, error) {
	fields := strings.SplitN(s, " ", 2)
	if len(fields) != 2 {
		return Amount{}, fmt.Errorf("primitives: %q is not \"<amount> <space>.<type>.<instance>\"", s)
	}
	id, err := parseObjectIDString(fields[1])
	if err != nil {
		return Amount{}, err
	}

	numberParts := strings.SplitN(fields[0], ".", 2)
	integer, err := strconv.ParseInt(numberParts[0], 10, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("primitives: invalid integer part %q: %w", numberParts[0], err)
	}

	fraction := int64(0)
	if len(numberParts) == 2 {
		fracStr := numberParts[1]
		if len(fracStr) > 6 {
			return Amount{}, fmt.Errorf("primitives: fractional part %q has more than 6 digits", fracStr)
		}
		parsed, err := strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return Amount{}, fmt.Errorf("primitives: invalid fractional part %q: %w", fracStr, err)
		}
		for i := len(fracStr); i < 6; i++ {
			parsed *= 10
		}
		fraction = parsed
	}

	amount, ok := AmountFromDecimal(id, integer, fraction)
	if !ok {
		return Amount{}, fmt.Errorf("primitives: amount %q overflows", s)
	}
	return amount, nil
}

// parseObjectIDString parses the "<space>.<type>.<instance>" form
// ObjectID.String produces.
func parseObjectIDString(s string) (ObjectID, error) {
	fields := strings.Split(s, ".")
	if len(fields) != 3 {
		return ObjectID{}, fmt.Errorf("primitives: %q is not a \"space.type.instance\" identifier", s)
	}
	space, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return ObjectID{}, fmt.Errorf("primitives: invalid space %q: %w", fields[0], err)
	}
	typ, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return ObjectID{}, fmt.Errorf("primitives: invalid type %q: %w", fields[1], err)
	}
	instance, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return ObjectID{}, fmt.Errorf("primitives: invalid instance %q: %w", fields[2], err)
	}
	return NewObjectID(Space(space), Type(typ), instance)
}

// FullString renders the amount in spec §6's combined format: its decimal
// value followed by its asset identifier, e.g. "123.456000 2.28.0".
func (a Amount) FullString() string {
	return a.DecimalString() + " " + a.Asset.String()
}
