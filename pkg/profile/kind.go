package profile

import (
	"fmt"
	"strings"
)

// Kind is the inferred semantic category of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindBoolean
	KindString
	KindDatetime

	numKinds
)

var kindNames = [numKinds]string{
	KindNumeric:  "numeric",
	KindBoolean:  "boolean",
	KindString:   "string",
	KindDatetime: "datetime",
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindNumeric, KindBoolean, KindString, KindDatetime}
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || k >= numKinds {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a case-insensitive kind name.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}
