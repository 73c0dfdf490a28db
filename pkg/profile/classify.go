package profile

import (
	"github.com/ajitpratap0/tabprofile/pkg/dataset"
)

// Classify decides the kind of a column. Columns without values fall back
// to KindString; numeric columns whose distinct values are within {0, 1}
// are boolean flags.
func Classify(c dataset.Column) Kind {
	if c.Len() == 0 || dataset.NullCount(c) == c.Len() {
		return KindString
	}

	switch storage := c.Storage(); {
	case storage.IsNumeric():
		if onlyZeroOne(c) {
			return KindBoolean
		}
		return KindNumeric
	case storage == dataset.StorageBool:
		return KindBoolean
	case storage.IsTemporal():
		return KindDatetime
	default:
		return KindString
	}
}

func onlyZeroOne(c dataset.Column) bool {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		f, ok := dataset.ToFloat(c.Value(i))
		if !ok || (f != 0 && f != 1) {
			return false
		}
	}
	return true
}
