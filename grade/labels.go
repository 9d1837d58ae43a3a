package grade

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ClassEncoder is the bundled label encoder: Classes[i] is the label of
// class index i.
type ClassEncoder struct {
	Classes []string `msgpack:"classes"`
}

// InverseTransform returns the label for class index idx.
func (e *ClassEncoder) InverseTransform(idx int) (string, error) {
	if idx < 0 || idx >= len(e.Classes) {
		return "", fmt.Errorf("class index %d outside encoder classes (%d known)", idx, len(e.Classes))
	}
	return e.Classes[idx], nil
}

var gradeByIndex = map[int]string{0: "a", 1: "b", 2: "c", 3: "d", 4: "e"}

// labelFor maps a class index to a grade label. Without an encoder the fixed
// a..e table is used; an encoder that cannot decode idx yields 'a'+idx.
func labelFor(enc LabelEncoder, idx int) string {
	if enc == nil {
		if g, ok := gradeByIndex[idx]; ok {
			return g
		}
		return FallbackGrade
	}
	label, err := enc.InverseTransform(idx)
	if err != nil {
		logrus.Debugf("label encoder failed, deriving letter from index: %v", err)
		return string(rune('a' + idx))
	}
	return label
}

// normalizeGrade lowercases a label and forces it into a..e.
func normalizeGrade(label string) string {
	g := strings.ToLower(strings.TrimSpace(label))
	if len(g) == 1 && g[0] >= 'a' && g[0] <= 'e' {
		return g
	}
	logrus.Warnf("label %q is not a grade between a and e; using %q", label, FallbackGrade)
	return FallbackGrade
}
