package release

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Version is a dotted numeric kernel version like 5.11.15
type Version struct {
	Components []int
	Text       string
}

// ParseVersion splits a version on dots; every component has to be a non-negative integer
func ParseVersion(s string) (Version, error) {

	if s == "" {
		return Version{}, errors.New("version is empty")
	}

	parts := strings.Split(s, ".")
	components := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || strings.HasPrefix(p, "+") {
			return Version{}, errors.Errorf("version %q has non-numeric component %q", s, p)
		}
		components[i] = n
	}

	return Version{
		Components: components,
		Text:       s,
	}, nil
}

func (v Version) String() string {
	return v.Text
}

// Compare returns -1, 0 or 1; a missing trailing component counts as zero
func (v Version) Compare(other Version) int {

	length := len(v.Components)
	if len(other.Components) > length {
		length = len(other.Components)
	}

	for i := 0; i < length; i++ {
		a, b := componentAt(v.Components, i), componentAt(other.Components, i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}

	return 0
}

func componentAt(components []int, i int) int {
	if i < len(components) {
		return components[i]
	}
	return 0
}

// CompareVersions parses both versions and compares them
func CompareVersions(a, b string) (int, error) {

	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}

	return va.Compare(vb), nil
}
