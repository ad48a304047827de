package ingest

import (
	"sort"
	"strings"
)

// numberToken returns the first maximal run of decimal digits in name,
// parsed as a non-negative integer. ok is false when the name has no digits.
func numberToken(name string) (n int, ok bool) {
	i := 0
	for i < len(name) && (name[i] < '0' || name[i] > '9') {
		i++
	}
	if i == len(name) {
		return 0, false
	}
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		n = n*10 + int(name[i]-'0')
		i++
	}
	return n, true
}

// Order sorts names naturally: by the first embedded integer ascending,
// then case-insensitively by the full name. Names without any digits sort
// after all numbered names. The result does not depend on input order.
func Order(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)

	sort.SliceStable(out, func(i, j int) bool {
		ni, iOK := numberToken(out[i])
		nj, jOK := numberToken(out[j])

		if iOK != jOK {
			return iOK // numbered names first
		}
		if iOK && ni != nj {
			return ni < nj
		}

		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}
