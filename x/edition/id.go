package edition

import (
	"strconv"
	"strings"

	"github.com/iov-one/weave-editions/errors"
)

// Delimiter separates the series identifier from the edition number.
const Delimiter = ":"

// FormatID returns the identifier of the n-th edition of a series.
func FormatID(seriesID string, n uint64) string {
	return seriesID + Delimiter + strconv.FormatUint(n, 10)
}

// ParseID splits an edition identifier into its series identifier and its
// 1-based edition number.
func ParseID(id string) (string, uint64, error) {
	i := strings.LastIndex(id, Delimiter)
	if i <= 0 || i == len(id)-1 {
		return "", 0, errors.Wrapf(errors.ErrInput, "malformed edition id %q", id)
	}
	n, err := strconv.ParseUint(id[i+1:], 10, 64)
	if err != nil || n == 0 {
		return "", 0, errors.Wrapf(errors.ErrInput, "malformed edition number in %q", id)
	}
	return id[:i], n, nil
}
