package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultPages is used when no target page length is given.
const DefaultPages PageCount = "1"

// PageCount is a target page length exactly as the caller supplied it.
// Browser forms post it as a string, other clients as a number; both are
// rendered into the prompt unchanged.
type PageCount string

// Pages converts an integer page count.
func Pages(n int) PageCount {
	return PageCount(strconv.Itoa(n))
}

func (p PageCount) String() string { return string(p) }

// UnmarshalJSON accepts a number or a string. null leaves p unchanged.
func (p *PageCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PageCount(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*p = PageCount(n.String())
		return nil
	default:
		return fmt.Errorf("target page length must be a number or string, got %s", b)
	}
}
