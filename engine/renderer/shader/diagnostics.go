package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/cabin/common"
)

// listingSeparator sits between a line number and the line text in NumberLines output.
const listingSeparator = " | "

// NumberLines renders source with every line prefixed by its 1-based line number, right
// aligned to the width of the largest number. A trailing newline does not produce an extra
// numbered line. Empty input yields an empty string.
//
// Parameters:
//   - source: the text to number, typically ProcessResult.Source of a failing stage
//
// Returns:
//   - string: the numbered listing, one line per input line, each ending in a newline
func NumberLines(source string) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	width := common.Digits(len(lines))

	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%*d%s%s\n", width, i+1, listingSeparator, line)
	}
	return sb.String()
}
