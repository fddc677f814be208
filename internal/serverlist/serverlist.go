// Package serverlist parses DNS server list files and writes the filtered
// results back out. A server list is a plain text file with one server per
// line: an IPv4 or IPv6 literal followed by whitespace and an arbitrary
// hostname or comment, which is preserved verbatim. Blank lines and lines
// starting with '#' are ignored.
package serverlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// addrPattern matches an IPv4 or IPv6 literal at the start of a line,
// followed by at least one whitespace character. This is a plausibility
// check only; addresses that merely look right are weeded out downstream
// when their probe fails.
var addrPattern = regexp.MustCompile(`^([0-9a-fA-F:.]+)\s+`)

// Candidate is a parsed, not-yet-tested server address paired with the
// original input line it came from. Candidates are immutable after parsing.
type Candidate struct {
	Addr   string // validated IP literal
	Line   string // original line, trimmed, including trailing hostname/comment
	LineNo int    // 1-based line number in the input
}

// Skipped records a data line that did not yield an address. Callers surface
// these as warnings; a skipped line never aborts the run.
type Skipped struct {
	LineNo int
	Line   string
}

// Parse reads a server list and returns the candidates to probe plus the
// data lines that could not be parsed. Blank lines and '#' comments are
// dropped silently. The returned error is non-nil only for read failures,
// never for malformed lines.
func Parse(r io.Reader) ([]Candidate, []Skipped, error) {
	var (
		candidates []Candidate
		skipped    []Skipped
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		addr, ok := extractAddr(line)
		if !ok {
			skipped = append(skipped, Skipped{LineNo: lineNo, Line: line})
			continue
		}
		candidates = append(candidates, Candidate{
			Addr:   addr,
			Line:   line,
			LineNo: lineNo,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading server list: %w", err)
	}

	return candidates, skipped, nil
}

// extractAddr pulls the leading IP literal off a line. The literal must be
// followed by whitespace and must contain a '.' or ':' to be plausible.
func extractAddr(line string) (string, bool) {
	m := addrPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	addr := m[1]
	if !strings.ContainsAny(addr, ".:") {
		return "", false
	}
	return addr, true
}
