package callgraph

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	// edgeLineRe matches one edge declaration, optionally indented and
	// followed by an attribute block and a semicolon.
	edgeLineRe  = regexp.MustCompile(`^\s*"(<[^"]*>)"\s*->\s*"(<[^"]*>)"\s*(?:\[((?:"(?:[^"\\]|\\.)*"|[^\]"])*)\])?\s*;?\s*$`)
	labelAttrRe = regexp.MustCompile(`(?:^|[\s,])label\s*=\s*"((?:[^"\\]|\\.)*)"`)

	// labelUnescaper reverses the quoting applied to exported labels.
	labelUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`)
)

// Parse extracts the node set and edge list from raw call-graph text.
//
// Lines that are not edge declarations are ignored. Both endpoints of every
// edge are added to the node set; edges are kept in encounter order and
// duplicates are preserved.
func Parse(raw string) (NodeSet, []Edge) {
	nodes := NodeSet{}
	var edges []Edge
	for _, line := range strings.Split(raw, "\n") {
		if e, ok := parseEdgeLine(line); ok {
			nodes.Add(e.From)
			nodes.Add(e.To)
			edges = append(edges, e)
		}
	}
	return nodes, edges
}

// ParseReader is like [Parse] but reads the text from r.
// It only fails if reading from r fails.
func ParseReader(r io.Reader) (NodeSet, []Edge, error) {
	nodes := NodeSet{}
	var edges []Edge

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if e, ok := parseEdgeLine(sc.Text()); ok {
			nodes.Add(e.From)
			nodes.Add(e.To)
			edges = append(edges, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

func parseEdgeLine(line string) (Edge, bool) {
	m := edgeLineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return Edge{}, false
	}
	e := Edge{From: m[1], To: m[2]}
	if attrs := m[3]; attrs != "" {
		if lm := labelAttrRe.FindStringSubmatch(attrs); lm != nil {
			e.Label = labelUnescaper.Replace(lm[1])
		}
	}
	return e, true
}
