package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/callviz/pkg/callgraph"
	"github.com/matzehuels/callviz/pkg/errors"
)

// ImportGraph reads the raw call-graph text at path.
func ImportGraph(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "graph %s", path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read graph %s", path)
	}
	return string(data), nil
}

// ReadGraph reads raw call-graph text from r and parses it.
func ReadGraph(r io.Reader) (callgraph.NodeSet, []callgraph.Edge, error) {
	nodes, edges, err := callgraph.ParseReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read graph")
	}
	return nodes, edges, nil
}

// ReadCoverage decodes a JSON coverage object from r.
// Values that are not numbers are skipped. A document that is not a JSON
// object is an INVALID_INPUT error.
func ReadCoverage(r io.Reader) (map[string]float64, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode coverage")
	}

	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		var score float64
		if err := json.Unmarshal(v, &score); err != nil {
			continue
		}
		out[k] = score
	}
	return out, nil
}

// LoadCoverage reads a coverage file. A missing file or an empty path yields
// an empty mapping.
func LoadCoverage(path string) (map[string]float64, error) {
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return map[string]float64{}, err
	}
	return ReadCoverage(bytes.NewReader(data))
}

// ReadRanking decodes a ranking mapping from r. The format is detected from
// the first non-blank character: '{' selects JSON, anything else the
// "signature | score" line format.
func ReadRanking(r io.Reader) (map[string]float64, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return map[string]float64{}, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read ranking")
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
			continue
		case '{':
			return ReadCoverage(br)
		}
		return readRankingLines(br)
	}
}

func readRankingLines(r io.Reader) (map[string]float64, error) {
	out := make(map[string]float64)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if sig, score, ok := parseRankingLine(sc.Text()); ok {
			out[sig] = score
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read ranking")
	}
	return out, nil
}

func parseRankingLine(line string) (string, float64, bool) {
	i := strings.LastIndex(line, "|")
	if i < 0 {
		return "", 0, false
	}
	sig := strings.TrimSpace(line[:i])
	score, err := strconv.ParseFloat(strings.TrimSpace(line[i+1:]), 64)
	if sig == "" || err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return "", 0, false
	}
	return sig, score, true
}

// LoadRanking reads a ranking file. A missing file or an empty path yields
// an empty mapping.
func LoadRanking(path string) (map[string]float64, error) {
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return map[string]float64{}, err
	}
	return ReadRanking(bytes.NewReader(data))
}

// readOptional reads path, reporting ok=false when the path is empty or the
// file does not exist or cannot be accessed.
func readOptional(path string) ([]byte, bool, error) {
	if path == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) || os.IsPermission(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, true, nil
}
