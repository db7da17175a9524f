package cmd

import (
	"bytes"
	"strconv"
	"strings"
)

const corpusHeader = "go test fuzz v1"

// decodeCorpusEntry extracts the input of a single []byte argument from a
// file in the go test fuzz corpus format. ok is false for anything else,
// in which case the file is taken as a raw image.
func decodeCorpusEntry(data []byte) ([]byte, bool) {
	header, body, found := bytes.Cut(data, []byte("\n"))
	if !found || strings.TrimSpace(string(header)) != corpusHeader {
		return nil, false
	}
	line := strings.TrimSpace(string(body))
	if !strings.HasPrefix(line, "[]byte(") || !strings.HasSuffix(line, ")") {
		return nil, false
	}
	quoted := strings.TrimSuffix(strings.TrimPrefix(line, "[]byte("), ")")
	value, err := strconv.Unquote(quoted)
	if err != nil {
		return nil, false
	}
	return []byte(value), true
}
