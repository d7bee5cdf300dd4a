package model

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FieldReader is just a simple reader for whitespace-delimited files.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data. Lines
// starting with # are comments.
func NewFieldReader(data string) *FieldReader {
	lines := strings.Split(data, "\n")
	fields := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if len(ln) < 1 || ln[0] == '#' {
			continue
		}
		fields = append(fields, strings.Fields(ln)...)
	}
	return &FieldReader{0, fields}
}

// Read returns the next space-delimited field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ParseEvidence turns name=value tokens into an evidence map. A variable
// may only be named once.
func ParseEvidence(tokens []string) (map[string]string, error) {
	evid := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		parts := strings.SplitN(tok, "=", 2)
		if len(parts) != 2 || len(parts[0]) < 1 || len(parts[1]) < 1 {
			return nil, errors.Wrapf(ErrConfiguration, "Evidence %q must look like name=value", tok)
		}

		name := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.ToLower(strings.TrimSpace(parts[1]))
		if prev, ok := evid[name]; ok {
			return nil, errors.Wrapf(ErrConfiguration, "Evidence for %s given twice (%s, %s)", name, prev, val)
		}
		evid[name] = val
	}
	return evid, nil
}

// ReadEvidence parses an evidence buffer: name=value tokens separated by any
// whitespace.
func ReadEvidence(data []byte) (map[string]string, error) {
	fr := NewFieldReader(string(data))
	tokens := make([]string, 0, len(fr.Fields))
	for {
		tok, err := fr.Read()
		if err == io.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return ParseEvidence(tokens)
}

// ReadEvidenceFile reads and parses an evidence file
func ReadEvidenceFile(filename string) (map[string]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ evidence from %s", filename)
	}

	evid, err := ReadEvidence(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE evidence in %s", filename)
	}
	return evid, nil
}
