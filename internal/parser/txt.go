package parser

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

type textReader struct{}

func (textReader) CanRead(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".log", ".csv", ".tsv", ".dat":
		return true
	}
	return false
}

func (textReader) Read(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	return utils.NormalizeNewlines(string(content)), nil
}

// binaryReader rejects office and archive formats students sometimes upload
// instead of the exported log.
type binaryReader struct{}

func (binaryReader) CanRead(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls", ".docx", ".pdf", ".zip":
		return true
	}
	return false
}

func (binaryReader) Read(_ []byte) (string, error) {
	return "", ErrUnsupported
}
