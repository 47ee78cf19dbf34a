package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/labtrend-cli/internal/utils"
)

// MaxLogBytes caps the size of a submitted log file.
const MaxLogBytes = 4 << 20

// Reader turns the bytes of a submitted log file into text.
type Reader interface {
	CanRead(filename string) bool
	Read(content []byte) (string, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ReadLogFile selects a reader based on filename and returns the log text.
func ReadLogFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat log: %w", err)
	}
	if info.Size() > MaxLogBytes {
		return "", fmt.Errorf("log %s is %d bytes (limit %d): %w", path, info.Size(), MaxLogBytes, ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(data)
		}
	}
	// Fallback to plain text unless the content is clearly binary
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return utils.NormalizeNewlines(string(data)), nil
}

func init() {
	Register(textReader{})
	Register(binaryReader{})
}

var (
	// ErrUnsupported indicates a file that is not a text log.
	ErrUnsupported = errors.New("unsupported log format")
	// ErrTooLarge indicates a log file above MaxLogBytes.
	ErrTooLarge = errors.New("log file too large")
)
