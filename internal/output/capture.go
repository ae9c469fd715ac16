package output

import (
	"fmt"
	"os"
)

// OpenCapture creates or truncates the capture file. Writes to an
// *os.File are unbuffered, so every trace fragment reaches the file as
// soon as it is written.
func OpenCapture(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't open capture file '%s': %w", path, err)
	}
	return f, nil
}
