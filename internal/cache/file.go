package cache

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/gnolang/treduce/internal/tester"
)

// File is a Memory cache that can be snapshotted to disk, letting repeated
// reductions of the same input reuse earlier verdicts. Only verdicts of a
// deterministic test command should be persisted.
type File struct {
	Memory
	path string
}

// NewFile returns a cache backed by the gob file at path, loading any
// verdicts recorded by previous runs. A missing file is not an error.
func NewFile(path string) (*File, error) {
	c := &File{path: path}
	c.entries = make(map[string]tester.Verdict)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&c.entries); err != nil {
		return nil, fmt.Errorf("cache: decoding %s: %w", path, err)
	}
	return c, nil
}

// Save writes the current verdicts back to the cache file.
func (c *File) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("cache: creating %s: %w", c.path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(c.entries); err != nil {
		return fmt.Errorf("cache: encoding %s: %w", c.path, err)
	}
	return nil
}
