// Package corpus reads the static resource files (word list, n-gram counts)
// the analysis engine is loaded from.
package corpus

import (
	"bytes"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MapFile maps path into memory read-only and returns the data together with
// a release function. The mapping stays valid until release is called.
func MapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat corpus %s: %w", path, err)
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, nil, fmt.Errorf("corpus %s is empty", path)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mmap corpus %s: %w", path, err)
	}
	release := func() error {
		uerr := m.Unmap()
		cerr := f.Close()
		if uerr != nil {
			return uerr
		}
		return cerr
	}
	return m, release, nil
}

// EachLine calls fn for every non-empty line in data. A non-nil error from fn
// stops the walk and is returned.
func EachLine(data []byte, fn func(line string) error) error {
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if err := fn(string(line)); err != nil {
			return err
		}
	}
	return nil
}
