package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const scriptExt = ".php"

// DirSource reads migration scripts from a directory. Script names are file
// names without the .php extension.
type DirSource struct {
	fs  afero.Fs
	dir string
}

func NewDirSource(fs afero.Fs, dir string) *DirSource {
	return &DirSource{fs: fs, dir: dir}
}

// Dir returns the scanned directory.
func (s *DirSource) Dir() string { return s.dir }

// Path returns the file path of the named script.
func (s *DirSource) Path(name string) string {
	return filepath.Join(s.dir, name+scriptExt)
}

// ListAll returns every script name in the directory, sorted so that the
// timestamp prefixes come out oldest first.
func (s *DirSource) ListAll() ([]string, error) {
	files, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", s.dir, err)
	}

	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), scriptExt) {
			names = append(names, strings.TrimSuffix(f.Name(), scriptExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirSource) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, s.Path(name))
	return err == nil && ok
}

func (s *DirSource) Read(name string) (string, error) {
	content, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", s.Path(name), err)
	}
	return string(content), nil
}

const timestampLayout = "2006_01_02_150405"

// ParseTimestamp reads the creation time encoded in a migration name such
// as 2024_01_01_000000_create_users_table.
func ParseTimestamp(name string) (time.Time, bool) {
	if len(name) < len(timestampLayout) {
		return time.Time{}, false
	}
	ts, err := time.Parse(timestampLayout, name[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
