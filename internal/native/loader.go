package native

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// LoadDir recursively scans dir for shared libraries (.so, matching
// the CLI's --lib flag contract in §6) and loads each one into r.
// Walking a directory tree is the one place this package reaches for
// the standard library instead of a third-party walker: none of the
// example repos in the retrieval pack use anything but filepath.WalkDir
// for this, even ones with otherwise heavy dependency stacks.
func (r *Registry) LoadDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".so") {
			return nil
		}
		return r.LoadLibrary(path)
	})
}
