package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// OutputSuffix is appended to the base name of resampled files.
const OutputSuffix = "_resampled"

// OutputName returns the output path for input inside outDir:
// dir/brain.bisobj becomes outDir/brain_resampled.bisobj.
func OutputName(input, outDir string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(outDir, strings.TrimSuffix(base, ext)+OutputSuffix+ext)
}

// IsOutput reports whether path looks like a file OutputName produced.
func IsOutput(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), OutputSuffix)
}

// WriteFile writes data to path atomically under the directory's lock file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	lock, err := newFileLock(dir)
	if err != nil {
		return errors.Wrap(errors.PhaseIO, errors.KindInvalidInput, err, "prepare output directory")
	}
	if err := lock.Lock(); err != nil {
		return errors.Wrap(errors.PhaseIO, errors.KindInvalidInput, err, "lock output directory")
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.PhaseIO, errors.KindInvalidInput, err, "create temporary output")
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrap(errors.PhaseIO, errors.KindInvalidInput, err, "write output")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.PhaseIO, errors.KindInvalidInput, err, "write output")
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.PhaseIO, errors.KindInvalidInput, err, "rename output")
	}
	return nil
}
