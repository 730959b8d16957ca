package toolstest

import (
	"os"

	"github.com/cockroachdb/errors"
)

// ExistsBlob reports whether filename exists and is not empty
func ExistsBlob(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.Size() > 0
}

func LoadBlob(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", filename)
	}

	if len(data) == 0 {
		return nil, errors.Newf("trying to load blob %q of size zero", filename)
	}
	return data, nil
}

func SaveBlob(filename string, data []byte) error {
	if len(data) == 0 {
		return errors.Newf("trying to save blob %q of size zero", filename)
	}

	err := os.WriteFile(filename, data, 0o644)
	if err != nil {
		return errors.Wrapf(err, "could not write %q", filename)
	}
	return nil
}
