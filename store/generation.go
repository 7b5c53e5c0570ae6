package store

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/wire"
)

// WriteGeneration writes gen to storePath/gendata_<step>.json exactly
// once. A second write for the same step is a programmer error, not a
// silent clobber, so the file is created with O_EXCL.
func WriteGeneration(storePath string, step int, gen wire.Generation) error {
	if err := os.MkdirAll(storePath, 0755); err != nil {
		return errors.Wrap(err, "store: create store path")
	}

	data, err := json.Marshal(gen)
	if err != nil {
		return errors.Wrap(err, "store: marshal generation")
	}

	path := GenerationPath(storePath, step)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "store: generation file %s already exists or cannot be created", path)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "store: write generation")
	}
	return nil
}

// ReadGeneration reads back a generation file written by WriteGeneration.
func ReadGeneration(storePath string, step int) (wire.Generation, error) {
	data, err := os.ReadFile(GenerationPath(storePath, step))
	if err != nil {
		return wire.Generation{}, errors.Wrap(err, "store: read generation")
	}
	var gen wire.Generation
	if err := json.Unmarshal(data, &gen); err != nil {
		return wire.Generation{}, errors.Wrap(err, "store: unmarshal generation")
	}
	return gen, nil
}
