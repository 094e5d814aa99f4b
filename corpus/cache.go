package corpus

import (
	"os"
	"path/filepath"

	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/store"
	"github.com/jsphweid/pianogram/util"
	log "github.com/sirupsen/logrus"
)

// Save writes the corpus as a flat gob-encoded list of symbols to a local
// path or an s3:// URI.
func Save(uri string, c *Corpus) error {
	b, err := util.EncodeBinary(c.symbols)
	if err != nil {
		return &model.IOError{Op: "encode", Path: uri, Err: err}
	}
	log.WithFields(log.Fields{"cache": uri, "symbols": c.Len()}).Info("Saving corpus cache")

	if store.IsRemote(uri) {
		return store.Put(uri, b)
	}
	if err := util.EnsureDir(filepath.Dir(uri)); err != nil {
		return &model.IOError{Op: "mkdir", Path: uri, Err: err}
	}
	if err := os.WriteFile(uri, b, 0666); err != nil {
		return &model.IOError{Op: "write", Path: uri, Err: err}
	}
	return nil
}

// Load always returns a freshly built corpus; nothing is merged into an
// existing one.
func Load(uri string) (*Corpus, error) {
	var b []byte
	var err error
	if store.IsRemote(uri) {
		b, err = store.Get(uri)
		if err != nil {
			return nil, err
		}
	} else {
		b, err = os.ReadFile(uri)
		if err != nil {
			return nil, &model.IOError{Op: "read", Path: uri, Err: err}
		}
	}

	symbols, err := util.DecodeBinary[[]model.Symbol](b)
	if err != nil {
		return nil, &model.IOError{Op: "decode", Path: uri, Err: err}
	}
	return New(symbols), nil
}
