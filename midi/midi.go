package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/pianogram/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, &model.IOError{Op: "read", Path: filepath, Err: err}
	}
	res, err := ReadMidi(bytes.NewReader(dat))
	if err != nil {
		return nil, &model.IOError{Op: "parse", Path: filepath, Err: err}
	}
	return res, nil
}

// ReadMidi parses an SMF, turning parser panics into errors.
// https://github.com/gomidi/midi/issues/20
func ReadMidi(r io.Reader) (s *smf.SMF, e error) {
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = errors.New(fmt.Sprint(r))
		}
	}()

	return smf.ReadFrom(r)
}

func WriteMidiFile(filepath string, s *smf.SMF) error {
	f, err := os.Create(filepath)
	if err != nil {
		return &model.IOError{Op: "create", Path: filepath, Err: err}
	}
	defer f.Close()

	if _, err := s.WriteTo(f); err != nil {
		return &model.IOError{Op: "write", Path: filepath, Err: err}
	}
	return nil
}
