package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"liora"
	"liora/convert"
)

// ReadRecipes loads a .json file with convert.ReadJSON and anything else as
// a CSV sheet. headers is "es", "en" or "" to detect the layout.
func ReadRecipes(path, headers string) ([]liora.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return convert.ReadJSON(f)
	}

	var hs convert.HeaderSet
	if headers != "" && headers != "auto" {
		var ok bool
		if hs, ok = convert.HeaderSetByName(headers); !ok {
			return nil, fmt.Errorf("unknown header layout %q", headers)
		}
	}
	return convert.ReadCSV(f, hs)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Output opens path for writing, creating its directory. "" and "-" are
// stdout.
func Output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
