package wordlist

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/verte-zerg/tuici/internal/model"
)

// DefaultBand is the band embedded in the binary.
const DefaultBand = "hsk1"

const bandExt = ".tsv"

//go:embed bands/*.tsv
var builtin embed.FS

// ErrUnknownBand is returned when no file or built-in band matches a name.
var ErrUnknownBand = errors.New("unknown band")

var bandName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateName reports whether name can be used as a band file name.
func ValidateName(name string) error {
	if !bandName.MatchString(name) {
		return fmt.Errorf("invalid band name %q (use lowercase letters, digits, - and _)", name)
	}
	return nil
}

// Path returns the file a band is stored in under dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+bandExt)
}

// ListBands returns built-in band names merged with the bands found in dir.
// A missing dir is not an error.
func ListBands(dir string) ([]string, error) {
	names := map[string]struct{}{}
	entries, err := builtin.ReadDir("bands")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		names[strings.TrimSuffix(e.Name(), bandExt)] = struct{}{}
	}
	if dir != "" {
		files, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read bands dir: %w", err)
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != bandExt {
				continue
			}
			names[strings.TrimSuffix(f.Name(), bandExt)] = struct{}{}
		}
	}
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// LoadBand reads a band by name. A file under dir overrides a built-in band
// of the same name. Unplayable rows are dropped.
func LoadBand(dir, name string) ([]model.Word, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var (
		words []model.Word
		err   error
	)
	path := Path(dir, name)
	if _, statErr := os.Stat(path); dir != "" && statErr == nil {
		words, err = LoadFile(path)
	} else {
		data, readErr := builtin.ReadFile("bands/" + name + bandExt)
		if readErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBand, name)
		}
		words, err = Parse(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load band %s: %w", name, err)
	}
	words = Apply(words, FilterPlayable)
	if len(words) == 0 {
		return nil, fmt.Errorf("band %s has no playable words", name)
	}
	return words, nil
}
