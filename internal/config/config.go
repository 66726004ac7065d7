// Package config loads the optional MergeProfile TOML file that
// extends the built-in text-lump whitelist and null-texture name set,
// and adds to or overrides entries of the namespace alias table.
package config

import (
	"io/ioutil"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// textLumpsSection only needs a nice exported name for the TOML
// parser to produce meaningful error messages on malformed input.
type textLumpsSection struct {
	Extra []string
}

// texturesSection only needs a nice exported name for the TOML parser
// to produce meaningful error messages on malformed input.
type texturesSection struct {
	NullNames []string `toml:"null_names"`
}

// namespacesSection only needs a nice exported name for the TOML
// parser to produce meaningful error messages on malformed input.
type namespacesSection struct {
	AliasOverrides map[string]string `toml:"alias_overrides"`
}

type document struct {
	TextLumps  textLumpsSection  `toml:"textlumps"`
	Textures   texturesSection   `toml:"textures"`
	Namespaces namespacesSection `toml:"namespaces"`
}

// MergeProfile carries every user-overridable table the merge driver
// consults alongside its built-in defaults. A zero-value MergeProfile
// is valid and changes nothing.
type MergeProfile struct {
	ExtraTextLumpNames []string
	ExtraNullTextures  []string
	AliasOverrides     map[string]string
}

// Load decodes path into a MergeProfile. A missing or empty path is
// not an error; callers should treat a nil, nil return as "use the
// built-in defaults unmodified."
func Load(path string) (*MergeProfile, error) {
	if path == "" {
		return nil, nil
	}

	blob, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("config: read %s: %w", path, err)
	}

	var doc document
	if _, err := toml.Decode(string(blob), &doc); err != nil {
		return nil, xerrors.Errorf("config: decode %s: %w", path, err)
	}

	return &MergeProfile{
		ExtraTextLumpNames: doc.TextLumps.Extra,
		ExtraNullTextures:  doc.Textures.NullNames,
		AliasOverrides:     doc.Namespaces.AliasOverrides,
	}, nil
}
