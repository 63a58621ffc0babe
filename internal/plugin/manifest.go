package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/fathom-editor/fathom/internal/plugin/hostapi"
)

// ManifestName is the metadata file every plugin directory carries.
const ManifestName = "plugin.json"

// Manifest describes a plugin's identity and requirements.
type Manifest struct {
	Name        string
	Version     string
	Description string
	Author      string
	// Main is the Lua entry point relative to the plugin directory.
	Main string
	// API lists the host API groups the plugin wants. Empty means
	// all groups.
	API []string

	dir string
}

// Dir returns the plugin directory the manifest was read from.
func (m *Manifest) Dir() string { return m.dir }

// EntryPath returns the absolute path of the Lua entry point.
func (m *Manifest) EntryPath() string { return filepath.Join(m.dir, m.Main) }

// manifestSchema validates the raw document before extraction.
const manifestSchema = `{
  "type": "object",
  "required": ["name", "version"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z][a-z0-9-]*$",
      "maxLength": 64
    },
    "version": {
      "type": "string",
      "pattern": "^\\d+\\.\\d+\\.\\d+(-[0-9A-Za-z.-]+)?$"
    },
    "description": {"type": "string"},
    "author": {"type": "string"},
    "main": {
      "type": "string",
      "pattern": "\\.lua$"
    },
    "api": {
      "type": "array",
      "items": {"type": "string"},
      "uniqueItems": true
    }
  },
  "additionalProperties": false
}`

var compiledManifestSchema = gojsonschema.NewStringLoader(manifestSchema)

// LoadManifest reads and validates dir/plugin.json.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return parseManifest(dir, data)
}

func parseManifest(dir string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("manifest %s: invalid JSON", filepath.Join(dir, ManifestName))
	}

	result, err := gojsonschema.Validate(compiledManifestSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.String()
		}
		return nil, fmt.Errorf("manifest %s: %v", filepath.Join(dir, ManifestName), msgs)
	}

	doc := gjson.ParseBytes(data)
	m := &Manifest{
		Name:        doc.Get("name").String(),
		Version:     doc.Get("version").String(),
		Description: doc.Get("description").String(),
		Author:      doc.Get("author").String(),
		Main:        doc.Get("main").String(),
		dir:         dir,
	}
	if m.Main == "" {
		m.Main = "init.lua"
	}

	known := make(map[string]bool)
	for _, g := range hostapi.GroupNames() {
		known[g] = true
	}
	for _, g := range doc.Get("api").Array() {
		name := g.String()
		if !known[name] {
			return nil, fmt.Errorf("manifest %s: unknown api group %q", m.Name, name)
		}
		m.API = append(m.API, name)
	}

	return m, nil
}

// APIGroups returns the enabled group set for hostapi.Install, nil
// when the plugin gets everything.
func (m *Manifest) APIGroups() map[string]bool {
	if len(m.API) == 0 {
		return nil
	}
	enabled := make(map[string]bool, len(m.API))
	for _, g := range m.API {
		enabled[g] = true
	}
	return enabled
}
