// Package configs provides the Configuration document for cardfont.
package configs

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/cardfont/api"
	"github.com/macropower/cardfont/api/v1beta1"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/schema"
	"github.com/macropower/cardfont/pkg/yaml"
)

// Kind is the kind of the configuration document.
const Kind = "Configuration"

// DefaultPanel names the panel created for a new configuration.
const DefaultPanel = "RandomFont"

// SchemaID identifies the configuration schema.
const SchemaID = "https://github.com/macropower/cardfont/api/v1beta1/configs/configs.v1beta1.json"

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	// ValidKinds contains the valid kind values for configurations.
	ValidKinds = []string{Kind}

	// SchemaJSON is the JSON schema for [Config].
	SchemaJSON = schema.NewGenerator(&Config{}, schema.WithID(SchemaID)).MustGenerate()

	// DefaultValidator validates configuration against [SchemaJSON].
	DefaultValidator = yaml.MustNewValidator("/configs.v1beta1.json", SchemaJSON)

	// ErrUnknownLanguage is returned for a languages key that is not a
	// writing system.
	ErrUnknownLanguage = errors.New("unknown language")

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config is the cardfont configuration document.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Panels maps panel names to the rule sets that select cards.
	Panels map[string]*finder.RuleSet `json:"panels,omitempty" jsonschema:"title=Panels"`
	// Languages records which font families are enabled per writing system.
	Languages fonts.LanguageFontMap `json:"languages,omitempty" jsonschema:"title=Languages"`
	Fonts     *fonts.Config         `json:"fonts,omitempty" jsonschema:"title=Fonts"`
	// Theme names the chroma style used for terminal output. "auto" picks a
	// light or dark style from the terminal background.
	Theme string `json:"theme,omitempty" jsonschema:"title=Theme,default=auto"`

	v1beta1.TypeMeta `json:",inline"`
}

// New creates a [Config] with a single default panel.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
		Panels: map[string]*finder.RuleSet{
			DefaultPanel: finder.New(DefaultPanel),
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values, and names
// each panel after its key.
func (c *Config) EnsureDefaults() {
	if c.Panels == nil {
		c.Panels = map[string]*finder.RuleSet{}
	}

	for name, rs := range c.Panels {
		if rs == nil {
			rs = finder.New(name)
			c.Panels[name] = rs
		}

		rs.Name = name
		rs.EnsureDefaults()
	}

	if c.Languages == nil {
		c.Languages = fonts.LanguageFontMap{}
	}

	if c.Theme == "" {
		c.Theme = "auto"
	}

	if c.Fonts == nil {
		c.Fonts = fonts.NewConfig()
	} else {
		c.Fonts.EnsureDefaults()
	}
}

// PanelNames returns the panel names in evaluation order.
func (c *Config) PanelNames() []string {
	return slices.Sorted(maps.Keys(c.Panels))
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, name := range c.PanelNames() {
		err := c.Panels[name].Validate()
		if err != nil {
			return fmt.Errorf("panel %q: %w", name, err)
		}
	}

	for _, ws := range slices.Sorted(maps.Keys(c.Languages)) {
		_, err := fonts.Lookup(ws)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnknownLanguage, err)
		}
	}

	if c.Fonts != nil {
		_, err := c.Fonts.NewCatalog(nil)
		if err != nil {
			return fmt.Errorf("validate fonts config: %w", err)
		}
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)

	languages, ok := jss.Properties.Get("languages")
	if !ok {
		panic("languages property not found in schema")
	}

	names := make([]any, 0, len(fonts.WritingSystems))
	for _, n := range fonts.Names() {
		names = append(names, n)
	}

	languages.PropertyNames = &jsonschema.Schema{Enum: names}
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Write writes the config to the specified path if it doesn't already exist.
func (c Config) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return slices.Clone(defaultConfigYAML)
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// GetPath returns the path to the configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
