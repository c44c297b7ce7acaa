package configs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/compare"
	"github.com/macropower/cardfont/pkg/config"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/fonts"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cfg := configs.New()

	assert.Equal(t, "cardfont/v1beta1", cfg.GetAPIVersion())
	assert.Equal(t, "Configuration", cfg.GetKind())
	assert.Equal(t, []string{configs.DefaultPanel}, cfg.PanelNames())
	assert.Equal(t, finder.New(configs.DefaultPanel), cfg.Panels[configs.DefaultPanel])
	assert.Equal(t, fonts.NewConfig(), cfg.Fonts)
	assert.Empty(t, cfg.Languages)
	require.NoError(t, cfg.Validate())
}

func TestConfig_EnsureDefaults(t *testing.T) {
	t.Parallel()

	cfg := &configs.Config{
		Panels: map[string]*finder.RuleSet{
			"Kanji": {Deck: &finder.Deck{Text: "Japanese", Enabled: true}},
			"Empty": nil,
		},
	}

	cfg.EnsureDefaults()

	assert.Equal(t, []string{"Empty", "Kanji"}, cfg.PanelNames())
	assert.Equal(t, "Kanji", cfg.Panels["Kanji"].Name)
	assert.Equal(t, finder.LogicOr, cfg.Panels["Kanji"].Logic)
	assert.True(t, cfg.Panels["Kanji"].Deck.Enabled)
	assert.Equal(t, compare.Equal, cfg.Panels["Kanji"].PassCount.Comparator)
	assert.Equal(t, finder.New("Empty"), cfg.Panels["Empty"])
	assert.NotNil(t, cfg.Languages)
	assert.Equal(t, "auto", cfg.Theme)
	assert.Equal(t, fonts.CatalogFontconfig, cfg.Fonts.Catalog)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		modify  func(cfg *configs.Config)
		wantErr error
		errMsg  string
	}{
		"defaults": {
			modify: func(*configs.Config) {},
		},
		"enabled languages": {
			modify: func(cfg *configs.Config) {
				cfg.Languages.Set("Japanese", "Noto Serif CJK JP", false)
			},
		},
		"bad panel pattern": {
			modify: func(cfg *configs.Config) {
				cfg.Panels[configs.DefaultPanel].Deck.Enabled = true
				cfg.Panels[configs.DefaultPanel].Deck.Text = "("
			},
			errMsg: `panel "RandomFont"`,
		},
		"unknown language": {
			modify: func(cfg *configs.Config) {
				cfg.Languages.Set("Klingon", "pIqaD", true)
			},
			wantErr: configs.ErrUnknownLanguage,
		},
		"unknown catalog": {
			modify: func(cfg *configs.Config) {
				cfg.Fonts.Catalog = "gdi"
			},
			errMsg: "unknown catalog",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := configs.New()
			tc.modify(cfg)

			err := cfg.Validate()

			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.errMsg != "":
				require.ErrorContains(t, err, tc.errMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_Write(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupPath func(t *testing.T) string
		errMsg    string
		wantErr   bool
	}{
		"new file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "config.yaml")
			},
			wantErr: false,
		},
		"existing file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "config.yaml")
				err := os.WriteFile(path, []byte("existing"), 0o600)
				require.NoError(t, err)

				return path
			},
			wantErr: false, // Should not overwrite existing file.
		},
		"creates parent directories": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				dir := t.TempDir()

				return filepath.Join(dir, "subdir", "config.yaml")
			},
			wantErr: false, // Should create parent directories.
		},
		"path is directory": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
			errMsg:  "path is a directory",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := configs.New()
			path := tc.setupPath(t)

			err := cfg.Write(path)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
			} else {
				require.NoError(t, err)
				// Verify file exists and has content.
				_, err := os.Stat(path)
				require.NoError(t, err)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupPath func(t *testing.T) string
		errMsg    string
		force     bool
		wantErr   bool
	}{
		"new file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "config.yaml")
			},
			force:   false,
			wantErr: false,
		},
		"existing file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "config.yaml")
				err := os.WriteFile(path, []byte("existing"), 0o600)
				require.NoError(t, err)

				return path
			},
			force:   false,
			wantErr: false, // Should not overwrite existing file.
		},
		"create parent directories": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				dir := t.TempDir()

				return filepath.Join(dir, "nested", "deep", "config.yaml")
			},
			force:   false,
			wantErr: false,
		},
		"path is directory": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			force:   false,
			wantErr: true,
			errMsg:  "path is a directory",
		},
		"force new file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "config.yaml")
			},
			force:   true,
			wantErr: false,
		},
		"force existing file creates backup": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "config.yaml")
				err := os.WriteFile(path, []byte("existing content"), 0o600)
				require.NoError(t, err)

				return path
			},
			force:   true,
			wantErr: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := tc.setupPath(t)

			// Record if the file existed before to check backup behavior.
			var originalContent []byte

			info, err := os.Stat(path)
			if err == nil && info.Mode().IsRegular() {
				originalContent, err = os.ReadFile(path)
				require.NoError(t, err)
			}

			err = configs.WriteDefault(path, tc.force)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
			} else {
				require.NoError(t, err)
				// Verify file exists and has content.
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.True(t, info.Mode().IsRegular())
				assert.Positive(t, info.Size())

				// If force=true and original content existed, verify backup was created.
				if tc.force && len(originalContent) > 0 {
					dir := filepath.Dir(path)
					entries, err := os.ReadDir(dir)
					require.NoError(t, err)

					backupFound := false
					for _, entry := range entries {
						if filepath.Ext(entry.Name()) != ".old" {
							continue
						}

						backupPath := filepath.Join(dir, entry.Name())
						backupContent, err := os.ReadFile(backupPath)
						require.NoError(t, err)
						assert.Equal(t, originalContent, backupContent, "backup should contain original content")

						backupFound = true

						break
					}

					assert.True(t, backupFound, "backup file should be created when force=true and file exists")
				}
			}
		})
	}
}

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestGetPath(t *testing.T) {
	tcs := map[string]struct {
		setupEnv func(t *testing.T)
		want     string
	}{
		"XDG_CONFIG_HOME is set and not empty": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "/custom/config")
			},
			want: "/custom/config/cardfont/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is set": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "")
				t.Setenv("HOME", "/test/home")
			},
			want: "/test/home/.config/cardfont/config.yaml",
		},
		"XDG_CONFIG_HOME is not set and HOME is set": {
			setupEnv: func(t *testing.T) {
				t.Helper()

				err := os.Unsetenv("XDG_CONFIG_HOME")
				require.NoError(t, err)
				t.Setenv("HOME", "/test/home")
			},
			want: "/test/home/.config/cardfont/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is empty": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "")
				t.Setenv("HOME", "")
			},
			want: filepath.Join(os.TempDir(), "cardfont", "config.yaml"), //nolint:usetesting // Needs to equal host.
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			if tc.setupEnv != nil {
				tc.setupEnv(t)
			}

			got := configs.GetPath()

			assert.NotEmpty(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultConfigYAMLIsValid(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "default-config.yaml")

	err := configs.WriteDefault(configPath, false)
	require.NoError(t, err)

	cl, err := config.NewLoaderFromFile(configPath, configs.New, configs.DefaultValidator)
	require.NoError(t, err)
	require.NoError(t, cl.Validate())

	cfg, err := cl.Load()
	require.NoError(t, err)

	assert.Equal(t, configs.New(), cfg)
}

func TestConfig_MarshalYAML(t *testing.T) {
	t.Parallel()

	cfg := configs.New()

	data, err := cfg.MarshalYAML()
	require.NoError(t, err)

	yamlStr := string(data)
	assert.Contains(t, yamlStr, "apiVersion: cardfont/v1beta1")
	assert.Contains(t, yamlStr, "kind: Configuration")
	assert.Contains(t, yamlStr, "RandomFont:")
	assert.NotContains(t, yamlStr, "name:")
}

func TestEmbeddedConfigMatchesSourceFile(t *testing.T) {
	t.Parallel()

	sourceConfig, err := os.ReadFile("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, string(sourceConfig), string(configs.DefaultYAML()))
}

func TestDefaultValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		wantErr bool
	}{
		"minimal": {
			input: "apiVersion: cardfont/v1beta1\nkind: Configuration\n",
		},
		"panel with card states": {
			input: `apiVersion: cardfont/v1beta1
kind: Configuration
panels:
  Kanji:
    logic: and
    cardState:
      options: [New, 2]
      enabled: true
`,
		},
		"wrong api version": {
			input:   "apiVersion: cardfont.example.com/v1beta1\nkind: Configuration\n",
			wantErr: true,
		},
		"wrong kind": {
			input:   "apiVersion: cardfont/v1beta1\nkind: Policy\n",
			wantErr: true,
		},
		"unknown logic": {
			input: `apiVersion: cardfont/v1beta1
kind: Configuration
panels:
  Kanji:
    logic: xor
`,
			wantErr: true,
		},
		"unknown comparator": {
			input: `apiVersion: cardfont/v1beta1
kind: Configuration
panels:
  Kanji:
    passCount:
      comparator: "=~"
`,
			wantErr: true,
		},
		"unknown writing system": {
			input: `apiVersion: cardfont/v1beta1
kind: Configuration
languages:
  Klingon:
    pIqaD: true
`,
			wantErr: true,
		},
		"unknown field": {
			input: `apiVersion: cardfont/v1beta1
kind: Configuration
ui:
  theme: github
`,
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator).Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfigFullPipeline(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := configs.WriteDefault(configPath, false)
	require.NoError(t, err)

	cl, err := config.NewLoaderFromFile(configPath, configs.New, configs.DefaultValidator)
	require.NoError(t, err)

	cfg, err := cl.Load()
	require.NoError(t, err)

	cfg.Panels["Kanji"] = finder.New("Kanji")
	cfg.Panels["Kanji"].Field.NameText = "^Expression$"
	cfg.Panels["Kanji"].Field.ScriptEnabled = true
	cfg.Panels["Kanji"].Field.ScriptComparator = compare.GreaterEqual
	cfg.Panels["Kanji"].Field.ScriptValue = 2
	cfg.Panels["Kanji"].Field.Enabled = true
	cfg.Languages.Set("Japanese", "IPAGothic", false)

	yamlConfig, err := cfg.MarshalYAML()
	require.NoError(t, err)

	cl2 := config.NewLoaderFromBytes(yamlConfig, configs.New, configs.DefaultValidator)
	require.NoError(t, cl2.Validate())

	cfg2, err := cl2.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
	assert.False(t, cfg2.Languages.IsEnabled("Japanese", "IPAGothic"))
}
