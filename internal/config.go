package internal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/tuannm99/novarec/internal/candle"
	"github.com/tuannm99/novarec/internal/recfile"
	"github.com/tuannm99/novarec/internal/record"
)

type ColumnConfig struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

// KindConfig declares one kind of record file: its marker and columns.
type KindConfig struct {
	Marker  string         `mapstructure:"marker"`
	Columns []ColumnConfig `mapstructure:"columns"`
}

type NovarecConfig struct {
	AppName string `mapstructure:"app_name"`
	Workdir string `mapstructure:"workdir"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Kinds map[string]KindConfig `mapstructure:"kinds"`
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
// Scalar settings can be overridden with NOVAREC_* environment variables,
// e.g. NOVAREC_LOG_LEVEL=debug.
func LoadConfig(path string) (*NovarecConfig, error) {
	v := viper.New()
	v.SetDefault("app_name", "novarec")
	v.SetDefault("workdir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("NOVAREC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovarecConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Kinds == nil {
		cfg.Kinds = make(map[string]KindConfig)
	}
	if _, ok := cfg.Kinds[candle.Kind]; !ok {
		cfg.Kinds[candle.Kind] = kindOf(candle.Descriptor().Marker, candle.Schema)
	}
	return &cfg, nil
}

func kindOf(marker string, s *record.Schema) KindConfig {
	k := KindConfig{Marker: marker}
	for _, c := range s.Columns() {
		k.Columns = append(k.Columns, ColumnConfig{Name: c.Name, Type: c.Type.String()})
	}
	return k
}

// KindNames returns the configured kinds, sorted.
func (c *NovarecConfig) KindNames() []string {
	names := make([]string, 0, len(c.Kinds))
	for name := range c.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema builds the schema of a configured kind.
func (c *NovarecConfig) Schema(kind string) (*record.Schema, error) {
	k, ok := c.Kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q (have %s)", kind, strings.Join(c.KindNames(), ", "))
	}
	if len(k.Columns) == 0 {
		return nil, fmt.Errorf("kind %q: no columns", kind)
	}

	s := &record.Schema{}
	for i, col := range k.Columns {
		typ, err := record.ParseColumnType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("kind %q column %d: %w", kind, i, err)
		}
		if err := s.AddColumn(col.Name, typ); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
	}
	return s, nil
}

// Descriptor builds the file descriptor of a configured kind.
func (c *NovarecConfig) Descriptor(kind string) (recfile.Descriptor, error) {
	s, err := c.Schema(kind)
	if err != nil {
		return recfile.Descriptor{}, err
	}
	d := recfile.NewDescriptor(c.Kinds[kind].Marker, s)
	if err := d.Validate(); err != nil {
		return recfile.Descriptor{}, fmt.Errorf("kind %q: %w", kind, err)
	}
	return d, nil
}
