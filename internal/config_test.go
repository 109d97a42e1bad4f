package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarec/internal/candle"
	"github.com/tuannm99/novarec/internal/recfile"
)

const testConfig = `
app_name: prices
workdir: /var/lib/prices
log:
  level: debug
  format: json
kinds:
  ticks:
    marker: TICK
    columns:
      - {name: time, type: integer}
      - {name: price, type: float}
      - {name: buy, type: bool}
  broken:
    marker: BRKN
    columns:
      - {name: when, type: datetime}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "novarec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	require.Equal(t, "prices", cfg.AppName)
	require.Equal(t, "/var/lib/prices", cfg.Workdir)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, []string{"broken", candle.Kind, "ticks"}, cfg.KindNames())

	d, err := cfg.Descriptor("ticks")
	require.NoError(t, err)
	require.Equal(t, "TICK", d.Marker)
	require.Equal(t, "if?", d.Layout.TypeCodes())
	require.Equal(t, 9, d.Layout.RowSize())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "novarec", cfg.AppName)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)

	d, err := cfg.Descriptor(candle.Kind)
	require.NoError(t, err)
	require.Equal(t, candle.Descriptor(), d)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NOVAREC_LOG_LEVEL", "error")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDescriptor_Errors(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	_, err = cfg.Descriptor("nope")
	require.ErrorContains(t, err, `unknown kind "nope"`)

	_, err = cfg.Descriptor("broken")
	require.ErrorContains(t, err, "datetime")

	cfg.Kinds["long"] = KindConfig{Marker: "MARKERTOOLONG", Columns: []ColumnConfig{{Name: "a", Type: "i"}}}
	_, err = cfg.Descriptor("long")
	require.ErrorIs(t, err, recfile.ErrEncoding)

	cfg.Kinds["empty"] = KindConfig{Marker: "E"}
	_, err = cfg.Descriptor("empty")
	require.ErrorContains(t, err, "no columns")
}
