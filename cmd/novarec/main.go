// Command novarec inspects, converts and reads fixed-width record files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tuannm99/novarec/internal"
	"github.com/tuannm99/novarec/internal/logging"
	"github.com/tuannm99/novarec/internal/recfile"
	"github.com/tuannm99/novarec/internal/record"
)

const version = "0.2.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `name:"config" short:"c" help:"YAML config file" type:"path" env:"NOVAREC_CONFIG"`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)"`

	out io.Writer
	cfg *internal.NovarecConfig
}

// CLI defines the command-line interface for novarec.
type CLI struct {
	Globals

	Inspect  InspectCmd  `cmd:"" help:"Show what a record file declares in its header"`
	Dump     DumpCmd     `cmd:"" help:"Print rows of a record file"`
	Export   ExportCmd   `cmd:"" help:"Write the rows of a record file as CSV"`
	Import   ImportCmd   `cmd:"" help:"Convert CSV files into record files"`
	Checksum ChecksumCmd `cmd:"" help:"BLAKE3 digest of the decoded rows"`
	Shell    ShellCmd    `cmd:"" help:"Interactive reader session"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "novarec:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("novarec"),
		kong.Description("Fixed-width binary record files."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cli.Globals.out = stdout
	return kctx.Run(&cli.Globals)
}

// setup loads the config and installs the logger. Commands call it first.
func (g *Globals) setup() error {
	cfg, err := internal.LoadConfig(g.Config)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	if err := logging.Init(os.Stderr, level, cfg.Log.Format); err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// descriptor resolves the expected descriptor for file. With a kind it comes
// from the config; without one the file's own header is trusted.
func (g *Globals) descriptor(kind, file string) (recfile.Descriptor, *record.Schema, error) {
	if kind != "" {
		s, err := g.cfg.Schema(kind)
		if err != nil {
			return recfile.Descriptor{}, nil, err
		}
		d, err := g.cfg.Descriptor(kind)
		return d, s, err
	}
	d, err := recfile.Inspect(file)
	if err != nil {
		return recfile.Descriptor{}, nil, err
	}
	return recfile.Descriptor{Marker: d.Marker, Layout: d.Layout}, d.Layout.Schema(), nil
}

// kindOf finds the configured kind matching a descriptor, if any.
func (g *Globals) kindOf(d recfile.Descriptor) string {
	for _, name := range g.cfg.KindNames() {
		kd, err := g.cfg.Descriptor(name)
		if err != nil {
			continue
		}
		if kd.Marker == d.Marker && kd.Layout == d.Layout {
			return name
		}
	}
	return ""
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintf(g.out, "novarec %s\n", version)
	return err
}
