package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novarec/internal/alias/util"
	"github.com/tuannm99/novarec/internal/csvio"
	"github.com/tuannm99/novarec/internal/recfile"
	"github.com/tuannm99/novarec/internal/record"
	"github.com/tuannm99/novarec/internal/storage"
)

type InspectCmd struct {
	File string `arg:"" help:"Record file" type:"existingfile"`
}

func (c *InspectCmd) Run(g *Globals) error {
	if err := g.setup(); err != nil {
		return err
	}
	d, err := recfile.Inspect(c.File)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "marker:\t%s\n", d.Marker)
	if kind := g.kindOf(d); kind != "" {
		fmt.Fprintf(tw, "kind:\t%s\n", kind)
	}
	fmt.Fprintf(tw, "layout:\t%s\n", d.Layout.TypeCodes())
	fmt.Fprintf(tw, "row size:\t%d\n", d.Layout.RowSize())
	fmt.Fprintf(tw, "header size:\t%d\n", d.HeaderSize)
	fmt.Fprintf(tw, "rows:\t%d\n", d.RowCount)
	if d.Truncated() {
		fmt.Fprintf(tw, "truncated:\t%d trailing bytes\n", d.TrailingBytes)
	}
	return tw.Flush()
}

type DumpCmd struct {
	File   string `arg:"" help:"Record file" type:"existingfile"`
	Kind   string `short:"k" help:"Expected kind from the config; empty trusts the file header"`
	Limit  int    `short:"n" help:"Stop after this many rows (0 reads all)"`
	Strict bool   `help:"Fail at open when the file ends inside a row"`
}

func (c *DumpCmd) Run(g *Globals) error {
	if err := g.setup(); err != nil {
		return err
	}
	desc, schema, err := g.descriptor(c.Kind, c.File)
	if err != nil {
		return err
	}

	return recfile.ReadFile(c.File, desc, func(r *recfile.Reader) error {
		tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "#\t%s\n", strings.Join(columnNames(schema), "\t"))

		rows := r.ReadAll()
		if c.Limit > 0 {
			rows = r.ReadNext(c.Limit)
		}
		for row, err := range rows {
			if err != nil {
				_ = tw.Flush()
				return err
			}
			if err := printRow(tw, r.Position()-1, row); err != nil {
				return err
			}
		}
		return tw.Flush()
	}, readerOptions(c.Strict)...)
}

type ExportCmd struct {
	File     string `arg:"" help:"Record file" type:"existingfile"`
	Kind     string `short:"k" help:"Expected kind from the config; empty trusts the file header"`
	Output   string `short:"o" help:"CSV output path (default stdout)" type:"path"`
	NoHeader bool   `help:"Do not write the column names line"`
}

func (c *ExportCmd) Run(g *Globals) (err error) {
	if err := g.setup(); err != nil {
		return err
	}
	desc, schema, err := g.descriptor(c.Kind, c.File)
	if err != nil {
		return err
	}

	var out io.Writer = g.out
	if c.Output != "" {
		f, err := storage.CreateFile(c.Output)
		if err != nil {
			return fmt.Errorf("create %s: %w", c.Output, err)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close %s: %w", c.Output, cerr)
			}
		}()
		out = f
	}

	return recfile.ReadFile(c.File, desc, func(r *recfile.Reader) error {
		cw := csvio.NewWriter(out)
		if !c.NoHeader {
			if err := cw.WriteHeader(schema.Columns()); err != nil {
				return err
			}
		}
		_, err := csvio.Export(r.ReadAll(), cw)
		return err
	})
}

type ImportCmd struct {
	Files    []string `arg:"" help:"CSV files" type:"existingfile"`
	Kind     string   `short:"k" default:"ohlc" help:"Kind of the record files to write"`
	OutDir   string   `short:"o" help:"Output directory (default: workdir from the config)" type:"path"`
	NoHeader bool     `help:"The CSV files have no column names line"`
	Jobs     int      `short:"j" default:"4" help:"Files converted in parallel"`
}

type importResult struct {
	src, dst string
	rows     int64
}

func (c *ImportCmd) Run(g *Globals) error {
	if err := g.setup(); err != nil {
		return err
	}
	desc, err := g.cfg.Descriptor(c.Kind)
	if err != nil {
		return err
	}
	dir := c.OutDir
	if dir == "" {
		dir = g.cfg.Workdir
	}
	dsts, err := importTargets(storage.LocalFileSet{Dir: dir}, c.Files)
	if err != nil {
		return err
	}

	results := make([]importResult, len(c.Files))
	group, ctx := errgroup.WithContext(context.Background())
	if c.Jobs > 0 {
		group.SetLimit(c.Jobs)
	}
	for i, src := range c.Files {
		dst := dsts[i]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := importFile(src, dst, desc, !c.NoHeader)
			if err != nil {
				return fmt.Errorf("import %s: %w", src, err)
			}
			results[i] = importResult{src: src, dst: dst, rows: n}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintf(g.out, "%s -> %s (%d rows)\n", res.src, res.dst, res.rows)
	}
	return nil
}

// importTargets maps each CSV file to its record file under lfs. Two sources
// that would write the same record file are rejected before anything is written.
func importTargets(lfs storage.LocalFileSet, srcs []string) ([]string, error) {
	dsts := make([]string, len(srcs))
	seen := make(map[string]string, len(srcs))
	for i, src := range srcs {
		dst := lfs.WithBase(src).Path()
		if prev, ok := seen[dst]; ok {
			return nil, fmt.Errorf("import: %s and %s both write %s", prev, src, dst)
		}
		seen[dst] = src
		dsts[i] = dst
	}
	return dsts, nil
}

func importFile(src, dst string, desc recfile.Descriptor, header bool) (n int64, err error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer util.CloseFileFunc(f)

	err = recfile.WriteFile(dst, desc, func(w *recfile.Writer) error {
		n, err = csvio.Import(f, w, desc.Layout, header)
		return err
	})
	return n, err
}

type ChecksumCmd struct {
	Files []string `arg:"" help:"Record files" type:"existingfile"`
	Kind  string   `short:"k" help:"Expected kind from the config; empty trusts the file header"`
}

func (c *ChecksumCmd) Run(g *Globals) error {
	if err := g.setup(); err != nil {
		return err
	}
	for _, file := range c.Files {
		sum, n, err := c.checksum(g, file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		fmt.Fprintf(g.out, "%x  %s  %d rows\n", sum, file, n)
	}
	return nil
}

// checksum hashes the re-encoded rows, so the digest covers the row
// payload only and two files with the same rows agree.
func (c *ChecksumCmd) checksum(g *Globals, file string) (sum []byte, n int64, err error) {
	desc, _, err := g.descriptor(c.Kind, file)
	if err != nil {
		return nil, 0, err
	}
	codec := record.NewCodec(desc.Layout)
	h := blake3.New()
	buf := make([]byte, desc.Layout.RowSize())

	err = recfile.ReadFile(file, desc, func(r *recfile.Reader) error {
		for row, err := range r.ReadAll() {
			if err != nil {
				return err
			}
			b, err := codec.Encode(buf, row...)
			if err != nil {
				return err
			}
			_, _ = h.Write(b)
			n++
		}
		return nil
	})
	if err != nil {
		return nil, n, err
	}
	return h.Sum(nil), n, nil
}

func readerOptions(strict bool) []recfile.Option {
	if strict {
		return []recfile.Option{recfile.WithStrictLength()}
	}
	return nil
}

func columnNames(s *record.Schema) []string {
	cols := s.Columns()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

func printRow(w io.Writer, idx int64, row record.Row) error {
	fields := make([]string, len(row))
	for i, v := range row {
		s, err := csvio.FormatValue(v)
		if err != nil {
			return err
		}
		fields[i] = s
	}
	_, err := fmt.Fprintf(w, "%d\t%s\n", idx, strings.Join(fields, "\t"))
	return err
}
