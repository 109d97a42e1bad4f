package main

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novarec/internal/recfile"
	"github.com/tuannm99/novarec/internal/record"
)

const (
	shellPrompt  = "novarec> "
	defaultBatch = 10
)

const shellHelp = `commands:
  open <file> [kind]   start a reader session (kind defaults to the file header)
  reopen               restart the session at the first row
  one                  read the next row
  next [n]             read up to n rows (default 10)
  all                  read the remaining rows
  info                 show the session descriptor and position
  close                end the session
  help                 show help
  quit | exit          leave the shell`

type ShellCmd struct {
	File   string `arg:"" optional:"" help:"Record file to open on start" type:"existingfile"`
	Kind   string `short:"k" help:"Expected kind from the config; empty trusts the file header"`
	Strict bool   `help:"Fail at open when the file ends inside a row"`
}

func (c *ShellCmd) Run(g *Globals) error {
	if err := g.setup(); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("open"),
			readline.PcItem("reopen"),
			readline.PcItem("one"),
			readline.PcItem("next"),
			readline.PcItem("all"),
			readline.PcItem("info"),
			readline.PcItem("close"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := &shellSession{g: g, out: rl.Stdout(), strict: c.Strict}
	defer s.close()

	if c.File != "" {
		if err := s.open(c.File, c.Kind); err != nil {
			return err
		}
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return nil
		}
		quit, err := s.exec(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// shellSession holds at most one open reader between shell lines.
type shellSession struct {
	g      *Globals
	out    io.Writer
	strict bool

	r      *recfile.Reader
	schema *record.Schema
}

func (s *shellSession) exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		_, err = fmt.Fprintln(s.out, shellHelp)
		return false, err
	case "open":
		if len(args) < 1 || len(args) > 2 {
			return false, errors.New("usage: open <file> [kind]")
		}
		kind := ""
		if len(args) == 2 {
			kind = args[1]
		}
		return false, s.open(args[0], kind)
	case "close":
		return false, s.close()
	}

	if s.r == nil {
		return false, recfile.ErrNotOpen
	}

	switch cmd {
	case "reopen":
		return false, s.r.Open()
	case "info":
		d := s.r.Descriptor()
		_, err = fmt.Fprintf(s.out, "%s rows=%d position=%d\n", d, d.RowCount, s.r.Position())
		return false, err
	case "one":
		return false, s.print(s.r.ReadNext(1))
	case "next":
		n := defaultBatch
		if len(args) > 0 {
			if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
				return false, fmt.Errorf("next: bad count %q", args[0])
			}
		}
		return false, s.print(s.r.ReadNext(n))
	case "all":
		return false, s.print(s.r.ReadAll())
	default:
		return false, fmt.Errorf("unknown command: %s", cmd)
	}
}

func (s *shellSession) open(file, kind string) error {
	if err := s.close(); err != nil {
		return err
	}
	desc, schema, err := s.g.descriptor(kind, file)
	if err != nil {
		return err
	}
	r, err := recfile.OpenReader(file, desc, readerOptions(s.strict)...)
	if err != nil {
		return err
	}
	s.r, s.schema = r, schema
	d := r.Descriptor()
	_, err = fmt.Fprintf(s.out, "opened %s: %s, %d rows\n", file, d, d.RowCount)
	return err
}

func (s *shellSession) close() error {
	if s.r == nil {
		return nil
	}
	err := s.r.Close()
	s.r, s.schema = nil, nil
	return err
}

func (s *shellSession) print(rows iter.Seq2[record.Row, error]) error {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	n := 0
	for row, err := range rows {
		if err != nil {
			_ = tw.Flush()
			return err
		}
		if n == 0 {
			fmt.Fprintf(tw, "#\t%s\n", strings.Join(columnNames(s.schema), "\t"))
		}
		if err := printRow(tw, s.r.Position()-1, row); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		fmt.Fprintln(tw, "(end of file)")
	}
	return tw.Flush()
}
