package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/reoring/propmapper"
	"github.com/reoring/propmapper/mappingfile"
	"github.com/reoring/propmapper/source"
)

type options struct {
	mappings string
	typ      string
	format   string
	verbose  bool
	strict   bool
	noColor  bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "propmapper",
		Short:         "Map documents through declarative property tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			color.NoColor = o.noColor || !isTerminal(cmd.OutOrStdout())
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.mappings, "mappings", "m", "", "mapping file (YAML)")
	pf.StringVarP(&o.typ, "type", "t", "", "type name declared in the mapping file")
	pf.StringVar(&o.format, "format", "", "input format: "+fmt.Sprint(source.Names())+" (default: by extension)")
	pf.BoolVar(&o.strict, "strict", false, "reject duplicate keys in JSON input")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log mapper activity to stderr")
	pf.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	_ = cmd.MarkPersistentFlagRequired("mappings")
	_ = cmd.MarkPersistentFlagRequired("type")

	cmd.AddCommand(
		newCheckCmd(o),
		newDecodeCmd(o),
		newRoundtripCmd(o),
		newSchemaCmd(o),
	)
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *options) mapper(cmd *cobra.Command) (*propmapper.Mapper, error) {
	f, err := mappingfile.Load(o.mappings)
	if err != nil {
		return nil, err
	}
	return f.NewMapper(propmapper.WithLogger(o.logger(cmd)))
}

// readInput reads path ("-" for stdin) and decodes it with the selected
// format.
func (o *options) readInput(cmd *cobra.Command, path string) (map[string]any, source.Format, error) {
	var (
		fm  source.Format
		err error
	)
	switch {
	case o.format != "":
		fm, err = source.ByName(o.format)
	case path == "-":
		err = fmt.Errorf("--format is required when reading stdin")
	default:
		fm, err = source.ForPath(path)
	}
	if err != nil {
		return nil, nil, err
	}
	if _, ok := fm.(source.JSON); ok && o.strict {
		fm = source.JSON{RejectDuplicates: true}
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, nil, err
	}
	dict, err := fm.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return dict, fm, nil
}

// load returns the mapper and the decoded input dictionary.
func (o *options) load(cmd *cobra.Command, path string) (*propmapper.Mapper, map[string]any, error) {
	m, err := o.mapper(cmd)
	if err != nil {
		return nil, nil, err
	}
	dict, _, err := o.readInput(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	return m, dict, nil
}

// create builds the object for dict. Issues are rendered to stderr and
// returned alongside the object.
func (o *options) create(cmd *cobra.Command, m *propmapper.Mapper, dict map[string]any) (any, error) {
	obj, err := m.CreateObject(propmapper.TypeID(o.typ), dict)
	if iss, ok := propmapper.AsIssues(err); ok {
		printIssues(cmd.ErrOrStderr(), iss)
	}
	return obj, err
}

func printIssues(w io.Writer, iss propmapper.Issues) {
	field := color.New(color.FgYellow).SprintFunc()
	name := color.New(color.FgRed).SprintFunc()
	for _, i := range iss {
		fmt.Fprintf(w, "%s %s: %s\n", field(i.Field), name(i.Validator), i.Message)
	}
	fmt.Fprintf(w, "%d issue(s)\n", len(iss))
}
