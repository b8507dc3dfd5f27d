package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/born-ml/structtensor/internal/layout"
	"github.com/born-ml/structtensor/internal/schema"
	"github.com/born-ml/structtensor/internal/tensor"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		dtypeName string
		summary   bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <schema.toml> [record...]",
		Short: "Print the tensor layout of records declared in a schema file",
		Long: `inspect compiles records from a TOML schema document and prints every
field's element range. Without record names, every record is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dtype := a.cfg.DType()
			if dtypeName != "" {
				var err error
				if dtype, err = tensor.ParseDataType(dtypeName); err != nil {
					return err
				}
			}

			doc, err := schema.LoadDocument(args[0])
			if err != nil {
				return err
			}
			names := args[1:]
			if len(names) == 0 {
				names = doc.Records()
			}
			if len(names) == 0 {
				return fmt.Errorf("%s declares no records", args[0])
			}

			out := cmd.OutOrStdout()
			for i, name := range names {
				d, err := doc.Record(name)
				if err != nil {
					return err
				}
				c, err := layout.Compile(d)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				a.logger.Debug("record compiled", zap.String("record", name), zap.Int("len", c.Len()))

				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := printLayout(out, name, c, dtype, summary); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dtypeName, "dtype", "", "element type for the size column (default from config)")
	cmd.Flags().BoolVar(&summary, "summary", false, "print only length and fingerprint")
	return cmd
}

var kindColors = map[layout.Kind]*color.Color{
	layout.KindPrimitive:  color.New(color.FgBlue),
	layout.KindEnum:       color.New(color.FgGreen),
	layout.KindOptional:   color.New(color.FgYellow),
	layout.KindCollection: color.New(color.FgMagenta),
	layout.KindUnion:      color.New(color.FgCyan),
	layout.KindRecord:     color.New(color.Bold),
}

func printLayout(w io.Writer, name string, c layout.Chunk, dtype tensor.DataType, summary bool) error {
	header := color.New(color.Bold).Sprint(name)
	fmt.Fprintf(w, "%s  len=%d  %s=%d bytes  fingerprint=%016x\n",
		header, c.Len(), dtype, c.Len()*dtype.Size(), layout.Fingerprint(c))
	if summary {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tLEN\tKIND\tPATH\tDETAIL")
	for _, s := range layout.Plan(c) {
		if s.Path == "." {
			continue
		}
		depth := strings.Count(s.Path, ".") + strings.Count(s.Path, "[") + strings.Count(s.Path, "?") + strings.Count(s.Path, "(")
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s%s\t%s\n",
			s.Offset, s.Len, kindColors[s.Kind].Sprint(s.Kind), strings.Repeat("  ", depth), s.Path, s.Detail)
	}
	return tw.Flush()
}
