package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/born-ml/structtensor/internal/backend/cpu"
	"github.com/born-ml/structtensor/internal/dataset"
	"github.com/born-ml/structtensor/internal/layout"
	"github.com/born-ml/structtensor/internal/parallel"
	"github.com/born-ml/structtensor/internal/tensor"
)

func newStoreCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Report on a dataset store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "dataset store path (default [store].path from config)")

	open := func() (*dataset.Store, error) {
		path := dbPath
		if path == "" {
			path = a.cfg.Store.Path
		}
		return dataset.Open(path, dataset.Options{Timeout: 5 * time.Second, Logger: a.logger.Named("dataset")})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "List stored layouts and their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.Stats()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BUCKET\tROWS\tLEN\tDTYPE\tCREATED")
			for _, st := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
					color.CyanString(st.Bucket), st.Rows, st.Manifest.Len, st.Manifest.DType,
					st.Manifest.Created.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	var limit int
	dump := &cobra.Command{
		Use:   "dump <bucket>",
		Short: "Print stored rows field by field",
		Long: `dump prints each stored row using the layout recorded with it: numbers
for scalar fields and the arg-max label for enum fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := strconv.ParseUint(args[0], 16, 64)
			if err != nil {
				return fmt.Errorf("bucket %q is not a fingerprint: %w", args[0], err)
			}
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.Stats()
			if err != nil {
				return err
			}
			var m *dataset.Manifest
			for i := range stats {
				if stats[i].Bucket == dataset.BucketName(fp) {
					m = &stats[i].Manifest
				}
			}
			if m == nil {
				return fmt.Errorf("%w: %s", dataset.ErrNotFound, args[0])
			}

			b := cpu.New()
			x, err := s.Load(fp, b)
			if err != nil {
				return err
			}
			lines, err := renderRows(cmd.Context(), b, x, m.Slots, limit, a.cfg.ParallelConfig())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, line := range lines {
				fmt.Fprintf(out, "%s %s\n", color.YellowString("#%d", i), line)
			}
			return nil
		},
	}
	dump.Flags().IntVar(&limit, "rows", 0, "print at most this many rows (0 prints all)")
	cmd.AddCommand(dump)
	return cmd
}

// renderRows formats the leaf slots of each row of x.
func renderRows(ctx context.Context, b *cpu.CPUBackend, x *tensor.RawTensor, slots []layout.Slot,
	limit int, cfg parallel.Config) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows := x.Shape()[0]
	if limit > 0 && limit < rows {
		rows = limit
	}
	lines := make([]string, rows)
	err := parallel.ForErr(ctx, rows, func(_ context.Context, i int) error {
		row, err := x.Row(i)
		if err != nil {
			return err
		}
		var fields []string
		for _, s := range slots {
			switch s.Kind {
			case layout.KindPrimitive:
				fields = append(fields, fmt.Sprintf("%s=%g", s.Path, b.ScalarAt(row, s.Offset)))
			case layout.KindEnum:
				labels := strings.Split(s.Detail, "|")
				idx := b.Argmax(row, s.Offset, s.Offset+s.Len)
				label := strconv.Itoa(idx)
				if idx < len(labels) {
					label = labels[idx]
				}
				fields = append(fields, s.Path+"="+label)
			}
		}
		lines[i] = strings.Join(fields, " ")
		return nil
	}, cfg)
	return lines, err
}
