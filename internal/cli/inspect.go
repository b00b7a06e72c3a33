package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/plc-visualizer/plc2yaml/internal/convert"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var showDrops bool

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "List the tags an export would produce without writing them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := a.cfg.Convert.Input
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" {
				return fmt.Errorf("no input file: pass one or set convert.input")
			}
			return a.runInspect(cmd.OutOrStdout(), input, showDrops)
		},
	}

	addMappingFlags(cmd)
	cmd.Flags().BoolVar(&showDrops, "drops", false, "also list every skipped line")
	return cmd
}

func (a *app) runInspect(out io.Writer, input string, showDrops bool) error {
	res, err := convert.New(convert.OptionsFromConfig(a.cfg)).Inspect(input)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDATATYPE\tNODE\tVALUE")
	for _, tag := range res.Document.Children {
		leaf, _ := tag.Register()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", tag.Name, tag.DataType, leaf.Name, *leaf.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d tags from %d records (%d data lines)\n",
		res.Report.Tags, res.Report.Records, res.Report.LinesScanned)
	printDropSummary(out, res.Report)

	if showDrops && len(res.Report.Drops) > 0 {
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\nLINE\tREASON\tCONTENT")
		for _, d := range res.Report.Drops {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", d.Line, d.Reason, d.Content)
		}
		return tw.Flush()
	}
	return nil
}
