package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plc-visualizer/plc2yaml/internal/convert"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert an export into a tag file",
		Long: `Convert reads the #BEGIN ELEMENT_DOC section of a PLC export and writes
the Modbus tags it contains. Input and output default to convert.input and
convert.output from the config file.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.OutOrStdout(), args)
		},
	}

	addMappingFlags(cmd)
	cmd.Flags().String("format", "", "output format: yaml or msgpack")
	return cmd
}

// addMappingFlags registers the flags shared by convert and inspect.
func addMappingFlags(cmd *cobra.Command) {
	cmd.Flags().String("begin-marker", "", "line marking the start of the element data")
	cmd.Flags().String("end-marker", "", "line marking the end of the element data")
	cmd.Flags().String("root-name", "", "name of the root tag folder")
	cmd.Flags().Bool("coil-offset", true, "decrement coil addresses like register addresses")
	cmd.Flags().Bool("range-check", false, "skip tags whose offset does not fit an unsigned 16-bit register")
}

func (a *app) runConvert(out io.Writer, args []string) error {
	input, output, outputGiven := a.cfg.Convert.Input, a.cfg.Convert.Output, false
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output, outputGiven = args[1], true
	}
	if input == "" {
		return fmt.Errorf("no input file: pass one or set convert.input")
	}

	enc, err := resolveEncoder(a.cfg.Convert.Format, output, outputGiven)
	if err != nil {
		return err
	}
	if !outputGiven && !strings.HasSuffix(strings.ToLower(output), enc.Extension()) {
		output = strings.TrimSuffix(output, filepath.Ext(output)) + enc.Extension()
	}

	res, err := convert.New(convert.OptionsFromConfig(a.cfg)).ConvertFile(input, output, enc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s file generated: %s (%d tags)\n", strings.ToUpper(enc.Name()), output, res.Report.Tags)
	printDropSummary(out, res.Report)
	return nil
}

// resolveEncoder picks the output format: an explicit format wins, then the
// extension of an explicit output path, then the default.
func resolveEncoder(format, output string, outputGiven bool) (export.Encoder, error) {
	reg := export.GetGlobalRegistry()
	if format == "" && outputGiven {
		if enc, ok := reg.ForPath(output); ok {
			return enc, nil
		}
	}
	return reg.Get(format)
}

func printDropSummary(out io.Writer, report *models.Report) {
	counts := report.DropCounts()
	if len(counts) == 0 {
		return
	}

	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", r, counts[models.DropReason(r)]))
	}
	fmt.Fprintf(out, "Skipped %d lines: %s\n", len(report.Drops), strings.Join(parts, ", "))
}
