// Package convert runs the export-to-tag pipeline: extract records from the
// element-doc region, map them to tags and write the encoded document.
package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/plc-visualizer/plc2yaml/internal/config"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
	"github.com/plc-visualizer/plc2yaml/internal/parser"
	"k8s.io/klog/v2"
)

// Options configures a Converter.
type Options struct {
	Markers parser.Markers
	Mapping parser.MapperOptions
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return Options{
		Markers: parser.DefaultMarkers(),
		Mapping: parser.DefaultMapperOptions(),
	}
}

// OptionsFromConfig extracts the pipeline settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Markers: parser.Markers{
			Begin: cfg.Markers.Begin,
			End:   cfg.Markers.End,
		},
		Mapping: parser.MapperOptions{
			RootName:             cfg.Mapping.RootName,
			CoilOffsetCorrection: cfg.Mapping.CoilOffsetCorrection,
			RangeCheck:           cfg.Mapping.OffsetRangeCheck,
		},
	}
}

// Result is the outcome of a successful conversion.
type Result struct {
	Document *models.Document
	Report   *models.Report
}

// Converter runs the pipeline. It holds no per-run state and may be reused.
type Converter struct {
	extractor *parser.Extractor
	mapper    *parser.Mapper
}

func New(opts Options) *Converter {
	return &Converter{
		extractor: parser.NewExtractor(opts.Markers),
		mapper:    parser.NewMapper(opts.Mapping),
	}
}

// Convert reads an export from r and builds the tag document in memory.
// A missing begin marker is returned as a *parser.FormatError.
func (c *Converter) Convert(r io.Reader) (*Result, error) {
	scanner := c.extractor.Scan(r)
	records := make([]models.RawRecord, 0)
	for scanner.Next() {
		records = append(records, scanner.Record())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc, mapDrops := c.mapper.Map(records)

	report := models.NewReport()
	report.LinesScanned = scanner.RegionLines()
	report.Records = len(records)
	report.Tags = len(doc.Children)
	report.Drops = append(report.Drops, scanner.Drops()...)
	report.Drops = append(report.Drops, mapDrops...)

	for _, d := range report.Drops {
		klog.V(2).Infof("Skipped line %d (%s): %q", d.Line, d.Reason, d.Content)
	}

	return &Result{Document: doc, Report: report}, nil
}

// ConvertFile converts the export at inPath and writes it to outPath with
// enc. Nothing is written when the conversion fails.
func (c *Converter) ConvertFile(inPath, outPath string, enc export.Encoder) (*Result, error) {
	res, err := c.convertPath(inPath)
	if err != nil {
		return nil, err
	}

	if err := export.WriteFile(outPath, enc, res.Document); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}

	klog.Infof("%s file generated: %s (%d tags, %d lines skipped)",
		enc.Name(), outPath, res.Report.Tags, len(res.Report.Drops))
	return res, nil
}

// Inspect converts the export at inPath without writing anything.
func (c *Converter) Inspect(inPath string) (*Result, error) {
	return c.convertPath(inPath)
}

func (c *Converter) convertPath(inPath string) (*Result, error) {
	file, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer file.Close()

	res, err := c.Convert(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inPath, err)
	}
	return res, nil
}
