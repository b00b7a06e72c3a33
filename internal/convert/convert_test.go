package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plc-visualizer/plc2yaml/internal/config"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
	"github.com/plc-visualizer/plc2yaml/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportText = `Element documentation export
#BEGIN ELEMENT_DOC
"MHR70:RD","","TempSensor1","","desc"
"MHR70","","Counter1","","desc"
"X0","","StartPB","","desc"
"MC5","","Alarm1","","desc"
"broken","line"
#END
`

// createTestFile creates a temporary file with given content
func createTestFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvert(t *testing.T) {
	c := New(DefaultOptions())

	res, err := c.Convert(strings.NewReader(exportText))
	require.NoError(t, err)

	doc := res.Document
	require.Len(t, doc.Children, 3)

	assert.Equal(t, "TempSensor1", doc.Children[0].Name)
	assert.Equal(t, models.DataTypeFloat, doc.Children[0].DataType)
	assert.Equal(t, 70, *doc.Children[0].Children[0].Value)

	assert.Equal(t, "Counter1", doc.Children[1].Name)
	assert.Equal(t, models.DataTypeInt16, doc.Children[1].DataType)
	assert.Equal(t, 69, *doc.Children[1].Children[0].Value)

	assert.Equal(t, "Alarm1", doc.Children[2].Name)
	assert.Equal(t, models.DataTypeBoolean, doc.Children[2].DataType)
	assert.Equal(t, "NumCoil", doc.Children[2].Children[0].Name)
	assert.Equal(t, 4, *doc.Children[2].Children[0].Value)

	r := res.Report
	assert.Equal(t, 5, r.LinesScanned)
	assert.Equal(t, 4, r.Records)
	assert.Equal(t, 3, r.Tags)
	assert.Equal(t, map[models.DropReason]int{
		models.DropFieldCount:      1,
		models.DropAddressMismatch: 1,
	}, r.DropCounts())
}

const edgeAddressText = `#BEGIN ELEMENT_DOC
"MHR0","","Underflow","",""
"MC0","","CoilUnderflow","",""
"MHR65536:RD","","Overflow","",""
#END
`

func TestConvert_ZeroAddressesKeepCorrectedValue(t *testing.T) {
	res, err := New(DefaultOptions()).Convert(strings.NewReader(edgeAddressText))
	require.NoError(t, err)

	doc := res.Document
	require.Len(t, doc.Children, 3)
	assert.Empty(t, res.Report.Drops)

	var values []int
	for _, tag := range doc.Children {
		values = append(values, *tag.Children[0].Value)
	}
	assert.Equal(t, []int{-1, -1, 65536}, values)
}

func TestConvert_RangeCheckFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mapping.OffsetRangeCheck = true

	res, err := New(OptionsFromConfig(cfg)).Convert(strings.NewReader(edgeAddressText))
	require.NoError(t, err)

	assert.Empty(t, res.Document.Children)
	assert.Equal(t, map[models.DropReason]int{models.DropOffsetRange: 3}, res.Report.DropCounts())
}

func TestConvert_MissingMarker(t *testing.T) {
	c := New(DefaultOptions())

	_, err := c.Convert(strings.NewReader(`"MHR70","","Counter1","","desc"`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrMarkerNotFound))
}

func TestConvertFile(t *testing.T) {
	c := New(DefaultOptions())
	in := createTestFile(t, "EXPORT.txt", exportText)
	out := filepath.Join(t.TempDir(), "Tags.yaml")

	res, err := c.ConvertFile(in, out, export.NewYAMLEncoder())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Report.Tags)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := export.DecodeYAML(f)
	require.NoError(t, err)
	assert.Equal(t, res.Document, decoded)
}

func TestConvertFile_NoOutputOnFormatError(t *testing.T) {
	c := New(DefaultOptions())
	in := createTestFile(t, "EXPORT.txt", "no markers here\n\"MC1\",\"\",\"A\",\"\",\"\"\n")
	out := filepath.Join(t.TempDir(), "Tags.yaml")

	_, err := c.ConvertFile(in, out, export.NewYAMLEncoder())
	require.Error(t, err)

	var fe *parser.FormatError
	assert.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "EXPORT.txt")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file should be written")
}

func TestConvertFile_MissingInput(t *testing.T) {
	c := New(DefaultOptions())
	_, err := c.ConvertFile(filepath.Join(t.TempDir(), "nope.txt"), filepath.Join(t.TempDir(), "out.yaml"), export.NewYAMLEncoder())
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Markers.Begin = "<<BEGIN>>"
	cfg.Mapping.CoilOffsetCorrection = false
	cfg.Mapping.RootName = "Plc1"

	c := New(OptionsFromConfig(cfg))
	res, err := c.Convert(strings.NewReader("<<BEGIN>>\n\"MC5\",\"\",\"Alarm1\",\"\",\"\"\n#END\n"))
	require.NoError(t, err)

	assert.Equal(t, "Plc1", res.Document.Name)
	require.Len(t, res.Document.Children, 1)
	assert.Equal(t, 5, *res.Document.Children[0].Children[0].Value)
}
