package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plc-visualizer/plc2yaml/internal/config"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportText = `#BEGIN ELEMENT_DOC
"MHR70:RD","","TempSensor1","","desc"
"MHR70","","Counter1","","desc"
"X0","","StartPB","","desc"
"MC5","","Alarm1","","desc"
#END
`

// runCmd executes the root command in dir with args.
func runCmd(t *testing.T, dir string, args ...string) (string, error) {
	chdir(t, dir)

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeExport(t *testing.T, dir, content string) string {
	path := filepath.Join(dir, "EXPORT.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir, exportText)

	out, err := runCmd(t, dir, "convert", in)
	require.NoError(t, err)
	assert.Contains(t, out, "YAML file generated: Tags.yaml (3 tags)")
	assert.Contains(t, out, "Skipped 1 lines: address_mismatch=1")

	f, err := os.Open(filepath.Join(dir, "Tags.yaml"))
	require.NoError(t, err)
	defer f.Close()

	doc, err := export.DecodeYAML(f)
	require.NoError(t, err)
	require.Len(t, doc.Children, 3)
	assert.Equal(t, 4, *doc.Children[2].Children[0].Value)
}

func TestConvertCommand_Flags(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir, exportText)

	out, err := runCmd(t, dir, "convert", in, "--format", "msgpack", "--coil-offset=false")
	require.NoError(t, err)
	assert.Contains(t, out, "MSGPACK file generated: Tags.msgpack")

	f, err := os.Open(filepath.Join(dir, "Tags.msgpack"))
	require.NoError(t, err)
	defer f.Close()

	doc, err := export.DecodeMsgpack(f)
	require.NoError(t, err)
	assert.Equal(t, 5, *doc.Children[2].Children[0].Value)
}

func TestConvertCommand_RangeCheck(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir, "#BEGIN ELEMENT_DOC\n\"MHR0\",\"\",\"Underflow\",\"\",\"\"\n\"MHR70\",\"\",\"Counter1\",\"\",\"\"\n#END\n")

	out, err := runCmd(t, dir, "convert", in)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 tags)")

	out, err = runCmd(t, dir, "convert", in, "--range-check")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 tags)")
	assert.Contains(t, out, "offset_range=1")
}

func TestConvertCommand_FormatFromOutputPath(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir, exportText)
	outPath := filepath.Join(dir, "plc1.msgpack")

	_, err := runCmd(t, dir, "convert", in, outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	_, err = export.DecodeMsgpack(f)
	assert.NoError(t, err)
}

func TestConvertCommand_MissingMarker(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir, "\"MC1\",\"\",\"A\",\"\",\"\"\n")

	_, err := runCmd(t, dir, "convert", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker not found")

	_, statErr := os.Stat(filepath.Join(dir, "Tags.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvertCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, strings.Replace(exportText, "#BEGIN ELEMENT_DOC", "@@DATA", 1))
	cfg := `
convert:
  input: EXPORT.txt
  output: out/Modbus.yaml
markers:
  begin: "@@DATA"
mapping:
  root_name: Plc1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plc2yaml.yaml"), []byte(cfg), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0755))

	_, err := runCmd(t, dir, "convert")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "Modbus.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name: Plc1\n"))
}

func TestConvertCommand_NoInput(t *testing.T) {
	_, err := runCmd(t, t.TempDir(), "convert")
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir, exportText)

	out, err := runCmd(t, dir, "inspect", in, "--drops")
	require.NoError(t, err)
	assert.Contains(t, out, "Counter1")
	assert.Contains(t, out, "NumRegister")
	assert.Contains(t, out, "3 tags from 4 records (4 data lines)")
	assert.Contains(t, out, "address_mismatch")
	assert.Contains(t, out, "X0")

	_, statErr := os.Stat(filepath.Join(dir, "Tags.yaml"))
	assert.True(t, os.IsNotExist(statErr), "inspect must not write output")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "plc2yaml dev")
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDirectory = filepath.Join(t.TempDir(), "conversions")

	e, err := newServer(cfg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(exportText))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	entries, err := os.ReadDir(cfg.Storage.DataDirectory)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
