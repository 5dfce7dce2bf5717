package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"items.csv": "ITEM GROUP;PN#;DESCRIPTION;MAKE / BUY;BOM Type\n" +
			"WIDGET;W-1;WIDGET ASSY;Make;Production\n" +
			";;;;\n",
		"routes.csv": "Item Groups - Type;ItemCode;Quantity\n" +
			"WIDGET - ASSY;WELD;\n" +
			"WIDGET - ASSY;R-WELDER;1\n",
		"itt.csv": "ParentKey;ItemCode;Quantity\n" +
			"W-1;C-1;2\n",
		"stages.csv": "Internal Number;Code\n" +
			"10;WELD\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in)
	metricsFile := filepath.Join(t.TempDir(), "routegen.prom")

	stdout, err := execute(t, "run",
		"--source", "file",
		"--input", in,
		"--output", out,
		"--delimiter", ";",
		"--workers", "2",
		"--metrics-file", metricsFile,
		"--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 items, 1 results, 0 warnings, 0 duplicates, 0 orphan records")

	bom, err := os.ReadFile(filepath.Join(out, "bom.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Quantity;ParentKey;ItemCode;Warehouse;ItemType;StageId;SeqNum;LineNum;Warnings\n"+
		"1;W-1;R-WELDER;040;290;1;0;0;\n"+
		"2;W-1;C-1;040;4;1;1;1;\n", string(bom))

	stages, err := os.ReadFile(filepath.Join(out, "stages.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ParentKey;ItemCode;StgEntry;Warehouse;StageId;SeqNum;LineNum;Warnings\n"+
		"W-1;WELD;10;040;1;0;0;\n", string(stages))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `routegen_runs_total{source="file",status="success"}`)
}

func TestCheckCommand(t *testing.T) {
	in := t.TempDir()
	writeInputs(t, in)

	stdout, err := execute(t, "check", "--input", in, "--delimiter", ";", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "items.csv: 2 rows, ok")

	require.NoError(t, os.WriteFile(filepath.Join(in, "itt.csv"), []byte("ParentKey;Item;Quantity\n"), 0o644))
	stdout, err = execute(t, "check", "--input", in, "--delimiter", ";", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, stdout, "itt.csv: 0 rows, missing [ItemCode]")
}

func TestRunCommand_UnknownSource(t *testing.T) {
	_, err := execute(t, "run", "--source", "ftp", "--log-level", "error")
	assert.ErrorContains(t, err, "unknown ROUTEGEN_SOURCE")
}

func TestRunCommand_ListsUnroutedItems(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in)
	require.NoError(t, os.WriteFile(filepath.Join(in, "items.csv"), []byte(
		"ITEM GROUP;PN#;DESCRIPTION;MAKE / BUY;BOM Type\n"+
			"WIDGET;W-1;WIDGET ASSY;Make;Production\n"+
			"PANELS;P-1;PANEL;Make;Production\n"), 0o644))

	stdout, err := execute(t, "run", "--input", in, "--output", out, "--delimiter", ";", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 items, 2 results, 1 warnings")
	assert.Contains(t, stdout, "no output rows for P-1: No resources found for PANELS")
}

func TestRunCommand_RejectsBadWorkerCount(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in)

	_, err := execute(t, "run", "--input", in, "--output", out, "--delimiter", ";", "--workers", "abc", "--log-level", "error")
	assert.ErrorContains(t, err, "invalid ROUTEGEN_WORKERS")

	_, err = execute(t, "run", "--input", in, "--output", out, "--delimiter", ";", "--buffer-rows", "-1", "--log-level", "error")
	assert.ErrorContains(t, err, "invalid ROUTEGEN_BUFFER_ROWS")
}
