package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"inventario/internal/inventory"
	"inventario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWriter(t *testing.T) {
	for _, format := range []string{"csv", "xlsx", "excel"} {
		w, err := exportWriter(format)
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}

	_, err := exportWriter("pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestDefaultExportName(t *testing.T) {
	assert.Equal(t, "inventario.csv", defaultExportName("csv"))
	assert.Equal(t, "inventario.xlsx", defaultExportName("xlsx"))
	assert.Equal(t, "inventario.xlsx", defaultExportName("excel"))
}

var exportProducts = []models.Product{{ID: 1, Code: "A1", Name: "Widget", Quantity: 5, UnitPrice: 2.5}}

func TestWriteExportToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "inventario.csv")
	require.NoError(t, writeExport(io.Discard, out, inventory.WriteCSV, exportProducts))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1;A1;Widget;;;5;2.5;;")
}

func TestWriteExportToStdout(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeExport(&stdout, "-", inventory.WriteCSV, exportProducts))
	assert.Contains(t, stdout.String(), "id;code;name")
}

func TestWriteExportReportsFailures(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, writeExport(io.Discard, dir, inventory.WriteCSV, exportProducts), "a directory cannot be created as a file")

	failing := func(io.Writer, []models.Product) error { return errors.New("disk full") }
	out := filepath.Join(dir, "inventario.csv")
	assert.EqualError(t, writeExport(io.Discard, out, failing, exportProducts), "disk full")

	if _, err := os.Stat("/dev/full"); err == nil {
		assert.Error(t, writeExport(io.Discard, "/dev/full", inventory.WriteCSV, exportProducts))
	}
}
