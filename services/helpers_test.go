package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// openWorkbook parses rendered XLSX bytes and closes the file when the test ends.
func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
