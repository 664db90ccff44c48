package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	DefaultCSVPath = "data/timetable.csv"
	Separator      = ';'
)

// WriteCSV writes the rows as ;-separated values.
func WriteCSV(w io.Writer, table [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("could not write table: %w", err)
	}
	return nil
}

// WriteCSVFile writes the table to path, replacing any previous file. The
// directory is created when missing.
func WriteCSVFile(path string, table [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, table); err != nil {
		return err
	}
	return f.Close()
}
