package qtl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.dedis.ch/onet/v3/log"
)

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// writeHeader writes the "#\n# name\n#\n\n" banner shared by config and
// population files.
func writeHeader(w *bufio.Writer, name string) {
	fmt.Fprintln(w, "#")
	fmt.Fprintln(w, "#", name)
	fmt.Fprintln(w, "#")
	fmt.Fprintln(w)
}

func Exists(filename string) bool {
	if _, err := os.Stat(filename); err == nil {
		return true
	}
	return false
}

// CheckNotExist fails with ErrOutputExists on the first path already present.
func CheckNotExist(filenames ...string) error {
	for _, filename := range filenames {
		if Exists(filename) {
			return fmt.Errorf("%w: %s", ErrOutputExists, filename)
		}
	}
	return nil
}

// WriteNewFile renders the whole file into memory and creates filename with
// O_EXCL, so an existing file is never truncated.
func WriteNewFile(filename string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrOutputExists, filename)
		}
		return err
	}
	if _, err = buf.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", filename, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	log.Lvl3("Saved data to", filename)
	return nil
}

func outFile(dir, filename string) string {
	return filepath.Join(dir, filename)
}
