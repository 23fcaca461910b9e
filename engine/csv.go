package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/souvik131/optionlab/option"
)

// fixed4 renders a float with exactly four decimals.
type fixed4 struct{ v float64 }

func (f fixed4) MarshalCSV() (string, error) {
	return strconv.FormatFloat(f.v, 'f', 4, 64), nil
}

func (f *fixed4) UnmarshalCSV(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.v = v
	return nil
}

type csvRow struct {
	X     fixed4 `csv:"x"`
	Y     fixed4 `csv:"y"`
	Value fixed4 `csv:"value"`
}

// WriteCSV writes "<x field>,<y field>,<measure>" followed by one row per
// cell in row-major order.
func (s *Surface) WriteCSV(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s,%s,%s\n", s.X.Name, s.Y.Name, s.Measure); err != nil {
		return err
	}
	points := s.Points()
	rows := make([]csvRow, len(points))
	for i, p := range points {
		rows[i] = csvRow{X: fixed4{p.X}, Y: fixed4{p.Y}, Value: fixed4{p.Value}}
	}
	return gocsv.MarshalWithoutHeaders(rows, w)
}

// SaveCSV writes the surface to path, replacing any existing file.
func (s *Surface) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := s.WriteCSV(file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// ReadCSV parses output of WriteCSV. It returns the header columns and the
// points, which carry the four-decimal rounding of the file.
func ReadCSV(r io.Reader) ([]string, []Point, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header := strings.Split(strings.TrimSpace(line), ",")
	if len(header) != 3 {
		return nil, nil, fmt.Errorf("%w: header %q", option.ErrInvalidArgument, line)
	}

	var rows []csvRow
	if err := gocsv.UnmarshalWithoutHeaders(br, &rows); err != nil {
		return nil, nil, err
	}
	points := make([]Point, len(rows))
	for i, row := range rows {
		points[i] = Point{X: row.X.v, Y: row.Y.v, Value: row.Value.v}
	}
	return header, points, nil
}
