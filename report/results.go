package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/search"
)

const featuresColumn = "features"

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatParam(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// EncodeResults writes table as CSV with the columns
// features, <score columns>, <param columns>, n, k.
// A missing score is written as an empty cell.
func EncodeResults(w io.Writer, table *search.ResultTable) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, 3+len(table.ScoreColumns)+len(table.ParamColumns))
	header = append(header, featuresColumn)
	header = append(header, table.ScoreColumns...)
	header = append(header, table.ParamColumns...)
	header = append(header, "n", "k")
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, row := range table.Rows {
		record = record[:0]
		record = append(record, row.Key)
		for _, c := range table.ScoreColumns {
			v, ok := row.Scores[c]
			if !ok {
				v = math.NaN()
			}
			record = append(record, formatFloat(v))
		}
		for _, c := range table.ParamColumns {
			record = append(record, formatParam(row.Params[c]))
		}
		record = append(record, strconv.Itoa(row.N), strconv.Itoa(row.K))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResults replaces path with the CSV encoding of table.
func WriteResults(path string, table *search.ResultTable) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeResults(w, table)
	})
}

// DecodeResults parses a table written by EncodeResults. Columns holding a
// ";" are score columns; the others between them and n, k are parameters.
// Parameter values come back as float64 when they parse as numbers.
func DecodeResults(r io.Reader) (*search.ResultTable, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading results header")
	}
	if len(header) < 3 || header[0] != featuresColumn ||
		header[len(header)-2] != "n" || header[len(header)-1] != "k" {
		return nil, errors.Newf("malformed results header %q", strings.Join(header, ","))
	}

	table := search.NewResultTable(nil, nil)
	for _, c := range header[1 : len(header)-2] {
		if strings.Contains(c, ";") {
			table.ScoreColumns = append(table.ScoreColumns, c)
		} else {
			table.ParamColumns = append(table.ParamColumns, c)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading results")
	}
	for line, rec := range records {
		row, err := decodeResultRow(header, rec)
		if err != nil {
			return nil, errors.Wrapf(err, "results line %d", line+2)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func decodeResultRow(header, rec []string) (search.ResultRow, error) {
	row := search.ResultRow{
		Key:    rec[0],
		Scores: make(map[string]float64),
		Params: make(map[string]any),
	}
	if rec[0] != "" {
		row.Features = strings.Split(rec[0], ";")
	}
	last := len(header) - 2
	for i := 1; i < last; i++ {
		c, v := header[i], rec[i]
		if strings.Contains(c, ";") {
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return row, errors.Wrapf(err, "column %s", c)
			}
			row.Scores[c] = f
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			row.Params[c] = f
		} else {
			row.Params[c] = v
		}
	}
	var err error
	if row.N, err = strconv.Atoi(rec[last]); err != nil {
		return row, errors.Wrap(err, "column n")
	}
	if row.K, err = strconv.Atoi(rec[last+1]); err != nil {
		return row, errors.Wrap(err, "column k")
	}
	return row, nil
}

// ReadResults loads a results file.
func ReadResults(path string) (*search.ResultTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return DecodeResults(f)
}
