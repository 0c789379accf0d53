package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// ReadFeatureMatrix parses a CSV whose first column holds sample identifiers
// and whose header names the features.
func ReadFeatureMatrix(r io.Reader) (*FeatureMatrix, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewConfigurationErrorf("data_path", "reading header: %v", err)
	}
	if len(header) < 2 {
		return nil, errors.NewConfigurationError("data_path", "header has no feature columns")
	}
	features := make([]string, len(header)-1)
	for i, h := range header[1:] {
		features[i] = strings.TrimSpace(h)
	}

	var samples []string
	var values []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewConfigurationErrorf("data_path", "line %d: %v", line, err)
		}
		samples = append(samples, strings.TrimSpace(rec[0]))
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewConfigurationErrorf("data_path", "line %d, feature %q: %q is not numeric", line, features[j], cell)
			}
			values = append(values, v)
		}
	}
	if len(samples) == 0 {
		return nil, errors.NewConfigurationError("data_path", "no samples")
	}
	return NewFeatureMatrix(samples, features, mat.NewDense(len(samples), len(features), values))
}

// LoadFeatureMatrix reads a feature matrix CSV from path.
func LoadFeatureMatrix(path string) (*FeatureMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfigurationErrorf("data_path", "%v", err)
	}
	defer f.Close()
	return ReadFeatureMatrix(f)
}

var requiredAnnotationColumns = []string{"Class", "Dataset", "Dataset type"}

// annotationReader names an anonymous first column "Sample" and checks the
// required columns before gocsv maps the rows.
type annotationReader struct {
	*csv.Reader
	headerDone bool
}

func (r *annotationReader) Read() ([]string, error) {
	rec, err := r.Reader.Read()
	if err != nil || r.headerDone {
		return rec, err
	}
	r.headerDone = true
	return fixAnnotationHeader(rec)
}

func (r *annotationReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func fixAnnotationHeader(header []string) ([]string, error) {
	header = append([]string(nil), header...)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 && header[0] == "" {
		header[0] = "Sample"
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	if !have["Sample"] {
		return nil, errors.NewConfigurationError("annotation_path", `missing sample column (unnamed first column or "Sample")`)
	}
	for _, col := range requiredAnnotationColumns {
		if !have[col] {
			return nil, errors.NewConfigurationErrorf("annotation_path", "missing column %q", col)
		}
	}
	return header, nil
}

// ReadAnnotations parses an annotation CSV with columns Class, Dataset and
// "Dataset type", keyed by the first (sample) column.
func ReadAnnotations(r io.Reader) ([]Annotation, error) {
	var rows []Annotation
	if err := gocsv.UnmarshalCSV(&annotationReader{Reader: csv.NewReader(r)}, &rows); err != nil {
		var cfg *errors.ConfigurationError
		if errors.As(err, &cfg) {
			return nil, err
		}
		return nil, errors.NewConfigurationErrorf("annotation_path", "%v", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewConfigurationError("annotation_path", "no annotation rows")
	}
	return rows, nil
}

// LoadAnnotations reads an annotation CSV from path.
func LoadAnnotations(path string) ([]Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfigurationErrorf("annotation_path", "%v", err)
	}
	defer f.Close()
	return ReadAnnotations(f)
}

// Load reads both files and builds the partition view.
func Load(dataPath, annotationPath string) (*Data, error) {
	m, err := LoadFeatureMatrix(dataPath)
	if err != nil {
		return nil, err
	}
	anns, err := LoadAnnotations(annotationPath)
	if err != nil {
		return nil, err
	}
	return NewData(m, anns)
}
