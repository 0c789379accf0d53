package dataset

import (
	"fmt"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// Partition is the role a dataset plays in a run.
type Partition string

const (
	Training   Partition = "Training"
	Filtration Partition = "Filtration"
	Validation Partition = "Validation"
)

// ParsePartition accepts exactly the three partition labels.
func ParsePartition(s string) (Partition, error) {
	switch p := Partition(s); p {
	case Training, Filtration, Validation:
		return p, nil
	default:
		return "", errors.NewConfigurationErrorf("Dataset type", "invalid partition label %q", s)
	}
}

// Gates reports whether scores on this partition can veto a subset.
func (p Partition) Gates() bool {
	return p == Training || p == Filtration
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (p *Partition) UnmarshalCSV(s string) error {
	parsed, err := ParsePartition(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (p Partition) MarshalCSV() (string, error) {
	return string(p), nil
}

// Annotation is one row of the annotation table.
type Annotation struct {
	Sample    string    `csv:"Sample"`
	Class     int       `csv:"Class"`
	Dataset   string    `csv:"Dataset"`
	Partition Partition `csv:"Dataset type"`
}

func (a Annotation) validate() error {
	if a.Sample == "" {
		return errors.NewConfigurationError("Sample", "empty sample identifier")
	}
	if a.Class != 0 && a.Class != 1 {
		return errors.NewConfigurationErrorf("Class", "sample %q has non-binary class %d", a.Sample, a.Class)
	}
	if a.Dataset == "" {
		return errors.NewConfigurationErrorf("Dataset", "sample %q has no dataset", a.Sample)
	}
	if _, err := ParsePartition(string(a.Partition)); err != nil {
		return errors.Wrapf(err, "sample %q", a.Sample)
	}
	return nil
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s(%s/%s, class=%d)", a.Sample, a.Dataset, a.Partition, a.Class)
}
