package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "exhaustive: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "exhaustive: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 3, 1)

	want := "exhaustive: Predict: dimension mismatch on axis 1 (features). Expected 10, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestSearchErrorTaxonomy(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		msg   string
	}{
		{
			name: "configuration",
			err:  NewConfigurationError("main_scoring_function", "not listed in scoring_functions"),
			check: func(err error) bool {
				var target *ConfigurationError
				return As(err, &target) && target.Field == "main_scoring_function"
			},
			msg: "exhaustive: configuration: main_scoring_function: not listed in scoring_functions",
		},
		{
			name: "selection",
			err:  NewSelectionError(10, 4),
			check: func(err error) bool {
				var target *SelectionError
				return As(err, &target) && target.N == 10 && target.Available == 4
			},
			msg: "exhaustive: feature selection: requested 10 features, only 4 available",
		},
		{
			name: "insufficient data",
			err:  NewInsufficientDataError(3, 5),
			check: func(err error) bool {
				var target *InsufficientDataError
				return As(err, &target) && target.Folds == 5
			},
			msg: "exhaustive: 3 training samples cannot be split into 5 folds",
		},
		{
			name: "worker failure",
			err:  NewWorkerFailure(2, 6, 3, cause),
			check: func(err error) bool {
				var target *WorkerFailure
				return As(err, &target) && target.Worker == 2 && Is(err, cause)
			},
			msg: "exhaustive: worker 2 failed on n=6, k=3: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("unexpected error shape: %#v", tt.err)
			}
			if tt.err.Error() != tt.msg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.msg)
			}
		})
	}
}

func TestWrapKeepsType(t *testing.T) {
	err := Wrapf(NewSelectionError(5, 2), "n=%d", 5)

	var selErr *SelectionError
	if !As(err, &selErr) {
		t.Fatal("wrapped error should still be a *SelectionError")
	}
	if !strings.HasPrefix(err.Error(), "n=5: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestWarnUsesInstalledSink(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("ROC_AUC", "only one class present", 0.5))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "ROC_AUC") {
		t.Errorf("unexpected warning %v", got[0])
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("fit", []float64{1, 2, 3}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("fit", []float64{1, math.NaN(), math.Inf(1)}, 7)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 2 || numErr.Iteration != 7 {
		t.Errorf("unexpected payload %+v", numErr)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(3, 0); got != 0 {
		t.Errorf("SafeDivide(3, 0) = %v, want 0", got)
	}
	if got := SafeDivide(3, 4); got != 0.75 {
		t.Errorf("SafeDivide(3, 4) = %v, want 0.75", got)
	}
}
