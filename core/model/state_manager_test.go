package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("StandardScaler", "Transform")
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
	assert.Equal(t, "Transform", notFitted.Method)

	s.SetDimensions(3, 10)
	s.SetFitted()
	assert.NoError(t, s.RequireFitted("StandardScaler", "Transform"))

	nf, ns := s.GetDimensions()
	assert.Equal(t, 3, nf)
	assert.Equal(t, 10, ns)

	assert.NoError(t, s.RequireFeatures("Transform", mat.NewDense(2, 3, nil)))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(s.RequireFeatures("Transform", mat.NewDense(2, 2, nil)), &dimErr))

	s.Reset()
	assert.False(t, s.IsFitted())
	nf, _ = s.GetDimensions()
	assert.Zero(t, nf)
}
