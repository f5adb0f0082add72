package etlerr

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformErrorUnwrap(t *testing.T) {
	conv := &ConversionError{Column: "Largura", Value: "x"}
	err := NewTransformError(StageCatalog, "Empresa_A", conv)

	var target *ConversionError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "Largura", target.Column)
	assert.Contains(t, err.Error(), "Catalog")
	assert.Contains(t, err.Error(), "Empresa_A")
}

func TestExtractionErrorMessages(t *testing.T) {
	err := NewFileNotFound("data/a.csv", os.ErrNotExist)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "file not found")

	failed := NewExtractionFailed("data/a.csv", errors.New("bad quote"))
	assert.Contains(t, failed.Error(), "extraction failed")
	assert.Contains(t, failed.Error(), "bad quote")
}
