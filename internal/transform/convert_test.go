package transform

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerencial/internal/etlerr"
	"gerencial/internal/source"
	"gerencial/internal/util"
)

func TestRescaleNumberStripsThousandSeparator(t *testing.T) {
	got, err := RescaleNumber("Quantidade", source.NewValue("1.234"), util.Int, 1000)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 1.234, *got, 1e-12)

	got, err = RescaleNumber("Valor Total", source.NewValue("12.345,6"), util.Float, 100)
	assert.Nil(t, got)
	var conv *etlerr.ConversionError
	require.True(t, errors.As(err, &conv))
	assert.Equal(t, "Valor Total", conv.Column)
}

func TestRescaleNumberNull(t *testing.T) {
	got, err := RescaleNumber("Peso Liquido", source.NewValue(""), util.Float, 1000)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = RescaleNumber("Pedido", source.NewValue(""), util.Int, 1)
	var conv *etlerr.ConversionError
	require.True(t, errors.As(err, &conv))
	assert.Equal(t, "Pedido", conv.Column)
}

func TestParseDate(t *testing.T) {
	got := ParseDate(source.NewValue("05/03/2025"))
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), *got)

	assert.Nil(t, ParseDate(source.NewValue("/  /")))
	assert.Nil(t, ParseDate(source.NewValue("")))
	assert.Nil(t, ParseDate(source.NewValue("2025-03-05")))
}

func TestDivideKeepsNonFinite(t *testing.T) {
	assert.True(t, math.IsInf(*divide(fp(10), fp(0)), 1))
	assert.True(t, math.IsNaN(*divide(fp(0), fp(0))))
	assert.Nil(t, divide(nil, fp(1)))
}

func TestRoundHalfEven(t *testing.T) {
	assert.Equal(t, 1.234, *round(fp(1.23449), 3))
	assert.Equal(t, 2.0, *round(fp(2.0), 3))
	assert.Nil(t, round(nil, 3))
}

func TestJoinDelivery(t *testing.T) {
	got := joinDelivery(source.NewValue("CAMPINAS"), source.NewValue("SP"), "-", "Brasil")
	require.NotNil(t, got)
	assert.Equal(t, "CAMPINAS-SP-Brasil", *got)
	assert.Nil(t, joinDelivery(source.NewValue(""), source.NewValue("SP"), "-", "Brasil"))
}
