package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionalStringSetBareFlag(t *testing.T) {
	var o optionalString
	require := assert.New(t)
	require.NoError(o.Set("true"))
	require.True(o.Provided)
	require.Equal("", o.Value)
}

func TestOptionalStringSetExplicitValue(t *testing.T) {
	var o optionalString
	assert.NoError(t, o.Set("https://example.com"))
	assert.True(t, o.Provided)
	assert.Equal(t, "https://example.com", o.Value)
}

func TestOptionalStringIsBoolFlag(t *testing.T) {
	var o optionalString
	assert.True(t, o.IsBoolFlag())
}

func TestOptionalStringStringNilSafe(t *testing.T) {
	var o *optionalString
	assert.Equal(t, "", o.String())
}
