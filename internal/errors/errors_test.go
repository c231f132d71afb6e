package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderMetadata(t *testing.T) {
	t.Parallel()

	err := Newf("device %q not found", "hw:0,0").
		Component("audio").
		Category(CategoryAudioSource).
		Context("operation", "start").
		Build()

	assert.Equal(t, `device "hw:0,0" not found`, err.Error())
	assert.Equal(t, "audio", err.Component)
	assert.Equal(t, CategoryAudioSource, err.Category)
	assert.Equal(t, "start", err.Context["operation"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestCategoryMatching(t *testing.T) {
	t.Parallel()

	devErr := New(nil).Component("audio").Category(CategoryAudioSource).Build()
	cfgErr := New(nil).Component("chain").Category(CategoryConfiguration).Build()

	assert.True(t, Is(devErr, &EnhancedError{Category: CategoryAudioSource}))
	assert.False(t, Is(devErr, cfgErr))
	assert.True(t, HasCategory(cfgErr, CategoryConfiguration))
	assert.False(t, HasCategory(cfgErr, CategorySink))
}

func TestWrappedErrorUnwraps(t *testing.T) {
	t.Parallel()

	sentinel := fmt.Errorf("file is empty")
	wrapped := New(fmt.Errorf("decode: %w", sentinel)).
		Component("audio").
		Category(CategoryFileIO).
		Build()

	require.ErrorIs(t, wrapped, sentinel)

	var ee *EnhancedError
	require.ErrorAs(t, fmt.Errorf("outer: %w", wrapped), &ee)
	assert.Equal(t, CategoryFileIO, ee.Category)
}

func TestNewStdChainsBuilder(t *testing.T) {
	t.Parallel()

	err := NewStd("no input file given").
		Component("cmd").
		Category(CategoryConfiguration).
		Build()

	assert.Equal(t, "no input file given", err.Error())
	assert.Equal(t, "cmd", err.Component)
	assert.Equal(t, CategoryConfiguration, err.Category)
}

func TestLogAttrs(t *testing.T) {
	t.Parallel()

	enhanced := Newf("boom").
		Component("sink").
		Category(CategorySink).
		Context("operation", "write").
		Build()

	attrs := LogAttrs(fmt.Errorf("outer: %w", enhanced))
	assert.Contains(t, attrs, "sink")
	assert.Contains(t, attrs, "operation")

	assert.Nil(t, LogAttrs(fmt.Errorf("plain")))
}

func TestNilErrorBuilds(t *testing.T) {
	t.Parallel()

	err := New(nil).Component("test").Build()
	require.NotNil(t, err)
	assert.NotEmpty(t, err.Error())
}
