package kmlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementNotFoundMessage(t *testing.T) {
	err := &ElementNotFound{ElementType: "Placemark", Lookups: map[string]any{"name": "Store 3", "id": "s3"}}
	assert.Equal(t, "Placemark matching query(id=s3, name=Store 3) does not exist", err.Error())

	bare := &ElementNotFound{ElementType: "Folder"}
	assert.Equal(t, "Folder does not exist", bare.Error())
}

func TestMultipleElementsReturnedMessage(t *testing.T) {
	err := &MultipleElementsReturned{ElementType: "Point", Count: 3, Lookups: map[string]any{"visibility": true}}
	assert.Contains(t, err.Error(), "it returned 3")
	assert.Contains(t, err.Error(), "visibility=true")
}

func TestInvalidCoordinatesAsValidationError(t *testing.T) {
	var err error = fmt.Errorf("building point: %w", &InvalidCoordinates{
		Message:     "longitude out of range",
		Field:       "longitude",
		Coordinates: 200.0,
	})

	var ic *InvalidCoordinates
	require.True(t, errors.As(err, &ic))
	assert.Equal(t, "longitude", ic.Field)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "longitude", ve.Field)
	assert.Equal(t, 200.0, ve.Value)
}

func TestParseErrorUnwrap(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := &ParseError{Message: "malformed KML", Source: "stores.kml", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "malformed KML (source: stores.kml): unexpected EOF", err.Error())
}
