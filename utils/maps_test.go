package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapsURL(t *testing.T) {
	t.Run("standard place link", func(t *testing.T) {
		lat, lng := ParseMapsURL("https://www.google.com/maps/place/Ground/@12.9716,77.5946,17z/data=!3m1")
		require.NotNil(t, lat)
		require.NotNil(t, lng)
		assert.InDelta(t, 12.9716, *lat, 1e-9)
		assert.InDelta(t, 77.5946, *lng, 1e-9)
	})

	t.Run("negative coordinates", func(t *testing.T) {
		lat, lng := ParseMapsURL("https://maps.google.com/@-33.8688,-151.2093,12z")
		require.NotNil(t, lat)
		require.NotNil(t, lng)
		assert.InDelta(t, -33.8688, *lat, 1e-9)
		assert.InDelta(t, -151.2093, *lng, 1e-9)
	})

	t.Run("integer coordinates", func(t *testing.T) {
		lat, lng := ParseMapsURL("https://maps.google.com/@12,77,10z")
		require.NotNil(t, lat)
		require.NotNil(t, lng)
		assert.InDelta(t, 12, *lat, 1e-9)
		assert.InDelta(t, 77, *lng, 1e-9)
	})

	t.Run("no coordinate fragment", func(t *testing.T) {
		lat, lng := ParseMapsURL("https://maps.app.goo.gl/AbCdEf123")
		assert.Nil(t, lat)
		assert.Nil(t, lng)
	})

	t.Run("empty url", func(t *testing.T) {
		lat, lng := ParseMapsURL("")
		assert.Nil(t, lat)
		assert.Nil(t, lng)
	})
}
