package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platterhq/delivery-shared/validation"
)

func TestZoneValidation(t *testing.T) {
	t.Run("valid zone", func(t *testing.T) {
		zone := Zone{
			ID:            "zone-1",
			Name:          "Inner",
			MinDistanceKm: 0,
			MaxDistanceKm: 10,
			BaseFee:       4.00,
		}

		require.NoError(t, validation.Validate(&zone))
	})

	t.Run("missing id", func(t *testing.T) {
		zone := Zone{MaxDistanceKm: 10, BaseFee: 4.00}

		err := validation.Validate(&zone)
		require.Error(t, err)

		fields := validation.ParseValidationErrors(err)
		require.Len(t, fields, 1)
		assert.Equal(t, "id", fields[0].Field)
	})

	t.Run("inverted range", func(t *testing.T) {
		zone := Zone{
			ID:            "zone-1",
			MinDistanceKm: 15,
			MaxDistanceKm: 10,
			BaseFee:       4.00,
		}

		err := validation.Validate(&zone)
		require.Error(t, err)

		fields := validation.ParseValidationErrors(err)
		require.NotEmpty(t, fields)
		assert.Equal(t, "max_distance_km", fields[0].Field)
	})

	t.Run("negative base fee", func(t *testing.T) {
		zone := Zone{
			ID:            "zone-1",
			MaxDistanceKm: 10,
			BaseFee:       -1.00,
		}

		assert.Error(t, validation.Validate(&zone))
	})
}

func TestOffersFreeShipping(t *testing.T) {
	threshold := 40.0
	zone := Zone{ID: "zone-1", MaxDistanceKm: 10, BaseFee: 4.00, FreeShippingThreshold: &threshold}

	assert.True(t, zone.OffersFreeShipping(40))
	assert.True(t, zone.OffersFreeShipping(55.5))
	assert.False(t, zone.OffersFreeShipping(39.99))

	noThreshold := Zone{ID: "zone-2", MaxDistanceKm: 10, BaseFee: 4.00}
	assert.False(t, noThreshold.OffersFreeShipping(1000))
}
