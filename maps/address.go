package maps

import (
	"strings"

	"github.com/platterhq/delivery-shared/geo"
)

// AddressResult is the provider-neutral address shape produced by geocoding.
// Fields may be partially populated; providers disagree on granularity.
// SourcePoint is always set.
type AddressResult struct {
	FullAddress   string    `json:"full_address"`
	StreetAddress string    `json:"street_address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Country       string    `json:"country,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	SourcePoint   geo.Point `json:"source_point"`
}

// addressFromPrimary maps a Google geocode result into the neutral shape.
func addressFromPrimary(r *GeocodeResult) *AddressResult {
	return &AddressResult{
		FullAddress:   r.FormattedAddress,
		StreetAddress: r.StreetAddress,
		City:          r.City,
		State:         r.State,
		Country:       r.Country,
		PostalCode:    r.PostalCode,
		SourcePoint:   r.Location,
	}
}

// Address maps the place details into the neutral shape.
func (d *PlaceDetails) Address() *AddressResult {
	result := &AddressResult{
		FullAddress: d.FormattedAddress,
		SourcePoint: d.Location,
	}

	var streetNumber, route string
	for _, comp := range d.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				streetNumber = comp.LongName
			case "route":
				route = comp.LongName
			case "locality":
				result.City = comp.LongName
			case "administrative_area_level_1":
				result.State = comp.ShortName
			case "country":
				result.Country = comp.ShortName
			case "postal_code":
				result.PostalCode = comp.LongName
			}
		}
	}

	if route != "" {
		result.StreetAddress = strings.TrimSpace(streetNumber + " " + route)
	}

	return result
}

// AddressFromNominatim maps a Nominatim result into the neutral shape.
// The caller supplies the point so a caller-provided coordinate survives
// the provider's snapping.
func AddressFromNominatim(r *NominatimResult, point geo.Point) *AddressResult {
	result := &AddressResult{
		FullAddress: r.DisplayName,
		City:        r.Address.Locality(),
		State:       r.Address.State,
		Country:     strings.ToUpper(r.Address.CountryCode),
		PostalCode:  r.Address.Postcode,
		SourcePoint: point,
	}

	if r.Address.Road != "" {
		result.StreetAddress = strings.TrimSpace(r.Address.HouseNumber + " " + r.Address.Road)
	}

	return result
}
