package fixtures

import (
	"github.com/platterhq/delivery-shared/clients"
	"github.com/platterhq/delivery-shared/geo"
)

// DowntownBranch returns an active branch in downtown Seattle.
func DowntownBranch() *clients.Branch {
	return &clients.Branch{
		ID:            "branch-downtown",
		Name:          "Downtown",
		Location:      geo.Point{Lat: 47.6062, Lng: -122.3321},
		DefaultZoneID: "zone-inner",
		Active:        true,
	}
}

// SuburbBranch returns a branch outside the city core with no flagged
// default zone.
func SuburbBranch() *clients.Branch {
	return &clients.Branch{
		ID:       "branch-suburb",
		Name:     "Eastside",
		Location: geo.Point{Lat: 47.6101, Lng: -122.2015},
		Active:   true,
	}
}
