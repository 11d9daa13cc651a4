package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// Cities is the supported destination enumeration, in display order.
var Cities = []types.City{
	{Name: "Lisbon", Lat: 38.7223, Lng: -9.1393},
	{Name: "Porto", Lat: 41.1496, Lng: -8.6109},
	{Name: "Faro", Lat: 37.0194, Lng: -7.9304},
	{Name: "Coimbra", Lat: 40.2033, Lng: -8.4103},
	{Name: "Évora", Lat: 38.5667, Lng: -7.9},
	{Name: "Braga", Lat: 41.5454, Lng: -8.4265},
	{Name: "Sintra", Lat: 38.8029, Lng: -9.3817},
	{Name: "Aveiro", Lat: 40.6405, Lng: -8.6538},
}

// DefaultCity is the first supported city, used when a day has none.
func DefaultCity() string {
	return Cities[0].Name
}

// IsSupportedCity reports whether name is in the enumeration. Unknown cities are tolerated
// elsewhere; this is only used for validation hints.
func IsSupportedCity(name string) bool {
	for _, c := range Cities {
		if c.Name == name {
			return true
		}
	}
	return false
}
