package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// Location is a fixed geographic monitoring point.
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Registry holds the ordered set of monitoring points. It is built once at
// startup and never mutated afterwards.
type Registry struct {
	locations []Location
	byID      map[string]Location
}

// New creates a Registry from the given locations, preserving order.
func New(locations []Location) *Registry {
	byID := make(map[string]Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}
	return &Registry{
		locations: locations,
		byID:      byID,
	}
}

// Default returns a Registry with the built-in Aguachica monitoring points.
func Default() *Registry {
	return New(defaultLocations())
}

// LoadFile reads a JSON array of locations from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read locations file: %w", err)
	}

	var locs []Location
	if err := json.Unmarshal(data, &locs); err != nil {
		return nil, fmt.Errorf("registry: decode locations file: %w", err)
	}
	if len(locs) == 0 {
		return nil, fmt.Errorf("registry: locations file %s is empty", path)
	}

	return New(locs), nil
}

// List returns all locations in insertion order.
func (r *Registry) List() []Location {
	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// Get looks up a location by id.
func (r *Registry) Get(id string) (Location, bool) {
	loc, ok := r.byID[id]
	return loc, ok
}

// Len returns the number of registered locations.
func (r *Registry) Len() int {
	return len(r.locations)
}

func defaultLocations() []Location {
	return []Location{
		{ID: "aguachica_general", Name: "Aguachica - Vista General", Lat: 8.312, Lon: -73.626},
		{ID: "parque_central", Name: "Parque Central", Lat: 8.310675833008426, Lon: -73.62363665855918},
		{ID: "universidad", Name: "Universidad Popular del Cesar", Lat: 8.314789098234467, Lon: -73.59638568793966},
		{ID: "parque_morrocoy", Name: "Parque Morrocoy", Lat: 8.310373774726447, Lon: -73.61670782048647},
		{ID: "patinodromo", Name: "Patinódromo", Lat: 8.297149888853758, Lon: -73.62335200184627},
		{ID: "ciudadela_paz", Name: "Ciudadela de la Paz", Lat: 8.312099985681844, Lon: -73.63467832511535},
		{ID: "bosque", Name: "Bosque", Lat: 8.312303609676293, Lon: -73.61448867800057},
		{ID: "estadio", Name: "Estadio", Lat: 8.30159931733102, Lon: -73.622763654179},
	}
}
