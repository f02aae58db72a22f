package weather

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var newEngland = []MonitoredResort{
	// Vermont
	{Name: "Bolton Valley", Latitude: 44.4217, Longitude: -72.8497},
	{Name: "Stowe", Latitude: 44.5303, Longitude: -72.7814},
	{Name: "Jay Peak", Latitude: 44.9379, Longitude: -72.5045},
	{Name: "Killington", Latitude: 43.6773, Longitude: -72.7933},
	{Name: "Sugarbush", Latitude: 44.1359, Longitude: -72.8944},
	{Name: "Mad River Glen", Latitude: 44.2025, Longitude: -72.9175},
	{Name: "Smugglers Notch", Latitude: 44.5758, Longitude: -72.7761},
	{Name: "Mount Snow", Latitude: 42.9602, Longitude: -72.9204},
	{Name: "Okemo", Latitude: 43.4018, Longitude: -72.7170},
	{Name: "Stratton", Latitude: 43.1135, Longitude: -72.9082},
	// New Hampshire
	{Name: "Bretton Woods", Latitude: 44.2581, Longitude: -71.4375},
	{Name: "Cannon Mountain", Latitude: 44.1564, Longitude: -71.6989},
	{Name: "Loon Mountain", Latitude: 44.0364, Longitude: -71.6203},
	{Name: "Waterville Valley", Latitude: 43.9667, Longitude: -71.5167},
	{Name: "Wildcat", Latitude: 44.2592, Longitude: -71.2031},
	{Name: "Attitash", Latitude: 44.1103, Longitude: -71.2578},
	// Maine
	{Name: "Sunday River", Latitude: 44.4689, Longitude: -70.8644},
	{Name: "Sugarloaf", Latitude: 45.0314, Longitude: -70.3128},
}

// Catalog is an ordered list of monitored resorts.
type Catalog []MonitoredResort

// DefaultCatalog returns the built-in New England resort list.
func DefaultCatalog() Catalog {
	return append(Catalog(nil), newEngland...)
}

// LoadCatalog reads a YAML resort list:
//
//	resorts:
//	  - name: Bolton Valley
//	    lat: 44.4217
//	    lon: -72.8497
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resort catalog %s: %w", path, err)
	}
	var doc struct {
		Resorts []MonitoredResort `yaml:"resorts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse resort catalog %s: %w", path, err)
	}
	if len(doc.Resorts) == 0 {
		return nil, fmt.Errorf("resort catalog %s lists no resorts", path)
	}
	seen := make(map[string]bool, len(doc.Resorts))
	for _, r := range doc.Resorts {
		if r.Name == "" {
			return nil, fmt.Errorf("resort catalog %s: entry without a name", path)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("resort catalog %s: duplicate resort %q", path, r.Name)
		}
		seen[r.Name] = true
	}
	return Catalog(doc.Resorts), nil
}

// Names lists resort names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Name
	}
	return out
}

// Select returns the catalog entries named in names, in catalog order, and
// the names that matched nothing.
func (c Catalog) Select(names []string) (Catalog, []string) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out Catalog
	for _, r := range c {
		if wanted[r.Name] {
			out = append(out, r)
			delete(wanted, r.Name)
		}
	}
	var unknown []string
	for _, n := range names {
		if wanted[n] {
			unknown = append(unknown, n)
			delete(wanted, n)
		}
	}
	return out, unknown
}
