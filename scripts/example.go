package main

import (
	"fmt"
	"log"

	"github.com/1F47E/kmlorm/pkg/kml"
	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
	"github.com/1F47E/kmlorm/pkg/spatial"
)

const citiesKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>US Cities</name>
    <Folder>
      <name>East</name>
      <Placemark id="NYC"><name>New York</name><Point><coordinates>-74.0060,40.7128</coordinates></Point></Placemark>
      <Placemark id="PHL"><name>Philadelphia</name><Point><coordinates>-75.1652,39.9526</coordinates></Point></Placemark>
      <Placemark id="JAX"><name>Jacksonville</name><Point><coordinates>-81.6557,30.3322</coordinates></Point></Placemark>
      <Placemark id="CLB"><name>Columbus</name><Point><coordinates>-82.9988,39.9612</coordinates></Point></Placemark>
    </Folder>
    <Folder>
      <name>Central</name>
      <Placemark id="CHI"><name>Chicago</name><Point><coordinates>-87.6298,41.8781</coordinates></Point></Placemark>
      <Placemark id="HOU"><name>Houston</name><Point><coordinates>-95.3698,29.7604</coordinates></Point></Placemark>
      <Placemark id="SAT"><name>San Antonio</name><Point><coordinates>-98.4936,29.4241</coordinates></Point></Placemark>
      <Placemark id="DAL"><name>Dallas</name><Point><coordinates>-96.7970,32.7767</coordinates></Point></Placemark>
      <Placemark id="AUS"><name>Austin</name><Point><coordinates>-97.7431,30.2672</coordinates></Point></Placemark>
    </Folder>
    <Folder>
      <name>West</name>
      <Placemark id="LAX"><name>Los Angeles</name><Point><coordinates>-118.2437,34.0522</coordinates></Point></Placemark>
      <Placemark id="PHX"><name>Phoenix</name><Point><coordinates>-112.0740,33.4484</coordinates></Point></Placemark>
      <Placemark id="SDG"><name>San Diego</name><Point><coordinates>-117.1611,32.7157</coordinates></Point></Placemark>
      <Placemark id="SJC"><name>San Jose</name><Point><coordinates>-121.8863,37.3382</coordinates></Point></Placemark>
      <Placemark id="SFO"><name>San Francisco</name><Point><coordinates>-122.4194,37.7749</coordinates></Point></Placemark>
    </Folder>
  </Document>
</kml>`

func main() {
	f, err := kml.FromString(citiesKML)
	if err != nil {
		log.Fatalf("Failed to parse KML: %v", err)
	}

	// Cities live in folders, so the document has no direct placemarks.
	fmt.Printf("Direct placemarks: %d\n", f.Placemarks().Count())
	cities := f.Placemarks().All()
	fmt.Printf("All placemarks: %d\n", cities.Count())

	// Find cities within 150km of Philadelphia
	center := models.Coordinate{Longitude: -75.1652, Latitude: 39.9526}
	nearby, err := cities.Near(center.Longitude, center.Latitude, 150)
	if err != nil {
		log.Fatalf("Near query failed: %v", err)
	}
	fmt.Println("\nCities within 150km of Philadelphia:")
	for pm := range nearby.Iter() {
		c, _ := pm.Location()
		fmt.Printf("  %s (%s): %.1f km\n", pm.Name, pm.ID, spatial.Distance(center, c))
	}

	// Find cities in a bounding box (Texas area)
	texas, err := cities.WithinBounds(36.5, 25.8, -93.5, -106.6)
	if err != nil {
		log.Fatalf("Bounds query failed: %v", err)
	}
	fmt.Printf("\nCities in Texas: %v\n", names(texas))

	// Lookups chain like Django querysets
	west, err := f.Folders().Get(query.Lookups{"name": "West"})
	if err != nil {
		log.Fatalf("Folder lookup failed: %v", err)
	}
	san, err := query.Placemarks(west).Filter(query.Lookups{"name__startswith": "San"})
	if err != nil {
		log.Fatalf("Filter failed: %v", err)
	}
	san, err = san.OrderBy("-latitude")
	if err != nil {
		log.Fatalf("OrderBy failed: %v", err)
	}
	fmt.Printf("\nWestern cities starting with San, north to south: %v\n", names(san))

	nyc, err := cities.Get(query.Lookups{"id": "NYC"})
	if err != nil {
		log.Fatalf("Get failed: %v", err)
	}
	lax, err := cities.Get(query.Lookups{"id": "LAX"})
	if err != nil {
		log.Fatalf("Get failed: %v", err)
	}
	a, _ := nyc.Location()
	b, _ := lax.Location()
	fmt.Printf("\nNew York to Los Angeles: %.0f km (%.0f mi), bearing %.1f°\n",
		spatial.Distance(a, b), spatial.DistanceIn(a, b, spatial.Miles), spatial.Bearing(a, b))
	fmt.Printf("Vincenty: %.3f km\n", spatial.Vincenty{}.Distance(a, b))

	_, err = cities.Get(query.Lookups{"name__contains": "San"})
	fmt.Printf("\nAmbiguous Get: %v\n", err)
}

func names(qs *query.QuerySet[*models.Placemark]) []string {
	var out []string
	for pm := range qs.Iter() {
		out = append(out, pm.Name)
	}
	return out
}
