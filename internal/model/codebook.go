package model

// GlobalCoverage marks a record with no specific place
const GlobalCoverage = "Global"

// GeographicCoverage is a single geogCover term of a codebook
type GeographicCoverage struct {
	Value string  `json:"value"`
	ID    *string `json:"id,omitempty"`
}

// SetID stores the resolved identifier on the term
func (g *GeographicCoverage) SetID(id string) {
	g.ID = &id
}

// ClearID removes any previously resolved identifier
func (g *GeographicCoverage) ClearID() {
	g.ID = nil
}

// Identifier returns the resolved identifier, or "" when unresolved
func (g *GeographicCoverage) Identifier() string {
	return deref(g.ID)
}

// Codebook is the part of a parsed DDI codebook record the geocoder works on.
// GeoCoverage order is preserved for display.
type Codebook struct {
	ID          string               `json:"id,omitempty"`
	Title       string               `json:"title,omitempty"`
	GeoCoverage []GeographicCoverage `json:"geo_coverage"`
	// GeoUnit (geogUnit) is informational only
	GeoUnit []string `json:"geo_unit,omitempty"`
}

// Identifiers returns the resolved identifiers in term order, "" for unresolved terms
func (c *Codebook) Identifiers() []string {
	ids := make([]string, len(c.GeoCoverage))
	for i := range c.GeoCoverage {
		ids[i] = c.GeoCoverage[i].Identifier()
	}
	return ids
}
