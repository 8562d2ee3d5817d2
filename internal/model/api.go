package model

// BrowseRequest selects a level of the geographic hierarchy.
// Empty fields mean the level is not selected; levels must be given top-down.
type BrowseRequest struct {
	Continent  string
	Country    string
	State      string
	GeonamesID int
}

// PlaceLink is a browsable place with its browse path
type PlaceLink struct {
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	GeonamesID int    `json:"geonames_id"`
	Path       string `json:"path"`
	// FIPS is set on U.S. states for map highlighting
	FIPS int `json:"fips,omitempty"`
}

// BrowsePage is the response for one level of the geographic hierarchy
type BrowsePage struct {
	// Current is nil at the top level
	Current   *PlaceLink  `json:"current,omitempty"`
	Hierarchy []PlaceLink `json:"hierarchy"`
	Places    []PlaceLink `json:"places"`
	// AlternateNames lists other country-level entities sharing the current
	// country code (e.g. Czechoslovakia for CZ)
	AlternateNames []PlaceLink `json:"alternate_names,omitempty"`
	// Identifiers are the coverage term ids a document search filters on;
	// empty with Global set at the top level
	Identifiers []string `json:"identifiers,omitempty"`
	Global      bool     `json:"global,omitempty"`
}

// GeocodeResponse is returned by the geocode endpoint
type GeocodeResponse struct {
	Record     Codebook `json:"record"`
	Resolved   int      `json:"resolved"`
	Unresolved []string `json:"unresolved,omitempty"`
	// Errors are provider or storage failures; the affected terms stay unresolved
	Errors []string `json:"errors,omitempty"`
}

// Descend appends link to the breadcrumb and makes it the current place
func (p *BrowsePage) Descend(link PlaceLink) {
	current := link
	p.Current = &current
	p.Hierarchy = append(p.Hierarchy, link)
}
