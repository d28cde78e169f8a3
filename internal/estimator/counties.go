package estimator

import "strings"

// counties is the fixed list offered by the county selector.
var counties = []string{
	"Carlow", "Cavan", "Clare", "Cork", "Donegal", "Dublin", "Galway", "Kerry",
	"Kildare", "Kilkenny", "Laois", "Leitrim", "Limerick", "Longford", "Louth",
	"Mayo", "Meath", "Monaghan", "Offaly", "Roscommon", "Sligo", "Tipperary",
	"Waterford", "Westmeath", "Wexford", "Wicklow",
}

// Counties returns the 26 county names in alphabetical order.
func Counties() []string {
	out := make([]string, len(counties))
	copy(out, counties)
	return out
}

// CanonicalCounty matches name case-insensitively and returns the canonical
// spelling. ok is false for anything that is not one of the 26 counties.
func CanonicalCounty(name string) (string, bool) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(strings.TrimPrefix(name, "County "), "county ")
	for _, c := range counties {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// CountySlug returns the URL segment used for county pages, e.g. "county-cork".
func CountySlug(county string) string {
	return "county-" + strings.ToLower(county)
}

// InstallerPath links to the local EV grant page for a county.
func InstallerPath(county string) string {
	return "/ireland/" + CountySlug(county) + "/ev-grants/"
}
