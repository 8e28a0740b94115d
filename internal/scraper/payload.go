package scraper

import "net/url"

// BuildPayload builds the form body of a UR property search for one estate.
// Empty search bounds and the constant fields are required by the API.
func BuildPayload(shisya, danchi string) string {
	params := url.Values{}
	params.Set("rent_low", "")
	params.Set("rent_high", "")
	params.Set("floorspace_low", "")
	params.Set("floorspace_high", "")
	params.Set("shisya", shisya)
	params.Set("danchi", danchi)
	params.Set("shikibetu", "0")
	params.Set("newBukkenRoom", "")
	params.Set("orderByField", "0")
	params.Set("orderBySort", "0")
	params.Set("pageIndex", "0")
	params.Set("sp", "")

	return params.Encode()
}
