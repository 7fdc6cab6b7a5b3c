package geocode

// Coordinate is a resolved point. It is only ever produced whole by a
// successful provider match.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// kakaoResponse mirrors the relevant parts of the Kakao Local search payload.
// x is the longitude and y the latitude, both as decimal strings.
type kakaoResponse struct {
	Documents []struct {
		AddressName string `json:"address_name"`
		X           string `json:"x"`
		Y           string `json:"y"`
	} `json:"documents"`
}

// nominatimResult mirrors one entry of the OSM search payload.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}
