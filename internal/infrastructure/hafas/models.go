package hafas

import (
	"bytes"
	"encoding/json"
)

// CoordLocation is an address or POI match of a location search.
type CoordLocation struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// StopLocation is a stop returned by location searches and nearby queries.
type StopLocation struct {
	ID    string  `json:"id"`
	ExtID string  `json:"extId"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Dist  int     `json:"dist"`
}

// LocationList is the response of location.name and location.nearbystops.
// Both the flat (CoordLocation/StopLocation arrays) and the mixed
// stopLocationOrCoordLocation layout are accepted, order is preserved.
type LocationList struct {
	CoordLocation []CoordLocation
	StopLocation  []StopLocation
}

func (l *LocationList) UnmarshalJSON(data []byte) error {
	var raw struct {
		CoordLocation []CoordLocation `json:"CoordLocation"`
		StopLocation  []StopLocation  `json:"StopLocation"`
		Mixed         []struct {
			CoordLocation *CoordLocation `json:"CoordLocation"`
			StopLocation  *StopLocation  `json:"StopLocation"`
		} `json:"stopLocationOrCoordLocation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.CoordLocation = raw.CoordLocation
	l.StopLocation = raw.StopLocation
	for _, m := range raw.Mixed {
		if m.CoordLocation != nil {
			l.CoordLocation = append(l.CoordLocation, *m.CoordLocation)
		}
		if m.StopLocation != nil {
			l.StopLocation = append(l.StopLocation, *m.StopLocation)
		}
	}
	return nil
}

// Product is one service (bus, tram, ...) operating a departure.
type Product struct {
	Name    string `json:"name"`
	Line    string `json:"line"`
	CatOut  string `json:"catOut"`
	CatOutS string `json:"catOutS"`
	CatOutL string `json:"catOutL"`
}

// Products accepts either a single Product object or a list of them.
type Products []Product

func (p *Products) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if data[0] == '{' {
		var single Product
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*p = Products{single}
		return nil
	}
	var list []Product
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*p = list
	return nil
}

// Departure is one entry of a departure board. Date is YYYY-MM-DD and Time
// is HH:MM:SS in the provider's local time. RTDate and RTTime are set only
// when real-time data is available.
type Departure struct {
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Stop      string   `json:"stop"`
	StopID    string   `json:"stopid"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	RTDate    *string  `json:"rtDate"`
	RTTime    *string  `json:"rtTime"`
	Product   Products `json:"Product"`
}

// DepartureBoard is the response of the departureBoard service.
type DepartureBoard struct {
	Departure []Departure `json:"Departure"`
}

// errorResponse is returned by HAFAS instead of the regular payload.
type errorResponse struct {
	ErrorCode string `json:"errorCode"`
	ErrorText string `json:"errorText"`
}
