package dto

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/pkg/errors"
)

// DeparturesRequest - запрос отправлений для адреса, текста или координат
type DeparturesRequest struct {
	Address     *int64   `json:"address,omitempty" validate:"omitempty,min=1"`
	Street      string   `json:"street,omitempty" validate:"max=256"`
	HouseNumber string   `json:"houseNumber,omitempty" validate:"max=32"`
	ZipCode     string   `json:"zipCode,omitempty" validate:"max=16"`
	City        string   `json:"city,omitempty" validate:"max=256"`
	District    *string  `json:"district,omitempty"`
	Text        string   `json:"text,omitempty" validate:"max=512"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lon         *float64 `json:"lon,omitempty" validate:"omitempty,min=-180,max=180"`
	Stops       *int     `json:"stops,omitempty" validate:"omitempty,min=1,max=50"`
	Departures  *int     `json:"departures,omitempty" validate:"omitempty,min=1,max=100"`
}

// HasAddressID reports whether the request references a stored address.
func (r DeparturesRequest) HasAddressID() bool {
	return r.Address != nil
}

// Target classifies the request. Coordinates win over a postal address,
// a postal address wins over free text.
func (r DeparturesRequest) Target() (interface{}, error) {
	switch {
	case r.Lat != nil && r.Lon != nil:
		return domain.GeoCoordinates{Latitude: *r.Lat, Longitude: *r.Lon}, nil
	case r.Lat != nil || r.Lon != nil:
		return nil, errors.ErrInvalidRequest.WithDetail("geo", "lat and lon must be given together")
	case r.Street != "" || r.ZipCode != "" || r.City != "":
		return domain.Address{
			Street:      strings.TrimSpace(r.Street),
			HouseNumber: strings.TrimSpace(r.HouseNumber),
			ZipCode:     strings.TrimSpace(r.ZipCode),
			City:        strings.TrimSpace(r.City),
			District:    r.District,
		}, nil
	case strings.TrimSpace(r.Text) != "":
		return strings.TrimSpace(r.Text), nil
	default:
		return nil, errors.ErrInvalidRequest.WithDetail("target", "address, text or coordinates required")
	}
}

// DeparturesResponse - ответ со списком остановок и отправлений
type DeparturesResponse struct {
	XMLName xml.Name  `json:"-" xml:"stops"`
	Source  string    `json:"source" xml:"source,attr"`
	Stops   []StopDTO `json:"stops" xml:"stop"`
}

// StopDTO - остановка. В JSON координаты передаются парой [lat, lon]
type StopDTO struct {
	ID         string         `json:"id" xml:"id"`
	Name       string         `json:"name" xml:"name"`
	Geo        [2]float64     `json:"geo" xml:"-"`
	Latitude   float64        `json:"-" xml:"latitude"`
	Longitude  float64        `json:"-" xml:"longitude"`
	Departures []StopEventDTO `json:"departures" xml:"departure"`
}

// StopEventDTO - отправление. Время в формате ISO-8601, estimated = null без данных реального времени
type StopEventDTO struct {
	Type        string  `json:"type" xml:"type"`
	Line        string  `json:"line" xml:"line"`
	Destination string  `json:"destination" xml:"destination"`
	Scheduled   string  `json:"scheduled" xml:"scheduled"`
	Estimated   *string `json:"estimated" xml:"estimated,omitempty"`
}

func NewDeparturesResponse(result *domain.DeparturesResult) DeparturesResponse {
	resp := DeparturesResponse{
		Source: result.Source(),
		Stops:  make([]StopDTO, 0, len(result.Stops)),
	}

	for _, stop := range result.Stops {
		s := StopDTO{
			ID:         stop.ID,
			Name:       stop.Name,
			Geo:        [2]float64{stop.Location.Latitude, stop.Location.Longitude},
			Latitude:   stop.Location.Latitude,
			Longitude:  stop.Location.Longitude,
			Departures: make([]StopEventDTO, 0, len(stop.Departures)),
		}
		for _, event := range stop.Departures {
			e := StopEventDTO{
				Type:        event.Type,
				Line:        event.Line,
				Destination: event.Destination,
				Scheduled:   event.Scheduled.Format(time.RFC3339),
			}
			if event.Estimated != nil {
				estimated := event.Estimated.Format(time.RFC3339)
				e.Estimated = &estimated
			}
			s.Departures = append(s.Departures, e)
		}
		resp.Stops = append(resp.Stops, s)
	}
	return resp
}

// ProviderDTO - загруженный провайдер
type ProviderDTO struct {
	Name   string `json:"name" xml:"name,attr"`
	Source string `json:"source" xml:"source,attr"`
}

// ProvidersResponse - список провайдеров в порядке объявления
type ProvidersResponse struct {
	XMLName   xml.Name      `json:"-" xml:"providers"`
	Fallback  string        `json:"fallback" xml:"fallback,attr"`
	Providers []ProviderDTO `json:"providers" xml:"provider"`
}
