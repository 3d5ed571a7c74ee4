package trias

import "encoding/xml"

// Response side. Tags carry local names only so both prefixed and default
// namespace documents decode.

type Document struct {
	XMLName         xml.Name        `xml:"Trias"`
	Version         string          `xml:"version,attr"`
	ServiceDelivery ServiceDelivery `xml:"ServiceDelivery"`
}

type ServiceDelivery struct {
	ResponseTimestamp string          `xml:"ResponseTimestamp"`
	ProducerRef       string          `xml:"ProducerRef"`
	Status            *bool           `xml:"Status"`
	DeliveryPayload   DeliveryPayload `xml:"DeliveryPayload"`
}

type DeliveryPayload struct {
	LocationInformationResponse *LocationInformationResponse `xml:"LocationInformationResponse"`
	StopEventResponse           *StopEventResponse           `xml:"StopEventResponse"`
}

type ErrorMessage struct {
	Code string `xml:"Code"`
	Text Text   `xml:"Text"`
}

type Text struct {
	Text     string `xml:"Text"`
	Language string `xml:"Language"`
}

type LocationInformationResponse struct {
	ErrorMessage []ErrorMessage    `xml:"ErrorMessage"`
	Location     []LocationResult `xml:"Location"`
}

// LocationResult wraps a Location with match metadata.
type LocationResult struct {
	Location    Location `xml:"Location"`
	Complete    bool     `xml:"Complete"`
	Probability float64  `xml:"Probability"`
}

type Location struct {
	StopPoint    *StopPoint   `xml:"StopPoint"`
	GeoPosition  *GeoPosition `xml:"GeoPosition"`
	LocationName Text         `xml:"LocationName"`
}

type StopPoint struct {
	StopPointRef  string `xml:"StopPointRef"`
	StopPointName Text   `xml:"StopPointName"`
}

type GeoPosition struct {
	Longitude float64 `xml:"Longitude"`
	Latitude  float64 `xml:"Latitude"`
}

type StopEventResponse struct {
	ErrorMessage    []ErrorMessage    `xml:"ErrorMessage"`
	StopEventResult []StopEventResult `xml:"StopEventResult"`
}

type StopEventResult struct {
	ResultID  string    `xml:"ResultId"`
	StopEvent StopEvent `xml:"StopEvent"`
}

type StopEvent struct {
	ThisCall ThisCall `xml:"ThisCall"`
	Service  Service  `xml:"Service"`
}

type ThisCall struct {
	CallAtStop CallAtStop `xml:"CallAtStop"`
}

type CallAtStop struct {
	StopPointRef     string       `xml:"StopPointRef"`
	StopPointName    Text         `xml:"StopPointName"`
	ServiceDeparture *ServiceTime `xml:"ServiceDeparture"`
}

// ServiceTime keeps timestamps as raw xs:dateTime text, parsing is left to
// the consumer so one bad record does not fail the whole document.
type ServiceTime struct {
	TimetabledTime string  `xml:"TimetabledTime"`
	EstimatedTime  *string `xml:"EstimatedTime"`
}

type Service struct {
	OperatingDayRef   string `xml:"OperatingDayRef"`
	JourneyRef        string `xml:"JourneyRef"`
	LineRef           string `xml:"LineRef"`
	Mode              Mode   `xml:"Mode"`
	PublishedLineName Text   `xml:"PublishedLineName"`
	RouteDescription  *Text  `xml:"RouteDescription"`
	DestinationText   Text   `xml:"DestinationText"`
}

type Mode struct {
	PtMode string `xml:"PtMode"`
	Name   Text   `xml:"Name"`
}

// Request side. Prefixed names are written literally, the root declares
// the siri prefix.

type requestDocument struct {
	XMLName        xml.Name       `xml:"Trias"`
	Version        string         `xml:"version,attr"`
	Xmlns          string         `xml:"xmlns,attr"`
	XmlnsSiri      string         `xml:"xmlns:siri,attr"`
	ServiceRequest serviceRequest `xml:"ServiceRequest"`
}

type serviceRequest struct {
	RequestTimestamp string         `xml:"siri:RequestTimestamp"`
	RequestorRef     string         `xml:"siri:RequestorRef"`
	RequestPayload   requestPayload `xml:"RequestPayload"`
}

type requestPayload struct {
	LocationInformationRequest *locationInformationRequest `xml:"LocationInformationRequest,omitempty"`
	StopEventRequest           *stopEventRequest           `xml:"StopEventRequest,omitempty"`
}

type locationInformationRequest struct {
	InitialInput initialInput     `xml:"InitialInput"`
	Restrictions locationRestrict `xml:"Restrictions"`
}

type initialInput struct {
	LocationName   string          `xml:"LocationName,omitempty"`
	GeoRestriction *geoRestriction `xml:"GeoRestriction,omitempty"`
}

type geoRestriction struct {
	Circle circle `xml:"Circle"`
}

type circle struct {
	Center GeoPosition `xml:"Center"`
	Radius int         `xml:"Radius"`
}

type locationRestrict struct {
	Type            string `xml:"Type"`
	NumberOfResults int    `xml:"NumberOfResults"`
}

type stopEventRequest struct {
	Location stopEventLocation `xml:"Location"`
	Params   stopEventParams   `xml:"Params"`
}

type stopEventLocation struct {
	LocationRef locationRef `xml:"LocationRef"`
}

type locationRef struct {
	StopPointRef string `xml:"StopPointRef"`
}

type stopEventParams struct {
	NumberOfResults     int    `xml:"NumberOfResults"`
	StopEventType       string `xml:"StopEventType"`
	IncludeRealtimeData bool   `xml:"IncludeRealtimeData"`
}
