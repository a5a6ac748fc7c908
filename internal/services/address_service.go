package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tickettrack_backend/pkg/utils"
)

// ErrAddressNotConfigured signals that the geocoding credentials are absent.
// Handlers translate it into empty results so the UI falls back to manual
// entry instead of surfacing a 503.
var ErrAddressNotConfigured = errors.New("address tools are not configured")

const (
	defaultAutocompleteURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
	defaultDetailsURL      = "https://maps.googleapis.com/maps/api/place/details/json"
	defaultValidationURL   = "https://addressvalidation.googleapis.com/v1:validateAddress"
	defaultDirectionsURL   = "https://maps.googleapis.com/maps/api/directions/json"
)

// AddressSuggestion is one autocomplete candidate, enriched with place
// details when the lookup succeeds.
type AddressSuggestion struct {
	StreetLine string   `json:"street_line"`
	Secondary  string   `json:"secondary"`
	City       *string  `json:"city"`
	State      *string  `json:"state"`
	PostalCode *string  `json:"postal_code"`
	Country    *string  `json:"country"`
	County     *string  `json:"county"`
	Formatted  *string  `json:"formatted"`
	PlaceID    *string  `json:"place_id"`
	ResultType *string  `json:"result_type"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
}

// VerifiedAddress is the standardized form returned by the validation API.
type VerifiedAddress struct {
	DeliveryLine1 string   `json:"delivery_line_1"`
	DeliveryLine2 string   `json:"delivery_line_2"`
	LastLine      string   `json:"last_line"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	PostalCode    *string  `json:"postal_code"`
	Country       *string  `json:"country"`
	County        *string  `json:"county"`
	Footnotes     *string  `json:"footnotes"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	PlaceID       *string  `json:"place_id"`
}

// VerifyAddressRequest carries the user-entered address to standardize.
type VerifyAddressRequest struct {
	StreetLine string
	City       *string
	State      *string
	PostalCode *string
	Secondary  *string
	PlaceID    *string
}

// RoutePlanStop is one client visit to schedule on a route.
type RoutePlanStop struct {
	Name    string `json:"name"`
	Address string `json:"address" binding:"required"`
}

// RoutePlanRequest asks the directions provider for an optimized visit order.
// Destination defaults to the origin for a round trip.
type RoutePlanRequest struct {
	Origin      string          `json:"origin" binding:"required"`
	Destination string          `json:"destination"`
	Stops       []RoutePlanStop `json:"stops" binding:"required,min=1,dive"`
}

// RouteLeg is one driving segment of the planned route.
type RouteLeg struct {
	StartAddress    string   `json:"start_address"`
	EndAddress      string   `json:"end_address"`
	DistanceText    *string  `json:"distance_text"`
	DistanceMeters  *int     `json:"distance_meters"`
	DurationText    *string  `json:"duration_text"`
	DurationSeconds *int     `json:"duration_seconds"`
	StartLat        *float64 `json:"start_lat"`
	StartLon        *float64 `json:"start_lon"`
	EndLat          *float64 `json:"end_lat"`
	EndLon          *float64 `json:"end_lon"`
}

// RoutePlan is the optimized stop order plus per-leg driving metrics.
type RoutePlan struct {
	Origin               string          `json:"origin"`
	Destination          string          `json:"destination"`
	Stops                []RoutePlanStop `json:"stops"`
	Legs                 []RouteLeg      `json:"legs"`
	TotalDistanceMeters  int             `json:"total_distance_meters"`
	TotalDurationSeconds int             `json:"total_duration_seconds"`
}

// --- AddressService Interface ---

type AddressService interface {
	SuggestAddresses(query string, maxResults int) ([]AddressSuggestion, error)
	VerifyAddress(req VerifyAddressRequest) (*VerifiedAddress, error)
	PlanRoute(req RoutePlanRequest) (*RoutePlan, error)
}

// AddressServiceConfig holds the provider credentials and endpoints. The URL
// fields default to the Google endpoints and exist so tests can point the
// service at a local server.
type AddressServiceConfig struct {
	APIKey          string
	RegionCode      string
	AutocompleteURL string
	DetailsURL      string
	ValidationURL   string
	DirectionsURL   string
}

type addressService struct {
	cfg    AddressServiceConfig
	client *http.Client
}

// NewAddressService creates a new instance of AddressService.
func NewAddressService(cfg AddressServiceConfig) AddressService {
	if cfg.AutocompleteURL == "" {
		cfg.AutocompleteURL = defaultAutocompleteURL
	}
	if cfg.DetailsURL == "" {
		cfg.DetailsURL = defaultDetailsURL
	}
	if cfg.ValidationURL == "" {
		cfg.ValidationURL = defaultValidationURL
	}
	if cfg.DirectionsURL == "" {
		cfg.DirectionsURL = defaultDirectionsURL
	}
	return &addressService{
		cfg:    cfg,
		client: &http.Client{Timeout: 6 * time.Second},
	}
}

func (s *addressService) ensureConfigured() error {
	if utils.IsEmpty(s.cfg.APIKey) {
		return ErrAddressNotConfigured
	}
	return nil
}

// --- provider wire types ---

type placeComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type placeDetails struct {
	AddressComponents []placeComponent `json:"address_components"`
	FormattedAddress  string           `json:"formatted_address"`
	Types             []string         `json:"types"`
	Geometry          struct {
		Location struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type prediction struct {
	Description          string   `json:"description"`
	PlaceID              string   `json:"place_id"`
	Types                []string `json:"types"`
	StructuredFormatting struct {
		MainText      string `json:"main_text"`
		SecondaryText string `json:"secondary_text"`
	} `json:"structured_formatting"`
}

type parsedPlace struct {
	StreetLine string
	Secondary  string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	County     *string
	Lat        *float64
	Lon        *float64
	Formatted  *string
	PlaceTypes []string
}

func componentMap(components []placeComponent) map[string]placeComponent {
	mapping := make(map[string]placeComponent)
	for _, component := range components {
		for _, typeName := range component.Types {
			if _, ok := mapping[typeName]; !ok {
				mapping[typeName] = component
			}
		}
	}
	return mapping
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func parsePlaceDetails(details *placeDetails) parsedPlace {
	var parsed parsedPlace
	if details == nil {
		return parsed
	}

	mapping := componentMap(details.AddressComponents)

	streetParts := []string{}
	if v := mapping["street_number"].LongName; v != "" {
		streetParts = append(streetParts, v)
	}
	if v := mapping["route"].LongName; v != "" {
		streetParts = append(streetParts, v)
	}
	parsed.StreetLine = strings.Join(streetParts, " ")

	secondaryParts := []string{}
	for _, key := range []string{"subpremise", "premise", "floor", "unit", "room"} {
		if v := mapping[key].LongName; v != "" {
			secondaryParts = append(secondaryParts, v)
		}
	}
	parsed.Secondary = strings.Join(secondaryParts, " ")

	city := mapping["locality"].LongName
	if city == "" {
		city = mapping["postal_town"].LongName
	}
	if city == "" {
		city = mapping["sublocality"].LongName
	}
	parsed.City = optString(city)

	state := mapping["administrative_area_level_1"].ShortName
	if state == "" {
		state = mapping["administrative_area_level_1"].LongName
	}
	parsed.State = optString(state)

	parsed.PostalCode = optString(mapping["postal_code"].LongName)

	country := mapping["country"].ShortName
	if country == "" {
		country = mapping["country"].LongName
	}
	parsed.Country = optString(country)

	parsed.County = optString(mapping["administrative_area_level_2"].LongName)

	parsed.Lat = details.Geometry.Location.Lat
	parsed.Lon = details.Geometry.Location.Lng
	parsed.Formatted = optString(details.FormattedAddress)
	parsed.PlaceTypes = details.Types
	return parsed
}

func (s *addressService) getJSON(endpoint string, params url.Values, out interface{}) error {
	resp, err := s.client.Get(endpoint + "?" + params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("geocoding provider returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *addressService) fetchPlaceDetails(placeID string) (*placeDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", s.cfg.APIKey)
	params.Set("fields", "address_component,geometry,formatted_address,types")

	var payload struct {
		Status string        `json:"status"`
		Result *placeDetails `json:"result"`
	}
	if err := s.getJSON(s.cfg.DetailsURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "" && payload.Status != "OK" {
		utils.LogDebug("place details lookup returned non-OK status", map[string]interface{}{
			"place_id": placeID,
			"status":   payload.Status,
		})
		return nil, nil
	}
	return payload.Result, nil
}

// --- Method Implementations ---

func (s *addressService) SuggestAddresses(query string, maxResults int) ([]AddressSuggestion, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []AddressSuggestion{}, nil
	}
	if maxResults < 1 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("key", s.cfg.APIKey)
	params.Set("types", "address")
	// The autocomplete endpoint only accepts country filters; narrower
	// filters trigger INVALID_REQUEST responses.
	if region := strings.TrimSpace(s.cfg.RegionCode); region != "" {
		params.Set("components", "country:"+region)
	}

	var payload struct {
		Status       string       `json:"status"`
		ErrorMessage string       `json:"error_message"`
		Predictions  []prediction `json:"predictions"`
	}
	if err := s.getJSON(s.cfg.AutocompleteURL, params, &payload); err != nil {
		return nil, fmt.Errorf("address autocomplete failed: %w", err)
	}
	if payload.Status != "" && payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		utils.LogInfo("address autocomplete returned non-OK status", map[string]interface{}{
			"status":        payload.Status,
			"error_message": payload.ErrorMessage,
		})
		return []AddressSuggestion{}, nil
	}

	predictions := payload.Predictions
	if len(predictions) > maxResults {
		predictions = predictions[:maxResults]
	}

	suggestions := make([]AddressSuggestion, 0, len(predictions))
	for _, p := range predictions {
		var details *placeDetails
		if p.PlaceID != "" {
			d, err := s.fetchPlaceDetails(p.PlaceID)
			if err != nil {
				utils.LogError(err, "failed to fetch place details")
			} else {
				details = d
			}
		}
		suggestions = append(suggestions, mapSuggestion(p, details))
	}
	return suggestions, nil
}

func mapSuggestion(p prediction, details *placeDetails) AddressSuggestion {
	parsed := parsePlaceDetails(details)

	streetLine := parsed.StreetLine
	if streetLine == "" {
		streetLine = p.StructuredFormatting.MainText
	}
	if streetLine == "" {
		streetLine = p.Description
	}
	secondary := parsed.Secondary
	if secondary == "" {
		secondary = p.StructuredFormatting.SecondaryText
	}
	formatted := parsed.Formatted
	if formatted == nil {
		formatted = optString(p.Description)
	}

	var resultType *string
	if len(p.Types) > 0 {
		resultType = &p.Types[0]
	} else if len(parsed.PlaceTypes) > 0 {
		resultType = &parsed.PlaceTypes[0]
	}

	return AddressSuggestion{
		StreetLine: streetLine,
		Secondary:  secondary,
		City:       parsed.City,
		State:      parsed.State,
		PostalCode: parsed.PostalCode,
		Country:    parsed.Country,
		County:     parsed.County,
		Formatted:  formatted,
		PlaceID:    optString(p.PlaceID),
		ResultType: resultType,
		Lat:        parsed.Lat,
		Lon:        parsed.Lon,
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	return optString(strings.TrimSpace(*v))
}

func (s *addressService) buildValidationPayload(req VerifyAddressRequest, details *placeDetails) map[string]interface{} {
	parsed := parsePlaceDetails(details)

	var addressLines []string
	line1 := parsed.StreetLine
	if line1 == "" {
		line1 = strings.TrimSpace(req.StreetLine)
	}
	if line1 != "" {
		addressLines = append(addressLines, line1)
	}
	if parsed.Secondary != "" {
		addressLines = append(addressLines, parsed.Secondary)
	} else if secondary := trimmedOrNil(req.Secondary); secondary != nil {
		addressLines = append(addressLines, *secondary)
	}

	address := map[string]interface{}{}
	if len(addressLines) > 0 {
		address["addressLines"] = addressLines
	}
	if locality := firstNonNil(parsed.City, trimmedOrNil(req.City)); locality != nil {
		address["locality"] = *locality
	}
	if adminArea := firstNonNil(parsed.State, trimmedOrNil(req.State)); adminArea != nil {
		address["administrativeArea"] = *adminArea
	}
	if postal := firstNonNil(parsed.PostalCode, trimmedOrNil(req.PostalCode)); postal != nil {
		address["postalCode"] = *postal
	}
	region := parsed.Country
	if region == nil {
		region = optString(strings.TrimSpace(s.cfg.RegionCode))
	}
	if region != nil {
		address["regionCode"] = *region
	}
	return address
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func buildLastLine(city, state, postalCode *string) string {
	var parts []string
	switch {
	case city != nil && state != nil:
		parts = append(parts, *city+", "+*state)
	case city != nil:
		parts = append(parts, *city)
	case state != nil:
		parts = append(parts, *state)
	}
	if postalCode != nil {
		parts = append(parts, *postalCode)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

type validationVerdict struct {
	HasUnconfirmedComponents bool  `json:"hasUnconfirmedComponents"`
	HasInferredComponents    bool  `json:"hasInferredComponents"`
	HasReplacedComponents    bool  `json:"hasReplacedComponents"`
	AddressComplete          *bool `json:"addressComplete"`
}

func summarizeVerdict(verdict validationVerdict) *string {
	var flags []string
	if verdict.HasUnconfirmedComponents {
		flags = append(flags, "unconfirmed_components")
	}
	if verdict.HasInferredComponents {
		flags = append(flags, "inferred_components")
	}
	if verdict.HasReplacedComponents {
		flags = append(flags, "replaced_components")
	}
	if verdict.AddressComplete != nil && !*verdict.AddressComplete {
		flags = append(flags, "address_incomplete")
	}
	if len(flags) == 0 {
		return nil
	}
	return optString(strings.Join(flags, ", "))
}

type validationResult struct {
	Verdict validationVerdict `json:"verdict"`
	Address struct {
		FormattedAddress string `json:"formattedAddress"`
		PostalAddress    struct {
			RegionCode         string   `json:"regionCode"`
			AdministrativeArea string   `json:"administrativeArea"`
			Locality           string   `json:"locality"`
			PostalCode         string   `json:"postalCode"`
			AddressLines       []string `json:"addressLines"`
		} `json:"postalAddress"`
		AddressComponents []struct {
			ComponentType string `json:"componentType"`
			ComponentName struct {
				Text string `json:"text"`
			} `json:"componentName"`
		} `json:"addressComponents"`
	} `json:"address"`
	Geocode struct {
		PlaceID  string `json:"placeId"`
		Location struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"location"`
	} `json:"geocode"`
}

func (s *addressService) VerifyAddress(req VerifyAddressRequest) (*VerifiedAddress, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.StreetLine) == "" {
		return nil, nil
	}

	var details *placeDetails
	if req.PlaceID != nil && *req.PlaceID != "" {
		d, err := s.fetchPlaceDetails(*req.PlaceID)
		if err != nil {
			utils.LogError(err, "failed to fetch place details for verification")
		} else {
			details = d
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"address": s.buildValidationPayload(req, details),
	})
	if err != nil {
		return nil, err
	}

	endpoint := s.cfg.ValidationURL + "?key=" + url.QueryEscape(s.cfg.APIKey)
	resp, err := s.client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("address verification failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("address verification failed: provider returned %d", resp.StatusCode)
	}

	var payload struct {
		Result *validationResult `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Result == nil {
		return nil, nil
	}
	return mapVerifiedAddress(payload.Result), nil
}

func mapVerifiedAddress(result *validationResult) *VerifiedAddress {
	postal := result.Address.PostalAddress

	deliveryLine1 := ""
	deliveryLine2 := ""
	if len(postal.AddressLines) > 0 {
		deliveryLine1 = postal.AddressLines[0]
	}
	if len(postal.AddressLines) > 1 {
		deliveryLine2 = strings.Join(postal.AddressLines[1:], " ")
	}
	if deliveryLine1 == "" {
		deliveryLine1 = result.Address.FormattedAddress
	}

	city := optString(postal.Locality)
	state := optString(postal.AdministrativeArea)
	postalCode := optString(postal.PostalCode)

	var county *string
	for _, component := range result.Address.AddressComponents {
		if component.ComponentType == "administrative_area_level_2" && component.ComponentName.Text != "" {
			county = optString(component.ComponentName.Text)
			break
		}
	}

	return &VerifiedAddress{
		DeliveryLine1: deliveryLine1,
		DeliveryLine2: deliveryLine2,
		LastLine:      buildLastLine(city, state, postalCode),
		City:          city,
		State:         state,
		PostalCode:    postalCode,
		Country:       optString(postal.RegionCode),
		County:        county,
		Footnotes:     summarizeVerdict(result.Verdict),
		Latitude:      result.Geocode.Location.Latitude,
		Longitude:     result.Geocode.Location.Longitude,
		PlaceID:       optString(result.Geocode.PlaceID),
	}
}

type directionsLeg struct {
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	Distance     struct {
		Text  string `json:"text"`
		Value *int   `json:"value"`
	} `json:"distance"`
	Duration struct {
		Text  string `json:"text"`
		Value *int   `json:"value"`
	} `json:"duration"`
	StartLocation struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"start_location"`
	EndLocation struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"end_location"`
}

// PlanRoute asks the directions provider for an optimized waypoint order over
// the requested stops and maps the driving legs into the plan.
func (s *addressService) PlanRoute(req RoutePlanRequest) (*RoutePlan, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		return nil, fmt.Errorf("%w: origin is required", ErrValidation)
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		destination = origin
	}

	stops := make([]RoutePlanStop, 0, len(req.Stops))
	waypoints := make([]string, 0, len(req.Stops))
	for _, stop := range req.Stops {
		address := strings.TrimSpace(stop.Address)
		if address == "" {
			continue
		}
		stops = append(stops, RoutePlanStop{Name: strings.TrimSpace(stop.Name), Address: address})
		waypoints = append(waypoints, address)
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: at least one stop is required", ErrValidation)
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("waypoints", "optimize:true|"+strings.Join(waypoints, "|"))
	params.Set("key", s.cfg.APIKey)
	if region := strings.TrimSpace(s.cfg.RegionCode); region != "" {
		params.Set("region", strings.ToLower(region))
	}

	var payload struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Routes       []struct {
			WaypointOrder []int           `json:"waypoint_order"`
			Legs          []directionsLeg `json:"legs"`
		} `json:"routes"`
	}
	if err := s.getJSON(s.cfg.DirectionsURL, params, &payload); err != nil {
		return nil, fmt.Errorf("route planning failed: %w", err)
	}
	if payload.Status != "OK" || len(payload.Routes) == 0 {
		utils.LogInfo("directions lookup returned no route", map[string]interface{}{
			"status":        payload.Status,
			"error_message": payload.ErrorMessage,
		})
		return nil, nil
	}

	route := payload.Routes[0]
	ordered := make([]RoutePlanStop, 0, len(stops))
	for _, index := range route.WaypointOrder {
		if index >= 0 && index < len(stops) {
			ordered = append(ordered, stops[index])
		}
	}
	if len(ordered) != len(stops) {
		ordered = stops
	}

	plan := &RoutePlan{
		Origin:      origin,
		Destination: destination,
		Stops:       ordered,
		Legs:        make([]RouteLeg, 0, len(route.Legs)),
	}
	for _, leg := range route.Legs {
		plan.Legs = append(plan.Legs, RouteLeg{
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
			DistanceText:    optString(leg.Distance.Text),
			DistanceMeters:  leg.Distance.Value,
			DurationText:    optString(leg.Duration.Text),
			DurationSeconds: leg.Duration.Value,
			StartLat:        leg.StartLocation.Lat,
			StartLon:        leg.StartLocation.Lng,
			EndLat:          leg.EndLocation.Lat,
			EndLon:          leg.EndLocation.Lng,
		})
		if leg.Distance.Value != nil {
			plan.TotalDistanceMeters += *leg.Distance.Value
		}
		if leg.Duration.Value != nil {
			plan.TotalDurationSeconds += *leg.Duration.Value
		}
	}
	return plan, nil
}
