package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestAddressesRequiresAPIKey(t *testing.T) {
	service := NewAddressService(AddressServiceConfig{})

	_, err := service.SuggestAddresses("123 Main", 5)
	assert.ErrorIs(t, err, ErrAddressNotConfigured)

	_, err = service.VerifyAddress(VerifyAddressRequest{StreetLine: "123 Main St"})
	assert.ErrorIs(t, err, ErrAddressNotConfigured)

	_, err = service.PlanRoute(RoutePlanRequest{
		Origin: "HQ",
		Stops:  []RoutePlanStop{{Name: "Acme", Address: "123 Main St"}},
	})
	assert.ErrorIs(t, err, ErrAddressNotConfigured)
}

func TestSuggestAddressesEnrichesWithDetails(t *testing.T) {
	details := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"formatted_address": "123 Main St, Springfield, IL 62701, USA",
				"types":             []string{"street_address"},
				"address_components": []map[string]interface{}{
					{"long_name": "123", "short_name": "123", "types": []string{"street_number"}},
					{"long_name": "Main Street", "short_name": "Main St", "types": []string{"route"}},
					{"long_name": "Springfield", "short_name": "Springfield", "types": []string{"locality"}},
					{"long_name": "Illinois", "short_name": "IL", "types": []string{"administrative_area_level_1"}},
					{"long_name": "Sangamon County", "short_name": "Sangamon", "types": []string{"administrative_area_level_2"}},
					{"long_name": "62701", "short_name": "62701", "types": []string{"postal_code"}},
					{"long_name": "United States", "short_name": "US", "types": []string{"country"}},
				},
				"geometry": map[string]interface{}{
					"location": map[string]float64{"lat": 39.8, "lng": -89.65},
				},
			},
		})
	}))
	defer details.Close()

	autocomplete := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123 Main", r.URL.Query().Get("input"))
		assert.Equal(t, "country:US", r.URL.Query().Get("components"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"predictions": []map[string]interface{}{
				{
					"description": "123 Main St, Springfield, IL, USA",
					"place_id":    "place-1",
					"types":       []string{"street_address"},
					"structured_formatting": map[string]string{
						"main_text":      "123 Main St",
						"secondary_text": "Springfield, IL, USA",
					},
				},
			},
		})
	}))
	defer autocomplete.Close()

	service := NewAddressService(AddressServiceConfig{
		APIKey:          "test-key",
		RegionCode:      "US",
		AutocompleteURL: autocomplete.URL,
		DetailsURL:      details.URL,
	})

	suggestions, err := service.SuggestAddresses("123 Main", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	first := suggestions[0]
	assert.Equal(t, "123 Main Street", first.StreetLine)
	require.NotNil(t, first.City)
	assert.Equal(t, "Springfield", *first.City)
	require.NotNil(t, first.State)
	assert.Equal(t, "IL", *first.State)
	require.NotNil(t, first.PostalCode)
	assert.Equal(t, "62701", *first.PostalCode)
	require.NotNil(t, first.County)
	assert.Equal(t, "Sangamon County", *first.County)
	require.NotNil(t, first.Country)
	assert.Equal(t, "US", *first.Country)
	require.NotNil(t, first.Lat)
	assert.InDelta(t, 39.8, *first.Lat, 0.001)
	require.NotNil(t, first.PlaceID)
	assert.Equal(t, "place-1", *first.PlaceID)
}

func TestSuggestAddressesNonOKStatusReturnsEmpty(t *testing.T) {
	autocomplete := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "REQUEST_DENIED",
			"error_message": "API key invalid",
		})
	}))
	defer autocomplete.Close()

	service := NewAddressService(AddressServiceConfig{
		APIKey:          "test-key",
		AutocompleteURL: autocomplete.URL,
	})

	suggestions, err := service.SuggestAddresses("123 Main", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestAddressesDetailsFailureFallsBackToPrediction(t *testing.T) {
	details := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer details.Close()

	autocomplete := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"predictions": []map[string]interface{}{
				{
					"description": "456 Oak Ave, Portland, OR, USA",
					"place_id":    "place-2",
					"structured_formatting": map[string]string{
						"main_text":      "456 Oak Ave",
						"secondary_text": "Portland, OR, USA",
					},
				},
			},
		})
	}))
	defer autocomplete.Close()

	service := NewAddressService(AddressServiceConfig{
		APIKey:          "test-key",
		AutocompleteURL: autocomplete.URL,
		DetailsURL:      details.URL,
	})

	suggestions, err := service.SuggestAddresses("456 Oak", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "456 Oak Ave", suggestions[0].StreetLine)
	assert.Equal(t, "Portland, OR, USA", suggestions[0].Secondary)
	assert.Nil(t, suggestions[0].City)
}

func TestSuggestAddressesBlankQuery(t *testing.T) {
	service := NewAddressService(AddressServiceConfig{APIKey: "test-key"})
	suggestions, err := service.SuggestAddresses("   ", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestVerifyAddressStandardizes(t *testing.T) {
	complete := true
	validation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body struct {
			Address map[string]interface{} `json:"address"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Springfield", body.Address["locality"])
		assert.Equal(t, "US", body.Address["regionCode"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"verdict": map[string]interface{}{
					"hasInferredComponents": true,
					"addressComplete":       complete,
				},
				"address": map[string]interface{}{
					"formattedAddress": "123 Main St, Springfield, IL 62701-1234, USA",
					"postalAddress": map[string]interface{}{
						"regionCode":         "US",
						"administrativeArea": "IL",
						"locality":           "Springfield",
						"postalCode":         "62701-1234",
						"addressLines":       []string{"123 Main St", "Ste 4"},
					},
					"addressComponents": []map[string]interface{}{
						{
							"componentType": "administrative_area_level_2",
							"componentName": map[string]string{"text": "Sangamon County"},
						},
					},
				},
				"geocode": map[string]interface{}{
					"placeId":  "place-1",
					"location": map[string]float64{"latitude": 39.8, "longitude": -89.65},
				},
			},
		})
	}))
	defer validation.Close()

	service := NewAddressService(AddressServiceConfig{
		APIKey:        "test-key",
		RegionCode:    "US",
		ValidationURL: validation.URL,
	})

	candidate, err := service.VerifyAddress(VerifyAddressRequest{
		StreetLine: "123 main st",
		City:       strp("Springfield"),
		State:      strp("IL"),
	})
	require.NoError(t, err)
	require.NotNil(t, candidate)

	assert.Equal(t, "123 Main St", candidate.DeliveryLine1)
	assert.Equal(t, "Ste 4", candidate.DeliveryLine2)
	assert.Equal(t, "Springfield, IL 62701-1234", candidate.LastLine)
	require.NotNil(t, candidate.County)
	assert.Equal(t, "Sangamon County", *candidate.County)
	require.NotNil(t, candidate.Footnotes)
	assert.Equal(t, "inferred_components", *candidate.Footnotes)
	require.NotNil(t, candidate.Latitude)
	assert.InDelta(t, 39.8, *candidate.Latitude, 0.001)
	require.NotNil(t, candidate.PlaceID)
	assert.Equal(t, "place-1", *candidate.PlaceID)
}

func TestVerifyAddressNoResult(t *testing.T) {
	validation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer validation.Close()

	service := NewAddressService(AddressServiceConfig{APIKey: "test-key", ValidationURL: validation.URL})
	candidate, err := service.VerifyAddress(VerifyAddressRequest{StreetLine: "nowhere"})
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestVerifyAddressBlankStreet(t *testing.T) {
	service := NewAddressService(AddressServiceConfig{APIKey: "test-key"})
	candidate, err := service.VerifyAddress(VerifyAddressRequest{StreetLine: "   "})
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func directionsLegJSON(start, end string, meters, seconds int) map[string]interface{} {
	return map[string]interface{}{
		"start_address": start,
		"end_address":   end,
		"distance":      map[string]interface{}{"text": "1 km", "value": meters},
		"duration":      map[string]interface{}{"text": "5 mins", "value": seconds},
	}
}

func TestPlanRouteOrdersStopsByWaypointOrder(t *testing.T) {
	directions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Office, Springfield IL", q.Get("origin"))
		assert.Equal(t, "Office, Springfield IL", q.Get("destination"))
		assert.Equal(t, "optimize:true|123 Main St|456 Oak Ave|789 Elm Rd", q.Get("waypoints"))
		assert.Equal(t, "us", q.Get("region"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"routes": []map[string]interface{}{
				{
					"waypoint_order": []int{2, 0, 1},
					"legs": []map[string]interface{}{
						directionsLegJSON("Office, Springfield IL", "789 Elm Rd", 3000, 420),
						directionsLegJSON("789 Elm Rd", "123 Main St", 1500, 180),
						directionsLegJSON("123 Main St", "456 Oak Ave", 2200, 300),
						directionsLegJSON("456 Oak Ave", "Office, Springfield IL", 4100, 600),
					},
				},
			},
		})
	}))
	defer directions.Close()

	service := NewAddressService(AddressServiceConfig{
		APIKey:        "test-key",
		RegionCode:    "US",
		DirectionsURL: directions.URL,
	})

	plan, err := service.PlanRoute(RoutePlanRequest{
		Origin: "Office, Springfield IL",
		Stops: []RoutePlanStop{
			{Name: "Acme", Address: "123 Main St"},
			{Name: "Globex", Address: "456 Oak Ave"},
			{Name: "Initech", Address: "789 Elm Rd"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, "Office, Springfield IL", plan.Origin)
	assert.Equal(t, "Office, Springfield IL", plan.Destination)

	require.Len(t, plan.Stops, 3)
	assert.Equal(t, "Initech", plan.Stops[0].Name)
	assert.Equal(t, "Acme", plan.Stops[1].Name)
	assert.Equal(t, "Globex", plan.Stops[2].Name)

	require.Len(t, plan.Legs, 4)
	assert.Equal(t, "789 Elm Rd", plan.Legs[0].EndAddress)
	require.NotNil(t, plan.Legs[0].DistanceMeters)
	assert.Equal(t, 3000, *plan.Legs[0].DistanceMeters)
	assert.Equal(t, 10800, plan.TotalDistanceMeters)
	assert.Equal(t, 1500, plan.TotalDurationSeconds)
}

func TestPlanRouteNoRouteReturnsNil(t *testing.T) {
	directions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "ZERO_RESULTS",
			"error_message": "no route between stops",
		})
	}))
	defer directions.Close()

	service := NewAddressService(AddressServiceConfig{APIKey: "test-key", DirectionsURL: directions.URL})
	plan, err := service.PlanRoute(RoutePlanRequest{
		Origin: "Office",
		Stops:  []RoutePlanStop{{Name: "Acme", Address: "123 Main St"}},
	})
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestPlanRouteValidation(t *testing.T) {
	service := NewAddressService(AddressServiceConfig{APIKey: "test-key"})

	_, err := service.PlanRoute(RoutePlanRequest{
		Origin: "   ",
		Stops:  []RoutePlanStop{{Name: "Acme", Address: "123 Main St"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.PlanRoute(RoutePlanRequest{
		Origin: "Office",
		Stops:  []RoutePlanStop{{Name: "Acme", Address: "   "}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}
