package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// WeatherReport is the current-conditions summary for a city
type WeatherReport struct {
	City      string
	Condition string
	TempC     float64
	Humidity  int
	WindKPH   float64
}

// Speak renders the report as a single spoken sentence
func (r WeatherReport) Speak() string {
	return fmt.Sprintf("The weather in %s is %s, temperature %.1f°C, humidity %d%%, wind %.1f kph.",
		r.City, strings.ToLower(r.Condition), r.TempC, r.Humidity, r.WindKPH)
}

// WeatherProvider fetches current conditions from WeatherAPI by city name
type WeatherProvider struct {
	client  *Client
	apiKey  string
	baseURL string
}

// NewWeatherProvider creates a weather provider. An empty apiKey disables it.
func NewWeatherProvider(client *Client, apiKey string) *WeatherProvider {
	return &WeatherProvider{
		client:  client,
		apiKey:  apiKey,
		baseURL: "http://api.weatherapi.com/v1",
	}
}

// Enabled reports whether a credential is configured
func (p *WeatherProvider) Enabled() bool {
	return p.apiKey != ""
}

// Current looks up current conditions for city. ErrConfigMissing without a
// key; no network call is made in that case.
func (p *WeatherProvider) Current(ctx context.Context, city string) (*WeatherReport, error) {
	if p.apiKey == "" {
		return nil, ErrConfigMissing
	}

	lookupURL := fmt.Sprintf("%s/current.json?key=%s&q=%s&aqi=no",
		p.baseURL, url.QueryEscape(p.apiKey), url.QueryEscape(city))

	var payload struct {
		Current *struct {
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
			TempC    float64 `json:"temp_c"`
			Humidity int     `json:"humidity"`
			WindKPH  float64 `json:"wind_kph"`
		} `json:"current"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	err := p.client.getJSON(ctx, "weather:"+strings.ToLower(city), lookupURL, func(body []byte) error {
		return json.Unmarshal(body, &payload)
	})
	if err != nil {
		return nil, err
	}

	if payload.Error != nil {
		message := payload.Error.Message
		if message == "" {
			message = "unknown location"
		}
		return nil, fmt.Errorf("%w: %s", ErrLookup, message)
	}
	if payload.Current == nil {
		return nil, fmt.Errorf("%w: malformed weather payload", ErrLookup)
	}

	return &WeatherReport{
		City:      city,
		Condition: payload.Current.Condition.Text,
		TempC:     payload.Current.TempC,
		Humidity:  payload.Current.Humidity,
		WindKPH:   payload.Current.WindKPH,
	}, nil
}
