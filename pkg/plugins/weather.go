// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

package plugins

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/freitascorp/mcpid/pkg/mcp"
	"github.com/freitascorp/mcpid/pkg/plugin"
)

// dummyForecastWAV is a minimal silent WAV clip standing in for
// synthesized forecast audio.
const dummyForecastWAV = "UklGRiQAAABXQVZFZm10IBAAAAABAAEARKwAAIhYAQACABAAZGF0YQAAAAA="

const forecastDays = 3

var weatherLocations = []string{"New York", "London", "Tokyo", "Sydney", "Paris"}

var baseTemperatures = map[string]int{
	"New York": 22,
	"London":   18,
	"Tokyo":    26,
	"Sydney":   20,
	"Paris":    21,
}

var weatherConditions = []string{"Sunny", "Partly Cloudy", "Cloudy", "Rainy", "Thunderstorms"}

// WeatherPlugin serves deterministic synthetic forecasts. The same
// location always yields the same forecast, which keeps client test
// runs reproducible.
type WeatherPlugin struct{}

// NewWeatherPlugin creates the weather plugin.
func NewWeatherPlugin() *WeatherPlugin { return &WeatherPlugin{} }

func (p *WeatherPlugin) Name() string        { return "weather_forecast" }
func (p *WeatherPlugin) Description() string { return "Get weather forecasts for known locations" }
func (p *WeatherPlugin) Category() string    { return "weather" }
func (p *WeatherPlugin) Kind() plugin.Kind   { return plugin.KindExtension }

func (p *WeatherPlugin) SupportedOperations() []string {
	return []string{"GET", "LIST", "GET_AUDIO"}
}

func (p *WeatherPlugin) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": p.SupportedOperations(),
			},
			"location": map[string]any{
				"type":        "string",
				"description": "City name, e.g. London",
			},
		},
		"required": []string{"operation"},
	}
}

func (p *WeatherPlugin) Resources() []plugin.ResourceEntry {
	return []plugin.ResourceEntry{
		{Name: "locations", URISuffix: "locations", Description: "Known forecast locations"},
	}
}

// Execute handles GET, LIST and GET_AUDIO.
func (p *WeatherPlugin) Execute(operation string, args map[string]any) (any, error) {
	switch operation {
	case "GET":
		location, err := locationArg(args)
		if err != nil {
			return nil, err
		}
		if !knownLocation(location) {
			return notFoundResult(location), nil
		}
		return map[string]any{
			"location": location,
			"unit":     "celsius",
			"forecast": forecastFor(location),
		}, nil

	case "LIST":
		results := make([]map[string]any, 0, len(weatherLocations))
		for _, location := range weatherLocations {
			results = append(results, map[string]any{
				"location": location,
				"today":    forecastFor(location)[0],
			})
		}
		return map[string]any{
			"results":             results,
			"count":               len(results),
			"available_locations": weatherLocations,
		}, nil

	case "GET_AUDIO":
		location, err := locationArg(args)
		if err != nil {
			return nil, err
		}
		if !knownLocation(location) {
			return notFoundResult(location), nil
		}
		return map[string]any{
			"location":    location,
			"description": fmt.Sprintf("Audio forecast for %s", location),
			"audio": map[string]any{
				"data":     dummyForecastWAV,
				"mimeType": "audio/wav",
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}
}

// ToolAnnotations marks the tool read-only.
func (p *WeatherPlugin) ToolAnnotations() *mcp.ToolAnnotations {
	readOnly := true
	openWorld := false
	return &mcp.ToolAnnotations{
		Title:         "Weather Forecast",
		ReadOnlyHint:  &readOnly,
		OpenWorldHint: &openWorld,
	}
}

// Completions offers location names matching the partial value.
func (p *WeatherPlugin) Completions(argName, partial string, ctx map[string]string) []string {
	if argName != "location" {
		return []string{}
	}
	needle := strings.ToLower(partial)
	out := []string{}
	for _, location := range weatherLocations {
		if strings.HasPrefix(strings.ToLower(location), needle) {
			out = append(out, location)
		}
	}
	return out
}

// ReadResource serves the location list as a JSON resource.
func (p *WeatherPlugin) ReadResource(suffix string) (mcp.ContentItem, error) {
	if suffix != "locations" {
		return mcp.ContentItem{}, fmt.Errorf("unknown resource suffix: %s", suffix)
	}
	raw, err := json.Marshal(weatherLocations)
	if err != nil {
		return mcp.ContentItem{}, err
	}
	return mcp.ContentItem{Type: mcp.ContentTypeText, Text: string(raw), MimeType: "application/json"}, nil
}

func locationArg(args map[string]any) (string, error) {
	location, ok := args["location"].(string)
	if !ok || location == "" {
		return "", fmt.Errorf("location parameter required")
	}
	return location, nil
}

func knownLocation(location string) bool {
	_, ok := baseTemperatures[location]
	return ok
}

func notFoundResult(location string) map[string]any {
	return map[string]any{
		"error":               "Location not found",
		"location":            location,
		"available_locations": weatherLocations,
	}
}

// forecastFor derives a stable multi-day forecast from the location
// name alone.
func forecastFor(location string) []map[string]any {
	seed := 0
	for _, r := range location {
		seed += int(r)
	}

	base := baseTemperatures[location]
	days := make([]map[string]any, 0, forecastDays)
	for i := 0; i < forecastDays; i++ {
		condition := weatherConditions[(seed+i)%len(weatherConditions)]
		days = append(days, map[string]any{
			"day":                 i,
			"condition":           condition,
			"temperature_celsius": base + (seed+i)%5 - 2,
		})
	}
	return days
}
