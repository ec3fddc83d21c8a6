package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stylistoapi/outfit"
)

type WeatherServiceProvider interface {
	CurrentWeather(ctx context.Context, latitude, longitude float64) (*outfit.WeatherSnapshot, error)
}

// OpenMeteoService fetches today's forecast to feed the optional weather
// scoring dimension. A failed fetch just disables the dimension upstream.
type OpenMeteoService struct {
	BaseURL string
}

type openMeteoResponse struct {
	Daily struct {
		TempMin     []float64 `json:"temperature_2m_min"`
		TempMax     []float64 `json:"temperature_2m_max"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

func (s OpenMeteoService) CurrentWeather(ctx context.Context, latitude, longitude float64) (*outfit.WeatherSnapshot, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&daily=temperature_2m_min,temperature_2m_max,weather_code&forecast_days=1",
		baseURL, latitude, longitude)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather provider responded with %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Daily.TempMin) == 0 || len(payload.Daily.TempMax) == 0 {
		return nil, fmt.Errorf("weather provider returned no daily data")
	}

	snapshot := &outfit.WeatherSnapshot{
		TempMin:   payload.Daily.TempMin[0],
		TempMax:   payload.Daily.TempMax[0],
		Condition: "clear",
	}
	if len(payload.Daily.WeatherCode) > 0 {
		snapshot.Condition = conditionFromCode(payload.Daily.WeatherCode[0])
	}
	return snapshot, nil
}

// WMO weather interpretation codes, collapsed to the buckets the scorer knows.
func conditionFromCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 48:
		return "clouds"
	case code <= 67 || (code >= 80 && code <= 82):
		return "rain"
	case code <= 77 || (code >= 85 && code <= 86):
		return "snow"
	case code >= 95:
		return "rain"
	default:
		return "clouds"
	}
}
