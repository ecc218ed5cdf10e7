package finsdk

import (
	"context"
	"net/http"
)

// DefaultForecastURL is where the spend forecasting service listens during
// local development.
const DefaultForecastURL = "http://127.0.0.1:8000/api/predict-spends/"

// WithForecastURL points GetForecast at u and returns the client. An empty u
// keeps the current URL.
func (c *Client) WithForecastURL(u string) *Client {
	if u != "" {
		c.ForecastURL = u
	}
	return c
}

// GetForecast fetches next week's predicted spend per category.
func (c *Client) GetForecast(ctx context.Context) ([]CategoryForecast, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.ForecastURL, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []CategoryForecast
	if _, err := decodeEnvelope(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
