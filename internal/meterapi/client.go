// Package meterapi provides the client for the prepaid metering API.
package meterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

const (
	// updatedOnLayout is the meter's timestamp format: DD-MM-YYYY HH:MM:SS.
	updatedOnLayout = "02-01-2006 15:04:05"

	// inputTypePayload is the opaque request discriminator the API expects.
	inputTypePayload = "PObKiG8pSHLNiMt7C0uIuYbdF0WNRXG5GvLp5gd5sdw="

	maxAttempts    = 3
	backoffStep    = 500 * time.Millisecond
	requestTimeout = 10 * time.Second
)

// Client fetches readings and aggregates from the metering API.
type Client struct {
	liveURL     string
	homeURL     string
	bearerToken string
	location    *time.Location
	httpClient  *http.Client
}

// New creates a metering API client. Timestamps in live readings are
// interpreted in loc, the meter's civil timezone.
func New(liveURL, homeURL, bearerToken string, loc *time.Location) *Client {
	return &Client{
		liveURL:     liveURL,
		homeURL:     homeURL,
		bearerToken: bearerToken,
		location:    loc,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

// liveData is the wire shape of a live reading. All numeric fields arrive
// as strings.
type liveData struct {
	Balance     string `json:"Balance"`
	PresentLoad string `json:"PresentLoad"`
	EB          string `json:"EB"`
	DG          string `json:"DG"`
	UpdatedOn   string `json:"UpdatedOn"`
}

type liveEnvelope struct {
	Data *liveData `json:"Data"`
}

type homeData struct {
	CurrentDayEB   string `json:"CurrentDay_EB"`
	CurrentDayDG   string `json:"CurrentDay_DG"`
	CurrentMonthEB string `json:"CurrentMonth_EB"`
	CurrentMonthDG string `json:"CurrentMonth_DG"`
	MeterBal       string `json:"MeterBal"`
}

type homeEnvelope struct {
	Data *homeData `json:"Data"`
}

// FetchLive retrieves the current meter reading. It retries transient
// failures with linear backoff and gives up after the attempt cap; the
// caller treats an error as "no reading this tick".
func (c *Client) FetchLive(ctx context.Context) (*models.Reading, error) {
	body, err := c.post(ctx, c.liveURL)
	if err != nil {
		return nil, err
	}

	var envelope liveEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid live response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("invalid live response: missing Data")
	}

	return c.parseReading(envelope.Data)
}

// FetchHome retrieves the live aggregate view (day/month usage, balance).
func (c *Client) FetchHome(ctx context.Context) (*models.HomeData, error) {
	body, err := c.post(ctx, c.homeURL)
	if err != nil {
		return nil, err
	}

	var envelope homeEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid home response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("invalid home response: missing Data")
	}

	d := envelope.Data
	home := &models.HomeData{}
	fields := []struct {
		raw  string
		dst  *float64
		name string
	}{
		{d.CurrentDayEB, &home.CurrentDayEB, "CurrentDay_EB"},
		{d.CurrentDayDG, &home.CurrentDayDG, "CurrentDay_DG"},
		{d.CurrentMonthEB, &home.CurrentMonthEB, "CurrentMonth_EB"},
		{d.CurrentMonthDG, &home.CurrentMonthDG, "CurrentMonth_DG"},
		{d.MeterBal, &home.MeterBalance, "MeterBal"},
	}
	for _, f := range fields {
		v, err := parseFloat(f.raw, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return home, nil
}

// post sends the API request with bearer auth, retrying with linear backoff.
func (c *Client) post(ctx context.Context, url string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"InputType": inputTypePayload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.doOnce(ctx, url, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		logger.Warn("meter API request failed",
			"url", url, "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * backoffStep):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("meter API unavailable after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("User-Agent", "okhttp/3.14.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (c *Client) parseReading(d *liveData) (*models.Reading, error) {
	r := &models.Reading{}

	fields := []struct {
		raw  string
		dst  *float64
		name string
	}{
		{d.Balance, &r.Balance, "Balance"},
		{d.PresentLoad, &r.PresentLoad, "PresentLoad"},
		{d.EB, &r.EB, "EB"},
		{d.DG, &r.DG, "DG"},
	}
	for _, f := range fields {
		v, err := parseFloat(f.raw, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	updated, err := time.ParseInLocation(updatedOnLayout, d.UpdatedOn, c.location)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedOn %q: %w", d.UpdatedOn, err)
	}
	r.UpdatedOn = updated

	return r, nil
}

func parseFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing field %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid field %s=%q: %w", name, raw, err)
	}
	return v, nil
}
