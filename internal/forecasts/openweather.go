package forecasts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"heaterwatch/internal/external"
	"heaterwatch/internal/types"
)

// maxBodyBytes caps the decoded One Call payload. A full response with
// hourly and daily sections is well under 100 KiB.
const maxBodyBytes = 4 << 20

// HTTPDoer is satisfied by *external.BaseClient.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenWeatherConfig configures an OpenWeatherClient.
type OpenWeatherConfig struct {
	BaseURL string
	APIKey  types.SecretString
	Lat     float64
	Lon     float64
	Logger  *slog.Logger
}

// OpenWeatherClient fetches the OpenWeather One Call 3.0 forecast in
// imperial units with the minutely, current and alerts sections excluded.
type OpenWeatherClient struct {
	http    HTTPDoer
	baseURL string
	apiKey  types.SecretString
	lat     float64
	lon     float64
	logger  *slog.Logger
}

// NewOpenWeatherClient creates an OpenWeatherClient.
func NewOpenWeatherClient(doer HTTPDoer, cfg OpenWeatherConfig) *OpenWeatherClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenWeatherClient{
		http:    doer,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		lat:     cfg.Lat,
		lon:     cfg.Lon,
		logger:  logger,
	}
}

var _ Source = (*OpenWeatherClient)(nil)
var _ HTTPDoer = (*external.BaseClient)(nil)

func (c *OpenWeatherClient) requestURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(c.lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.lon, 'f', -1, 64))
	q.Set("exclude", "minutely,alerts,current")
	q.Set("units", "imperial")
	q.Set("appid", c.apiKey.Unmask())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch retrieves and decodes the forecast.
func (c *OpenWeatherClient) Fetch(ctx context.Context) (types.Forecast, error) {
	if c.apiKey.IsEmpty() {
		return types.Forecast{}, types.NewAppError(types.ErrCodeValidationMissingField,
			"weather API key is not configured", nil)
	}

	reqURL, err := c.requestURL()
	if err != nil {
		return types.Forecast{}, types.NewFetchError("invalid weather base URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Forecast{}, types.NewFetchError("failed to build weather request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	c.logger.DebugContext(ctx, "requesting forecast",
		"lat", c.lat,
		"lon", c.lon,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Forecast{}, types.NewFetchError("weather request failed", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return types.Forecast{}, types.NewFetchError("failed to read weather response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.ErrorContext(ctx, "weather api returned error status",
			"status", resp.StatusCode,
			"body", truncate(string(body), 256),
		)
		return types.Forecast{}, types.NewFetchError(
			fmt.Sprintf("weather api returned status %d", resp.StatusCode), nil,
		).WithDetails(map[string]any{"status": resp.StatusCode})
	}

	return DecodeOneCall(body)
}

func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// oneCallResponse mirrors the parts of the One Call payload we consume.
type oneCallResponse struct {
	Hourly []oneCallHour `json:"hourly"`
	Daily  []oneCallDay  `json:"daily"`
}

type oneCallHour struct {
	Dt   *int64   `json:"dt"`
	Temp *float64 `json:"temp"`
}

type oneCallDay struct {
	Dt   *int64 `json:"dt"`
	Temp *struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"temp"`
}

// DecodeOneCall converts a One Call JSON body into a Forecast. Missing
// "hourly" or "daily" sections decode as empty sequences; a section of the
// wrong type or an entry without a timestamp is malformed. Entries are
// returned in ascending time order.
func DecodeOneCall(body []byte) (types.Forecast, error) {
	var raw oneCallResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return types.Forecast{}, types.NewMalformedForecastError("forecast payload does not match the One Call shape", err)
	}

	fc := types.Forecast{
		Hourly: make([]types.HourlyPoint, 0, len(raw.Hourly)),
		Daily:  make([]types.DailyPoint, 0, len(raw.Daily)),
	}
	for i, h := range raw.Hourly {
		if h.Dt == nil {
			return types.Forecast{}, types.NewMalformedForecastError(fmt.Sprintf("hourly[%d] has no dt", i), nil)
		}
		fc.Hourly = append(fc.Hourly, types.HourlyPoint{
			Time:  time.Unix(*h.Dt, 0).UTC(),
			TempF: h.Temp,
		})
	}
	for i, d := range raw.Daily {
		if d.Dt == nil {
			return types.Forecast{}, types.NewMalformedForecastError(fmt.Sprintf("daily[%d] has no dt", i), nil)
		}
		p := types.DailyPoint{Time: time.Unix(*d.Dt, 0).UTC()}
		if d.Temp != nil {
			p.TempMinF = d.Temp.Min
			p.TempMaxF = d.Temp.Max
		}
		fc.Daily = append(fc.Daily, p)
	}

	slices.SortStableFunc(fc.Hourly, func(a, b types.HourlyPoint) int { return a.Time.Compare(b.Time) })
	slices.SortStableFunc(fc.Daily, func(a, b types.DailyPoint) int { return a.Time.Compare(b.Time) })
	return fc, nil
}
