package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"heaterwatch/internal/evaluator"
	"heaterwatch/internal/types"
)

//go:embed templates/*.txt
var templateFS embed.FS

const (
	timeLayout = "2006-01-02 03:04 PM MST"
	dateLayout = "2006-01-02"

	defaultSiteName = "Elmdale"
)

// Email is a rendered plain-text email.
type Email struct {
	Subject string
	Body    string
}

// SMS is a rendered text message.
type SMS struct {
	Subject string
	Message string
}

// StatusReport is the content of the informational status email.
type StatusReport struct {
	// LastState is the stored mode, empty when the record was never written.
	LastState string
	// DerivedState is the mode classified from the forecast, or an
	// explanation when no classification was possible.
	DerivedState string
	Thresholds   types.Thresholds
	Window       evaluator.WindowSummary
	Days         []evaluator.DaySummary
}

// RendererConfig holds the parameters needed to construct a Renderer.
type RendererConfig struct {
	// Location is the zone used for every rendered time. Defaults to UTC.
	Location *time.Location
	SiteName string
}

// Renderer turns alert payloads into email and SMS copy using the embedded
// text templates.
type Renderer struct {
	templates map[types.AlertKind]*template.Template
	loc       *time.Location
	site      string
}

// NewRenderer parses the embedded templates. It fails if any template is
// missing or does not parse.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[types.AlertKind]*template.Template),
		loc:       cfg.Location,
		site:      cfg.SiteName,
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	if r.site == "" {
		r.site = defaultSiteName
	}

	funcs := template.FuncMap{
		"temp":  formatTemp,
		"clock": r.formatTime,
		"date":  r.formatDate,
	}

	for _, kind := range []types.AlertKind{types.AlertFreeze, types.AlertWarmClear, types.AlertStatus} {
		name := string(kind)
		content, err := templateFS.ReadFile(fmt.Sprintf("templates/%s.txt", name))
		if err != nil {
			return nil, fmt.Errorf("renderer: failed to read %s.txt: %w", name, err)
		}
		tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("renderer: failed to parse %s.txt: %w", name, err)
		}
		r.templates[kind] = tmpl
	}

	return r, nil
}

// FreezeEmail renders the "turn heaters on" email.
func (r *Renderer) FreezeEmail(a types.FreezeAlert) (Email, error) {
	body, err := r.execute(types.AlertFreeze, a)
	if err != nil {
		return Email{}, err
	}
	return Email{Subject: "❄️ Cold Alert: Turn ON Bathroom Heaters", Body: body}, nil
}

// FreezeSMS renders the "turn heaters on" text message.
func (r *Renderer) FreezeSMS(a types.FreezeAlert) SMS {
	if a.Synthetic {
		return SMS{
			Subject: r.site + " Freeze Alert",
			Message: fmt.Sprintf(
				"Cold alert for %s bathroom: no warm-clear window confirmed for the next %d day(s). Keep bathroom heaters ON.",
				r.site, a.Thresholds.WarmClearDays,
			),
		}
	}
	return SMS{
		Subject: r.site + " Freeze Alert",
		Message: fmt.Sprintf(
			"Freeze alert for %s bathroom: forecast low %s in the next %d hours (%s to %s). Turn bathroom heaters ON.",
			r.site, formatTemp(a.MinTempF), a.Thresholds.HoursAhead,
			r.formatTime(a.FirstAlert), r.formatTime(a.LastAlert),
		),
	}
}

// WarmClearEmail renders the "turn heaters off" email.
func (r *Renderer) WarmClearEmail(a types.WarmClearAlert) (Email, error) {
	body, err := r.execute(types.AlertWarmClear, a)
	if err != nil {
		return Email{}, err
	}
	return Email{Subject: "☀️ Warm Alert: Turn OFF Bathroom Heaters", Body: body}, nil
}

// WarmClearSMS renders the "turn heaters off" text message.
func (r *Renderer) WarmClearSMS(a types.WarmClearAlert) SMS {
	return SMS{
		Subject: r.site + " Warm-Clear Alert",
		Message: fmt.Sprintf(
			"Warm-clear alert for %s bathroom: next %d nights have lows ≥ %s. Safe to turn bathroom heaters OFF.",
			r.site, a.WarmClearDays, formatTemp(a.WarmThresholdF),
		),
	}
}

// StatusEmail renders the informational status email.
func (r *Renderer) StatusEmail(rep StatusReport) (Email, error) {
	body, err := r.execute(types.AlertStatus, rep)
	if err != nil {
		return Email{}, err
	}
	return Email{
		Subject: fmt.Sprintf("🧪 Test Alert: %s Weather Monitor Status", r.site),
		Body:    body,
	}, nil
}

// TestSMS renders the message used to verify SMS delivery.
func (r *Renderer) TestSMS() SMS {
	return SMS{
		Subject: r.site + " Freeze Monitor TEST",
		Message: fmt.Sprintf("TEST SMS from %s freeze monitor: SNS wiring is working.", r.site),
	}
}

func (r *Renderer) execute(kind types.AlertKind, data any) (string, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("renderer: no template for %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("renderer: failed to render %q: %w", kind, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) formatTime(t time.Time) string {
	return t.In(r.loc).Format(timeLayout)
}

func (r *Renderer) formatDate(t time.Time) string {
	return t.In(r.loc).Format(dateLayout)
}

// formatTemp renders a temperature with one decimal and the unit. Missing
// readings render as "unavailable".
func formatTemp(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', 1, 64) + "°F"
	case *float64:
		if t == nil {
			return "unavailable"
		}
		return strconv.FormatFloat(*t, 'f', 1, 64) + "°F"
	default:
		return fmt.Sprint(v)
	}
}
