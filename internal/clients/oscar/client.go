package oscar

import (
	"bytes"
	"clinic-server/internal/observability"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

// ErrNoServiceTokens is returned when the clinic has no stored OAuth service
// tokens; the phone system cannot reach the EMR without them.
var ErrNoServiceTokens = errors.New("no OSCAR service tokens available")

// apiError is a non-2xx answer from the EMR. It means OSCAR refused the
// request, as opposed to the request never reaching it.
type apiError struct {
	method string
	path   string
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("OSCAR %s %s: status %d: %s", e.method, e.path, e.status, e.body)
}

// TokenSource supplies the stored OAuth1 service token pair.
type TokenSource interface {
	ServiceTokens(ctx context.Context) (token string, secret string, err error)
}

// Patient is an OSCAR demographic record. Date of birth arrives under either
// the dob or dateOfBirth key depending on the endpoint, both as epoch millis.
type Patient struct {
	DemographicNo int    `json:"demographicNo"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	DOB           int64  `json:"dob"`
	DateOfBirth   int64  `json:"dateOfBirth"`
}

// BirthMillis returns the record's date of birth as epoch milliseconds,
// whichever field the record carries.
func (p Patient) BirthMillis() int64 {
	if p.DOB != 0 {
		return p.DOB
	}
	return p.DateOfBirth
}

// FullName returns "First Last" for prompts and logs.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Appointment is an OSCAR schedule entry.
type Appointment struct {
	ID              int    `json:"id"`
	DemographicNo   int    `json:"demographicNo"`
	ProviderNo      string `json:"providerNo"`
	AppointmentDate string `json:"appointmentDate"`
	StartTime       string `json:"startTime"`
	Duration        int    `json:"duration"`
	Status          string `json:"status"`
	Reason          string `json:"reason"`
}

// Provider is an OSCAR provider record.
type Provider struct {
	ProviderNo string `json:"providerNo"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// Client is a thin OSCAR REST client signing each request with OAuth1 service
// tokens fetched from the token source on every call, so token rotation in
// the store takes effect without a restart.
type Client struct {
	baseURL string
	config  *oauth1.Config
	tokens  TokenSource
	logger  *observability.Logger

	// OSCAR installs commonly run self-signed certificates.
	httpClient *http.Client
}

// New creates an OSCAR client. insecureSkipVerify disables TLS verification
// for self-signed EMR deployments.
func New(baseURL, consumerKey, consumerSecret string, tokens TokenSource, insecureSkipVerify bool, logger *observability.Logger) *Client {
	transport := &http.Transport{}
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		config:     oauth1.NewConfig(consumerKey, consumerSecret),
		tokens:     tokens,
		logger:     logger,
		httpClient: &http.Client{Transport: transport, Timeout: 15 * time.Second},
	}
}

// SearchPatients searches demographics by name. OSCAR quickSearch expects
// "LastName,FirstName", so a two-token "First Last" query is flipped.
func (c *Client) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	parts := strings.Fields(query)
	if len(parts) == 2 {
		query = parts[1] + "," + parts[0]
	}

	var result struct {
		Content []Patient `json:"content"`
	}
	params := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "/ws/services/demographics/quickSearch?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return result.Content, nil
}

// GetPatientAppointments returns a patient's appointment history.
func (c *Client) GetPatientAppointments(ctx context.Context, demographicNo int) ([]Appointment, error) {
	var appointments []Appointment
	path := fmt.Sprintf("/ws/services/schedule/%d/appointmentHistory", demographicNo)
	if err := c.do(ctx, http.MethodPost, path, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// GetDayAppointments returns a provider's booked slots on a date (YYYY-MM-DD).
func (c *Client) GetDayAppointments(ctx context.Context, providerNo, date string) ([]Appointment, error) {
	var appointments []Appointment
	path := fmt.Sprintf("/ws/services/schedule/%s/day/%s", url.PathEscape(providerNo), url.PathEscape(date))
	if err := c.do(ctx, http.MethodGet, path, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// CreateAppointment books a slot. startTime is 24-hour "HH:MM"; OSCAR's add
// endpoint wants a 12-hour time with meridian. Returns nil without error when
// the EMR rejects the booking; transport and token failures stay errors.
func (c *Client) CreateAppointment(ctx context.Context, demographicNo int, providerNo, date, startTime string, duration int, reason string) (*Appointment, error) {
	time12h, err := to12Hour(startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	if duration <= 0 {
		duration = 15
	}

	body := map[string]interface{}{
		"demographicNo":          demographicNo,
		"providerNo":             providerNo,
		"appointmentDate":        date,
		"startTime12hWithMedian": time12h,
		"duration":               duration,
		"status":                 "t",
	}
	if reason != "" {
		body["reason"] = reason
	}

	var appointment Appointment
	if err := c.do(ctx, http.MethodPost, "/ws/services/schedule/add", body, &appointment); err != nil {
		var refused *apiError
		if errors.As(err, &refused) {
			c.logger.InfoWithError(ctx, "OSCAR rejected appointment create", err)
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// CancelAppointment cancels an appointment; the boolean reflects the EMR's
// answer, never an assumption.
func (c *Client) CancelAppointment(ctx context.Context, appointmentNo int) (bool, error) {
	err := c.do(ctx, http.MethodPost, "/ws/services/schedule/deleteAppointment", map[string]interface{}{"id": appointmentNo}, nil)
	if err != nil {
		var refused *apiError
		if errors.As(err, &refused) {
			c.logger.InfoWithError(ctx, "OSCAR rejected appointment cancel", err)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListProviders returns the clinic's provider directory. The endpoint returns
// either a bare array or a content-wrapped one depending on the OSCAR version.
func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	raw := json.RawMessage{}
	if err := c.do(ctx, http.MethodGet, "/ws/services/providerService/providers_json", nil, &raw); err != nil {
		return nil, err
	}

	var providers []Provider
	if err := json.Unmarshal(raw, &providers); err == nil {
		return providers, nil
	}
	var wrapped struct {
		Content []Provider `json:"content"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected providers payload: %w", err)
	}
	return wrapped.Content, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	token, secret, err := c.tokens.ServiceTokens(ctx)
	if err != nil {
		return fmt.Errorf("fetch service tokens: %w", err)
	}
	if token == "" || secret == "" {
		return ErrNoServiceTokens
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	signingCtx := context.WithValue(ctx, oauth1.HTTPClient, c.httpClient)
	resp, err := c.config.Client(signingCtx, oauth1.NewToken(token, secret)).Do(req)
	if err != nil {
		return fmt.Errorf("OSCAR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{method: method, path: path, status: resp.StatusCode, body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode OSCAR response: %w", err)
	}
	return nil
}

// to12Hour converts "HH:MM" to OSCAR's "h:MM AM/PM".
func to12Hour(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", err
	}
	return t.Format("3:04 PM"), nil
}
