package twiliocontrol

import (
	"clinic-server/internal/observability"
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNotConfigured is returned when account credentials or the transfer
// destination are missing; the call tools surface this as an error string
// instead of tearing the call down.
var ErrNotConfigured = errors.New("telephony control client not configured")

// Client issues call-control commands (transfer, hang up) against live calls
// through the Twilio REST API. It never touches media; that stays on the
// websocket leg.
type Client struct {
	api            *twilio.RestClient
	transferNumber string
	logger         *observability.Logger
}

// New creates a control client. Empty credentials produce a client whose
// commands fail with ErrNotConfigured rather than a constructor error, so a
// clinic without a staff line still takes calls.
func New(accountSID, authToken, transferNumber string, logger *observability.Logger) *Client {
	c := &Client{transferNumber: transferNumber, logger: logger}
	if accountSID != "" && authToken != "" {
		c.api = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	}
	return c
}

// CanTransfer reports whether transfer commands can be issued.
func (c *Client) CanTransfer() bool {
	return c.api != nil && c.transferNumber != ""
}

// CanEndCall reports whether hang-up commands can be issued.
func (c *Client) CanEndCall() bool {
	return c.api != nil
}

// TransferCall redirects a live call to the configured staff number.
func (c *Client) TransferCall(ctx context.Context, callSID string) error {
	if !c.CanTransfer() {
		return ErrNotConfigured
	}
	twiml := fmt.Sprintf("<Response><Dial>%s</Dial></Response>", c.transferNumber)
	params := &twilioapi.UpdateCallParams{}
	params.SetTwiml(twiml)
	if _, err := c.api.Api.UpdateCall(callSID, params); err != nil {
		return fmt.Errorf("transfer call %s: %w", callSID, err)
	}
	c.logger.Info(ctx, fmt.Sprintf("Transferred call %s to staff line", callSID))
	return nil
}

// EndCall completes a live call.
func (c *Client) EndCall(ctx context.Context, callSID string) error {
	if !c.CanEndCall() {
		return ErrNotConfigured
	}
	params := &twilioapi.UpdateCallParams{}
	params.SetStatus("completed")
	if _, err := c.api.Api.UpdateCall(callSID, params); err != nil {
		return fmt.Errorf("end call %s: %w", callSID, err)
	}
	c.logger.Info(ctx, fmt.Sprintf("Ended call %s", callSID))
	return nil
}
