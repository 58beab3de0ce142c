package tools

//go:generate go run go.uber.org/mock/mockgen@latest -source=dispatcher.go -destination=mocks_test.go -package=tools

import (
	"clinic-server/internal/clients/oscar"
	"clinic-server/internal/observability"
	"clinic-server/internal/voicecall/identity"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// farewellDelay gives the engine's goodbye utterance time to finish playing
// before the call is actually transferred or hung up.
const farewellDelay = 3 * time.Second

// ClinicAPI is the slice of the OSCAR client the dispatcher drives.
type ClinicAPI interface {
	GetPatientAppointments(ctx context.Context, demographicNo int) ([]oscar.Appointment, error)
	GetDayAppointments(ctx context.Context, providerNo, date string) ([]oscar.Appointment, error)
	CreateAppointment(ctx context.Context, demographicNo int, providerNo, date, startTime string, duration int, reason string) (*oscar.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentNo int) (bool, error)
	ListProviders(ctx context.Context) ([]oscar.Provider, error)
}

// PatientVerifier matches a caller-asserted identity to a patient record.
type PatientVerifier interface {
	Verify(ctx context.Context, name, dateOfBirth, phoneDigits string) (identity.Result, error)
}

// CallControl issues transfer and hang-up commands against the live call.
type CallControl interface {
	CanTransfer() bool
	CanEndCall() bool
	TransferCall(ctx context.Context, callSID string) error
	EndCall(ctx context.Context, callSID string) error
}

// SessionState is the per-call verification state the dispatcher reads and
// writes. Verified identity never survives the call that established it.
type SessionState interface {
	VerifiedPatientID() (int, bool)
	SetVerifiedPatientID(id int)
	CallSID() string
}

type handler func(ctx context.Context, state SessionState, args map[string]interface{}) map[string]interface{}

type toolEntry struct {
	requiresVerification bool
	run                  handler
}

// Dispatcher routes named tool invocations from the realtime engine to clinic
// operations, gating patient-record tools behind identity verification.
type Dispatcher struct {
	clinic   ClinicAPI
	verifier PatientVerifier
	control  CallControl
	logger   *observability.Logger
	delay    time.Duration
	table    map[string]toolEntry
}

func NewDispatcher(clinic ClinicAPI, verifier PatientVerifier, control CallControl, logger *observability.Logger) *Dispatcher {
	d := &Dispatcher{
		clinic:   clinic,
		verifier: verifier,
		control:  control,
		logger:   logger,
		delay:    farewellDelay,
	}
	d.table = map[string]toolEntry{
		"verify_identity":     {run: d.verifyIdentity},
		"get_providers":       {run: d.getProviders},
		"get_day_schedule":    {run: d.getDaySchedule},
		"transfer_to_staff":   {run: d.transferToStaff},
		"end_call":            {run: d.endCall},
		"get_my_appointments": {requiresVerification: true, run: d.getMyAppointments},
		"book_appointment":    {requiresVerification: true, run: d.bookAppointment},
		"cancel_appointment":  {requiresVerification: true, run: d.cancelAppointment},
	}
	return d
}

// Dispatch runs one tool invocation and returns the JSON result to hand back
// to the engine. Failures surface as structured error results, never as a
// torn-down call: the engine re-prompts the caller instead.
func (d *Dispatcher) Dispatch(ctx context.Context, state SessionState, name string, args map[string]interface{}) string {
	result := d.run(ctx, state, name, args)
	payload, err := json.Marshal(result)
	if err != nil {
		d.logger.Error(ctx, fmt.Sprintf("Failed to marshal result for tool %s", name), err)
		return `{"error": "Internal error"}`
	}
	return string(payload)
}

func (d *Dispatcher) run(ctx context.Context, state SessionState, name string, args map[string]interface{}) map[string]interface{} {
	entry, ok := d.table[name]
	if !ok {
		return errResult(fmt.Sprintf("Unknown tool: %s", name))
	}
	if entry.requiresVerification {
		if _, verified := state.VerifiedPatientID(); !verified {
			return errResult("Identity not verified. Identity verification is required before accessing patient records.")
		}
	}
	return entry.run(ctx, state, args)
}

func (d *Dispatcher) verifyIdentity(ctx context.Context, state SessionState, args map[string]interface{}) map[string]interface{} {
	name := stringArg(args, "name")
	dob := stringArg(args, "date_of_birth")
	phone := stringArg(args, "phone")

	result, err := d.verifier.Verify(ctx, name, dob, phone)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidDate) {
			return errResult("Invalid date format.")
		}
		d.logger.Error(ctx, "Identity verification failed", err)
		return errResult("Verification is temporarily unavailable. Please try again.")
	}

	switch result.Outcome {
	case identity.OutcomeNotFound:
		return errResult("No patient found with that name.")
	case identity.OutcomeDOBMismatch:
		return errResult("Date of birth does not match our records.")
	case identity.OutcomeAmbiguousNeedsPhone:
		return map[string]interface{}{
			"need_phone": true,
			"message":    "Multiple patients match. Please ask for the last four digits of their phone number.",
		}
	case identity.OutcomeVerified:
		state.SetVerifiedPatientID(result.PatientID)
		return map[string]interface{}{"success": true}
	}
	return errResult("Verification failed.")
}

func (d *Dispatcher) getProviders(ctx context.Context, _ SessionState, _ map[string]interface{}) map[string]interface{} {
	providers, err := d.clinic.ListProviders(ctx)
	if err != nil {
		d.logger.Error(ctx, "Failed to list providers", err)
		return errResult("Could not retrieve the provider list.")
	}
	out := make([]map[string]interface{}, 0, len(providers))
	for _, p := range providers {
		out = append(out, map[string]interface{}{
			"provider_no": p.ProviderNo,
			"name":        p.FirstName + " " + p.LastName,
		})
	}
	return map[string]interface{}{"providers": out}
}

func (d *Dispatcher) getDaySchedule(ctx context.Context, _ SessionState, args map[string]interface{}) map[string]interface{} {
	providerNo := stringArg(args, "provider_no")
	date := stringArg(args, "date")
	appointments, err := d.clinic.GetDayAppointments(ctx, providerNo, date)
	if err != nil {
		d.logger.Error(ctx, "Failed to fetch day schedule", err)
		return errResult("Could not retrieve the schedule.")
	}
	booked := make([]map[string]interface{}, 0, len(appointments))
	for _, a := range appointments {
		booked = append(booked, map[string]interface{}{"startTime": a.StartTime})
	}
	return map[string]interface{}{
		"booked_appointments": booked,
		"note":                "Clinic hours are 9am-5pm. Any slot not listed above is available.",
	}
}

func (d *Dispatcher) getMyAppointments(ctx context.Context, state SessionState, _ map[string]interface{}) map[string]interface{} {
	patientID, _ := state.VerifiedPatientID()
	appointments, err := d.clinic.GetPatientAppointments(ctx, patientID)
	if err != nil {
		d.logger.Error(ctx, "Failed to fetch patient appointments", err)
		return errResult("Could not retrieve your appointments.")
	}
	return map[string]interface{}{"appointments": appointments}
}

func (d *Dispatcher) bookAppointment(ctx context.Context, state SessionState, args map[string]interface{}) map[string]interface{} {
	patientID, _ := state.VerifiedPatientID()
	date := stringArg(args, "date")
	startTime := stringArg(args, "time")
	providerNo := stringArg(args, "provider_no")
	reason := stringArg(args, "reason")
	duration := intArg(args, "duration", 15)

	appointment, err := d.clinic.CreateAppointment(ctx, patientID, providerNo, date, startTime, duration, reason)
	if err != nil {
		d.logger.Error(ctx, "Failed to book appointment", err)
		return errResult("Failed to book appointment")
	}
	if appointment == nil {
		return errResult("Failed to book appointment")
	}
	return map[string]interface{}{"success": true, "appointment": appointment}
}

func (d *Dispatcher) cancelAppointment(ctx context.Context, _ SessionState, args map[string]interface{}) map[string]interface{} {
	appointmentID := intArg(args, "appointment_id", 0)
	if appointmentID == 0 {
		return errResult("Missing appointment_id.")
	}
	ok, err := d.clinic.CancelAppointment(ctx, appointmentID)
	if err != nil {
		d.logger.Error(ctx, "Failed to cancel appointment", err)
		return errResult("Failed to cancel appointment")
	}
	if !ok {
		return errResult("Failed to cancel appointment")
	}
	return map[string]interface{}{"success": true}
}

// transferToStaff acknowledges immediately and performs the transfer after a
// short delay on a detached goroutine, so the engine's farewell reaches the
// caller before the audio path is torn away.
func (d *Dispatcher) transferToStaff(ctx context.Context, state SessionState, _ map[string]interface{}) map[string]interface{} {
	if !d.control.CanTransfer() {
		return errResult("Transfer is not available right now.")
	}
	callSID := state.CallSID()
	go func() {
		time.Sleep(d.delay)
		ctx := context.Background()
		if err := d.control.TransferCall(ctx, callSID); err != nil {
			d.logger.Error(ctx, fmt.Sprintf("Failed to transfer call %s", callSID), err)
		}
	}()
	return map[string]interface{}{"success": true, "message": "Transferring to staff now."}
}

func (d *Dispatcher) endCall(ctx context.Context, state SessionState, _ map[string]interface{}) map[string]interface{} {
	if !d.control.CanEndCall() {
		return errResult("Cannot end call: telephony control is not configured.")
	}
	callSID := state.CallSID()
	go func() {
		time.Sleep(d.delay)
		ctx := context.Background()
		if err := d.control.EndCall(ctx, callSID); err != nil {
			d.logger.Error(ctx, fmt.Sprintf("Failed to end call %s", callSID), err)
		}
	}()
	return map[string]interface{}{"success": true, "message": "Ending the call. Goodbye."}
}

func errResult(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg tolerates JSON numbers arriving as float64 and as numeric strings.
func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
