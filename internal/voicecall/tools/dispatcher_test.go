package tools

import (
	"clinic-server/internal/clients/oscar"
	"clinic-server/internal/observability"
	"clinic-server/internal/voicecall/identity"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

// fakeState is a plain in-memory SessionState for tests that care about the
// verified-id write path rather than call expectations.
type fakeState struct {
	mu        sync.Mutex
	patientID int
	verified  bool
	callSID   string
}

func (f *fakeState) VerifiedPatientID() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patientID, f.verified
}

func (f *fakeState) SetVerifiedPatientID(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patientID = id
	f.verified = true
}

func (f *fakeState) CallSID() string { return f.callSID }

func newTestDispatcher(t *testing.T) (*Dispatcher, *MockClinicAPI, *MockPatientVerifier, *MockCallControl) {
	t.Helper()
	ctrl := gomock.NewController(t)
	clinic := NewMockClinicAPI(ctrl)
	verifier := NewMockPatientVerifier(ctrl)
	control := NewMockCallControl(ctrl)
	d := NewDispatcher(clinic, verifier, control, observability.NewLogger())
	d.delay = time.Millisecond
	return d, clinic, verifier, control
}

func dispatch(t *testing.T, d *Dispatcher, state SessionState, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw := d.Dispatch(context.Background(), state, name, args)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("dispatch result is not JSON: %v (%s)", err, raw)
	}
	return result
}

func TestGatedToolsBlockedWithoutVerification(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	state := &fakeState{}

	for _, tool := range []string{"get_my_appointments", "book_appointment", "cancel_appointment"} {
		result := dispatch(t, d, state, tool, map[string]interface{}{})
		msg, _ := result["error"].(string)
		if !strings.Contains(msg, "Identity not verified") {
			t.Errorf("%s: expected verification error, got %v", tool, result)
		}
		if !strings.Contains(msg, "verification") {
			t.Errorf("%s: error must mention verification, got %v", tool, result)
		}
	}
}

func TestUnknownTool(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	state := &fakeState{patientID: 42, verified: true}

	result := dispatch(t, d, state, "order_pizza", map[string]interface{}{})
	msg, _ := result["error"].(string)
	if !strings.Contains(msg, "Unknown tool") {
		t.Errorf("expected unknown tool error, got %v", result)
	}
}

func TestVerifyIdentityOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		result  identity.Result
		wantErr string
	}{
		{"not found", identity.Result{Outcome: identity.OutcomeNotFound}, "No patient found"},
		{"dob mismatch", identity.Result{Outcome: identity.OutcomeDOBMismatch}, "Date of birth does not match"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _, verifier, _ := newTestDispatcher(t)
			verifier.EXPECT().Verify(gomock.Any(), "John Doe", "1990-01-15", "").Return(tc.result, nil)

			result := dispatch(t, d, &fakeState{}, "verify_identity", map[string]interface{}{
				"name": "John Doe", "date_of_birth": "1990-01-15",
			})
			msg, _ := result["error"].(string)
			if !strings.Contains(msg, tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, result)
			}
		})
	}
}

func TestVerifyIdentitySuccessSetsPatientID(t *testing.T) {
	d, _, verifier, _ := newTestDispatcher(t)
	verifier.EXPECT().Verify(gomock.Any(), "John", "1990-01-15", "").
		Return(identity.Result{Outcome: identity.OutcomeVerified, PatientID: 42}, nil)

	state := &fakeState{}
	result := dispatch(t, d, state, "verify_identity", map[string]interface{}{
		"name": "John", "date_of_birth": "1990-01-15",
	})
	if result["success"] != true {
		t.Fatalf("expected success, got %v", result)
	}
	if id, ok := state.VerifiedPatientID(); !ok || id != 42 {
		t.Errorf("expected verified patient 42, got %d (verified=%v)", id, ok)
	}
}

func TestVerifyIdentityAmbiguousAsksForPhone(t *testing.T) {
	d, _, verifier, _ := newTestDispatcher(t)
	verifier.EXPECT().Verify(gomock.Any(), "John", "1990-01-15", "").
		Return(identity.Result{Outcome: identity.OutcomeAmbiguousNeedsPhone, Candidates: []int{1, 2}}, nil)

	state := &fakeState{}
	result := dispatch(t, d, state, "verify_identity", map[string]interface{}{
		"name": "John", "date_of_birth": "1990-01-15",
	})
	if result["need_phone"] != true {
		t.Errorf("expected need_phone, got %v", result)
	}
	if _, ok := state.VerifiedPatientID(); ok {
		t.Error("ambiguous result must not set a verified patient id")
	}
}

func TestVerifyIdentityInvalidDate(t *testing.T) {
	d, _, verifier, _ := newTestDispatcher(t)
	verifier.EXPECT().Verify(gomock.Any(), "John", "invalid", "").
		Return(identity.Result{}, identity.ErrInvalidDate)

	result := dispatch(t, d, &fakeState{}, "verify_identity", map[string]interface{}{
		"name": "John", "date_of_birth": "invalid",
	})
	if result["error"] != "Invalid date format." {
		t.Errorf("expected invalid date error, got %v", result)
	}
}

func TestGetProviders(t *testing.T) {
	d, clinic, _, _ := newTestDispatcher(t)
	clinic.EXPECT().ListProviders(gomock.Any()).Return([]oscar.Provider{
		{ProviderNo: "123", FirstName: "Jane", LastName: "Smith"},
	}, nil)

	result := dispatch(t, d, &fakeState{}, "get_providers", map[string]interface{}{})
	providers, _ := result["providers"].([]interface{})
	if len(providers) != 1 {
		t.Fatalf("expected 1 provider, got %v", result)
	}
	p := providers[0].(map[string]interface{})
	if p["provider_no"] != "123" || p["name"] != "Jane Smith" {
		t.Errorf("unexpected provider entry: %v", p)
	}
}

func TestGetDaySchedule(t *testing.T) {
	d, clinic, _, _ := newTestDispatcher(t)
	clinic.EXPECT().GetDayAppointments(gomock.Any(), "123", "2025-01-01").Return([]oscar.Appointment{
		{StartTime: "10:00 AM"},
	}, nil)

	result := dispatch(t, d, &fakeState{}, "get_day_schedule", map[string]interface{}{
		"provider_no": "123", "date": "2025-01-01",
	})
	booked, _ := result["booked_appointments"].([]interface{})
	if len(booked) != 1 || booked[0].(map[string]interface{})["startTime"] != "10:00 AM" {
		t.Errorf("unexpected booked appointments: %v", result)
	}
	note, _ := result["note"].(string)
	if !strings.Contains(note, "9am-5pm") {
		t.Errorf("expected clinic-hours note, got %q", note)
	}
}

func TestGetMyAppointmentsUsesVerifiedID(t *testing.T) {
	d, clinic, _, _ := newTestDispatcher(t)
	clinic.EXPECT().GetPatientAppointments(gomock.Any(), 42).Return([]oscar.Appointment{{ID: 1}}, nil)

	state := &fakeState{patientID: 42, verified: true}
	result := dispatch(t, d, state, "get_my_appointments", map[string]interface{}{})
	appointments, _ := result["appointments"].([]interface{})
	if len(appointments) != 1 {
		t.Errorf("expected 1 appointment, got %v", result)
	}
}

func TestBookAppointment(t *testing.T) {
	d, clinic, _, _ := newTestDispatcher(t)
	clinic.EXPECT().
		CreateAppointment(gomock.Any(), 42, "123", "2025-01-01", "10:00", 15, "checkup").
		Return(&oscar.Appointment{ID: 99}, nil)

	state := &fakeState{patientID: 42, verified: true}
	result := dispatch(t, d, state, "book_appointment", map[string]interface{}{
		"provider_no": "123", "date": "2025-01-01", "time": "10:00", "reason": "checkup",
	})
	if result["success"] != true {
		t.Fatalf("expected success, got %v", result)
	}
	appointment, _ := result["appointment"].(map[string]interface{})
	if appointment["id"] != float64(99) {
		t.Errorf("expected appointment id 99, got %v", appointment)
	}
}

func TestBookAppointmentRejected(t *testing.T) {
	d, clinic, _, _ := newTestDispatcher(t)
	// A nil appointment with no error means the API rejected the slot.
	clinic.EXPECT().
		CreateAppointment(gomock.Any(), 42, "", "2025-01-01", "10:00", 15, "").
		Return(nil, nil)

	state := &fakeState{patientID: 42, verified: true}
	result := dispatch(t, d, state, "book_appointment", map[string]interface{}{
		"date": "2025-01-01", "time": "10:00",
	})
	msg, _ := result["error"].(string)
	if !strings.Contains(msg, "Failed to book") {
		t.Errorf("expected booking failure, got %v", result)
	}
}

func TestCancelAppointment(t *testing.T) {
	d, clinic, _, _ := newTestDispatcher(t)
	gomock.InOrder(
		clinic.EXPECT().CancelAppointment(gomock.Any(), 99).Return(true, nil),
		clinic.EXPECT().CancelAppointment(gomock.Any(), 99).Return(false, nil),
	)

	state := &fakeState{patientID: 42, verified: true}
	args := map[string]interface{}{"appointment_id": float64(99)}

	result := dispatch(t, d, state, "cancel_appointment", args)
	if result["success"] != true {
		t.Errorf("expected success, got %v", result)
	}

	result = dispatch(t, d, state, "cancel_appointment", args)
	msg, _ := result["error"].(string)
	if !strings.Contains(msg, "Failed to cancel") {
		t.Errorf("expected cancel failure, got %v", result)
	}
}

func TestTransferToStaffNotConfigured(t *testing.T) {
	d, _, _, control := newTestDispatcher(t)
	control.EXPECT().CanTransfer().Return(false)

	result := dispatch(t, d, &fakeState{}, "transfer_to_staff", map[string]interface{}{})
	msg, _ := result["error"].(string)
	if !strings.Contains(msg, "not available") {
		t.Errorf("expected transfer unavailable error, got %v", result)
	}
}

func TestEndCallNotConfigured(t *testing.T) {
	d, _, _, control := newTestDispatcher(t)
	control.EXPECT().CanEndCall().Return(false)

	result := dispatch(t, d, &fakeState{}, "end_call", map[string]interface{}{})
	msg, _ := result["error"].(string)
	if !strings.Contains(msg, "Cannot end call") {
		t.Errorf("expected end-call error, got %v", result)
	}
}

func TestTransferAcknowledgesThenFiresAsync(t *testing.T) {
	d, _, _, control := newTestDispatcher(t)

	transferred := make(chan string, 1)
	control.EXPECT().CanTransfer().Return(true)
	control.EXPECT().TransferCall(gomock.Any(), "CA123").DoAndReturn(
		func(_ context.Context, callSID string) error {
			transferred <- callSID
			return nil
		})

	result := dispatch(t, d, &fakeState{callSID: "CA123"}, "transfer_to_staff", map[string]interface{}{})
	if result["success"] != true {
		t.Fatalf("expected immediate acknowledgement, got %v", result)
	}

	select {
	case sid := <-transferred:
		if sid != "CA123" {
			t.Errorf("transferred wrong call: %s", sid)
		}
	case <-time.After(time.Second):
		t.Fatal("transfer never fired")
	}
}

func TestEndCallAcknowledgesThenFiresAsync(t *testing.T) {
	d, _, _, control := newTestDispatcher(t)

	ended := make(chan struct{})
	control.EXPECT().CanEndCall().Return(true)
	control.EXPECT().EndCall(gomock.Any(), "CA456").DoAndReturn(
		func(context.Context, string) error {
			close(ended)
			return nil
		})

	result := dispatch(t, d, &fakeState{callSID: "CA456"}, "end_call", map[string]interface{}{})
	if result["success"] != true {
		t.Fatalf("expected immediate acknowledgement, got %v", result)
	}

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("end call never fired")
	}
}
