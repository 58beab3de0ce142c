package tools

import "clinic-server/internal/voicecall/engine"

// Definitions returns the fixed tool set advertised to the realtime engine at
// session bootstrap. Names here must match the dispatch table exactly.
func Definitions() []engine.ToolDefinition {
	return []engine.ToolDefinition{
		{
			Name:        "verify_identity",
			Description: "Verify the caller's identity against clinic records using their full name, date of birth, and optionally the last digits of their phone number. Must succeed before accessing any patient records.",
			Parameters: objectSchema(map[string]interface{}{
				"name":          stringProp("The caller's full name as they stated it"),
				"date_of_birth": stringProp("Date of birth in YYYY-MM-DD format"),
				"phone":         stringProp("Last digits of the caller's phone number, only when asked to disambiguate"),
			}, "name", "date_of_birth"),
		},
		{
			Name:        "get_providers",
			Description: "List the clinic's providers with their provider numbers.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "get_day_schedule",
			Description: "List a provider's booked appointment times for one day, so free slots can be offered.",
			Parameters: objectSchema(map[string]interface{}{
				"provider_no": stringProp("Provider number from get_providers"),
				"date":        stringProp("Date in YYYY-MM-DD format"),
			}, "provider_no", "date"),
		},
		{
			Name:        "get_my_appointments",
			Description: "List the verified caller's upcoming appointments. Requires prior identity verification.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "book_appointment",
			Description: "Book an appointment for the verified caller. Requires prior identity verification.",
			Parameters: objectSchema(map[string]interface{}{
				"provider_no": stringProp("Provider number from get_providers"),
				"date":        stringProp("Date in YYYY-MM-DD format"),
				"time":        stringProp("Start time in 24-hour HH:MM format"),
				"duration":    map[string]interface{}{"type": "integer", "description": "Duration in minutes, default 15"},
				"reason":      stringProp("Short reason for the visit"),
			}, "provider_no", "date", "time"),
		},
		{
			Name:        "cancel_appointment",
			Description: "Cancel one of the verified caller's appointments by its id from get_my_appointments. Requires prior identity verification.",
			Parameters: objectSchema(map[string]interface{}{
				"appointment_id": map[string]interface{}{"type": "integer", "description": "Appointment id to cancel"},
			}, "appointment_id"),
		},
		{
			Name:        "transfer_to_staff",
			Description: "Transfer the call to clinic staff. Say goodbye to the caller first; the transfer happens a moment later.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "end_call",
			Description: "Hang up the call when the caller is done. Say goodbye first; the hang-up happens a moment later.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
	}
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}
