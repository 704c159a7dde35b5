package model

import "encoding/json"

// IntakeEvent is the payload delivered by the invoice system when a client
// submits the intake form.
type IntakeEvent struct {
	EventType string         `json:"event_type"`
	EventID   string         `json:"event_id"`
	Timestamp string         `json:"timestamp"`
	Intake    IntakeData     `json:"intake_data"`
	Metadata  map[string]any `json:"invoice_system_metadata,omitempty"`
}

// IntakeData is the client intake form. Extra attributes the form may carry
// are kept in Raw so prompts see everything the client submitted.
type IntakeData struct {
	CompanyName  string         `json:"company_name"`
	ContactName  string         `json:"contact_name,omitempty"`
	ContactEmail string         `json:"contact_email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Industry     string         `json:"industry,omitempty"`
	Budget       string         `json:"budget,omitempty"`
	KeyServices  []string       `json:"key_services,omitempty"`
	Raw          map[string]any `json:"-"`
}

// UnmarshalJSON keeps every submitted attribute in Raw alongside the typed
// fields, so strategy prompts see the complete form.
func (d *IntakeData) UnmarshalJSON(b []byte) error {
	type alias IntakeData
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = IntakeData(a)
	d.Raw = raw
	return nil
}

// ClientInfo returns the prompt-facing view of the intake form.
func (d IntakeData) ClientInfo() map[string]any {
	if d.Raw != nil {
		return d.Raw
	}
	info := map[string]any{
		"company_name":  d.CompanyName,
		"contact_name":  d.ContactName,
		"contact_email": d.ContactEmail,
		"industry":      d.Industry,
		"budget":        d.Budget,
		"key_services":  d.KeyServices,
	}
	return info
}

// Assessment is the AI-generated evaluation attached to a new lead.
type Assessment struct {
	ComplexityScore       int      `json:"complexity_score"`
	EstimatedHours        int      `json:"estimated_hours"`
	RecommendedPackage    string   `json:"recommended_package"`
	Summary               string   `json:"ai_generated_summary"`
	DeliverablesGenerated []string `json:"deliverables_generated"`
}

// IntakeOutcome is returned to the invoice system after intake processing.
type IntakeOutcome struct {
	Success           bool       `json:"success"`
	EventID           string     `json:"event_id,omitempty"`
	LeadID            string     `json:"lead_id,omitempty"`
	WorkflowsRun      []string   `json:"workflows_triggered"`
	DeliverablesCount int        `json:"deliverables_count"`
	Assessment        Assessment `json:"ai_assessment"`
}

// ProjectStatusEvent is the payload for a project status transition webhook.
type ProjectStatusEvent struct {
	EventType string      `json:"event_type"`
	EventID   string      `json:"event_id"`
	Timestamp string      `json:"timestamp"`
	Project   ProjectData `json:"project_data"`
}

type ProjectData struct {
	ProjectID     string `json:"project_id"`
	LeadID        string `json:"lead_id,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	OldStatus     string `json:"old_status,omitempty"`
	NewStatus     string `json:"new_status"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// StatusOutcome lists the internal actions acknowledged for a transition.
type StatusOutcome struct {
	Success      bool     `json:"success"`
	EventID      string   `json:"event_id,omitempty"`
	ProjectID    string   `json:"project_id,omitempty"`
	NewStatus    string   `json:"new_status"`
	ActionsTaken []string `json:"actions_taken"`
}

// ContactEvent is a minimal contact-form submission.
type ContactEvent struct {
	EventID string `json:"event_id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message,omitempty"`
}

// ContactOutcome acknowledges a contact submission.
type ContactOutcome struct {
	Success bool   `json:"success"`
	EventID string `json:"event_id,omitempty"`
	LeadID  string `json:"lead_id,omitempty"`
}
