package model

// ActionKind identifies one downstream capability the planner may request.
// The set is closed; the dispatcher switches over every kind explicitly.
type ActionKind string

const (
	ActionResearch     ActionKind = "RESEARCH"
	ActionCompetitors  ActionKind = "COMPETITORS"
	ActionBranding     ActionKind = "BRANDING"
	ActionWebsite      ActionKind = "WEBSITE"
	ActionSocial       ActionKind = "SOCIAL"
	ActionCopywriting  ActionKind = "COPYWRITING"
	ActionClientEmail  ActionKind = "CLIENT_EMAIL"
	ActionMeetingNotes ActionKind = "MEETING_NOTES"
	ActionTeamMessage  ActionKind = "TEAM_MESSAGE"
	ActionNotion       ActionKind = "NOTION"
	ActionGoogleDrive  ActionKind = "GOOGLE_DRIVE"
	ActionClientPortal ActionKind = "CLIENT_PORTAL"
)

// Plan is the orchestration decision returned by the planner model.
// Either DirectResponse is set (answer inline, no tools) or Actions lists
// the downstream calls to make.
type Plan struct {
	// Understanding is a one-line summary of what the user wants
	Understanding string `json:"understanding"`
	// Actions to dispatch, in order
	Actions []Action `json:"actions,omitempty"`
	// DirectResponse answers the user without invoking any tool
	DirectResponse string `json:"direct_response,omitempty"`
	// ResponsePlan hints how the responder should present action results
	ResponsePlan string `json:"response_plan,omitempty"`
}

// Direct reports whether the plan answers inline without dispatching actions.
func (p Plan) Direct() bool {
	return p.DirectResponse != ""
}

// Action is one named, parameterized request to a downstream integration.
type Action struct {
	Type   ActionKind     `json:"type"`
	Params map[string]any `json:"params,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// ActionResult is the outcome of dispatching a single action. Results are
// order-preserving and independent: one failure never blocks the rest.
type ActionResult struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}
