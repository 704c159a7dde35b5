package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mwd-agent/internal/client/drive"
	"mwd-agent/internal/client/notion"
	"mwd-agent/internal/model"
)

// Researcher covers the Perplexity-backed operations.
type Researcher interface {
	ResearchTopic(ctx context.Context, topic, depth string) model.GenResult
	ResearchCompetitors(ctx context.Context, company string, competitors []string, industry string) model.GenResult
	DraftClientEmail(ctx context.Context, emailContext, emailType, clientName string) model.GenResult
}

// Strategist produces the four strategy deliverables.
type Strategist interface {
	Branding(ctx context.Context, client map[string]any) model.GenResult
	Website(ctx context.Context, client map[string]any) model.GenResult
	Social(ctx context.Context, client map[string]any) model.GenResult
	Copywriting(ctx context.Context, client map[string]any) model.GenResult
}

// TeamDrafter drafts internal team messages.
type TeamDrafter interface {
	DraftTeamMessage(ctx context.Context, msgContext, msgType, tone string) model.GenResult
}

// NoteTaker turns transcripts into structured meeting notes.
type NoteTaker interface {
	GenerateMeetingNotes(ctx context.Context, transcript string, participants []string) model.GenResult
}

// Workspace covers the Notion operations the dispatcher can reach.
type Workspace interface {
	CreateProjectPage(ctx context.Context, databaseID string, project map[string]any) notion.Result
	UpdateProjectStatus(ctx context.Context, pageID, status, notes string) notion.Result
	QueryDatabase(ctx context.Context, databaseID string, filter, sorts any) notion.Result
	CreateMeetingNotes(ctx context.Context, databaseID string, meeting map[string]any) notion.Result
	Search(ctx context.Context, query, filterType string) notion.Result
	WorkspaceOverview(ctx context.Context) notion.Result
	CreateClientPortal(ctx context.Context, parentPageID string, client model.IntakeData) notion.Result
	ProjectsDatabase() string
	MeetingsDatabase() string
	PortalsPage() string
}

// DriveService covers the Google Drive operations.
type DriveService interface {
	CreateFolder(ctx context.Context, name, parentID string) drive.Result
	CreateProjectStructure(ctx context.Context, projectName, parentID string) drive.Result
	CreateDocument(ctx context.Context, title, parentID string) drive.Result
}

// Dispatcher maps planned actions onto downstream integrations. Every
// dependency is injected so tests can substitute counting mocks.
type Dispatcher struct {
	research  Researcher
	strategy  Strategist
	drafter   TeamDrafter
	notes     NoteTaker
	workspace Workspace
	drive     DriveService
	logger    *zap.Logger
}

func NewDispatcher(research Researcher, strategy Strategist, drafter TeamDrafter,
	notes NoteTaker, workspace Workspace, driveSvc DriveService, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		research:  research,
		strategy:  strategy,
		drafter:   drafter,
		notes:     notes,
		workspace: workspace,
		drive:     driveSvc,
		logger:    logger,
	}
}

// Execute runs the action list sequentially and returns one result per
// action, in the original order. Actions are independent: an unknown type
// or a downstream failure yields a failure entry and the batch continues.
func (d *Dispatcher) Execute(ctx context.Context, actions []model.Action) []model.ActionResult {
	results := make([]model.ActionResult, 0, len(actions))
	for _, action := range actions {
		res := d.dispatch(ctx, action)
		if !res.Success {
			d.logger.Warn("action failed",
				zap.String("action", res.Action),
				zap.String("error", res.Error))
		}
		results = append(results, res)
	}
	return results
}

func (d *Dispatcher) dispatch(ctx context.Context, action model.Action) (res model.ActionResult) {
	res.Action = string(action.Type)
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Error = fmt.Sprintf("panic in action %s: %v", action.Type, r)
			res.Result = nil
		}
	}()

	params := action.Params
	switch action.Type {
	case model.ActionResearch:
		return d.envelope(action, d.research.ResearchTopic(ctx,
			stringParam(params, "topic"), stringParam(params, "depth")))
	case model.ActionCompetitors:
		return d.envelope(action, d.research.ResearchCompetitors(ctx,
			stringParam(params, "company"), stringSliceParam(params, "competitors"),
			stringParam(params, "industry")))
	case model.ActionBranding:
		return d.envelope(action, d.strategy.Branding(ctx, params))
	case model.ActionWebsite:
		return d.envelope(action, d.strategy.Website(ctx, params))
	case model.ActionSocial:
		return d.envelope(action, d.strategy.Social(ctx, params))
	case model.ActionCopywriting:
		return d.envelope(action, d.strategy.Copywriting(ctx, params))
	case model.ActionClientEmail:
		return d.envelope(action, d.research.DraftClientEmail(ctx,
			stringParam(params, "context"), stringParamDefault(params, "email_type", "update"),
			stringParam(params, "client_name")))
	case model.ActionMeetingNotes:
		return d.envelope(action, d.notes.GenerateMeetingNotes(ctx,
			stringParam(params, "transcript"), stringSliceParam(params, "participants")))
	case model.ActionTeamMessage:
		return d.envelope(action, d.drafter.DraftTeamMessage(ctx,
			stringParam(params, "context"), stringParamDefault(params, "message_type", "update"),
			stringParamDefault(params, "tone", "professional")))
	case model.ActionNotion:
		return d.dispatchNotion(ctx, action)
	case model.ActionGoogleDrive:
		return d.dispatchDrive(ctx, action)
	case model.ActionClientPortal:
		parent := stringParam(params, "parent_page_id")
		if parent == "" {
			parent = d.workspace.PortalsPage()
		}
		client := model.IntakeData{
			CompanyName:  stringParamDefault(params, "company_name", "New Client"),
			ContactName:  stringParam(params, "contact_name"),
			ContactEmail: stringParam(params, "contact_email"),
			Industry:     stringParam(params, "industry"),
			KeyServices:  stringSliceParam(params, "services"),
			Raw:          params,
		}
		return notionEnvelope(action, d.workspace.CreateClientPortal(ctx, parent, client))
	default:
		return model.ActionResult{
			Action:  string(action.Type),
			Success: false,
			Error:   fmt.Sprintf("%v: %s", model.ErrUnknownAction, action.Type),
		}
	}
}

func (d *Dispatcher) dispatchNotion(ctx context.Context, action model.Action) model.ActionResult {
	params := action.Params
	op := stringParam(params, "operation")
	switch op {
	case "create_project":
		db := stringParamDefault(params, "database_id", d.workspace.ProjectsDatabase())
		project, _ := params["project_data"].(map[string]any)
		return notionEnvelope(action, d.workspace.CreateProjectPage(ctx, db, project))
	case "search":
		return notionEnvelope(action, d.workspace.Search(ctx,
			stringParam(params, "query"), stringParam(params, "filter_type")))
	case "query_database":
		db := stringParamDefault(params, "database_id", d.workspace.ProjectsDatabase())
		return notionEnvelope(action, d.workspace.QueryDatabase(ctx, db, params["filters"], params["sorts"]))
	case "update_status":
		return notionEnvelope(action, d.workspace.UpdateProjectStatus(ctx,
			stringParam(params, "page_id"), stringParam(params, "status"),
			stringParam(params, "notes")))
	case "create_meeting_notes":
		db := stringParamDefault(params, "database_id", d.workspace.MeetingsDatabase())
		meeting, _ := params["meeting_data"].(map[string]any)
		return notionEnvelope(action, d.workspace.CreateMeetingNotes(ctx, db, meeting))
	case "workspace_overview":
		return notionEnvelope(action, d.workspace.WorkspaceOverview(ctx))
	default:
		return model.ActionResult{
			Action:  string(action.Type),
			Success: false,
			Error:   fmt.Sprintf("unknown Notion operation: %s", op),
		}
	}
}

func (d *Dispatcher) dispatchDrive(ctx context.Context, action model.Action) model.ActionResult {
	params := action.Params
	switch op := stringParam(params, "operation"); op {
	case "create_folder":
		return driveEnvelope(action, d.drive.CreateFolder(ctx,
			stringParam(params, "name"), stringParam(params, "parent_id")))
	case "create_project_structure":
		return driveEnvelope(action, d.drive.CreateProjectStructure(ctx,
			stringParam(params, "project_name"), stringParam(params, "parent_id")))
	case "create_document":
		return driveEnvelope(action, d.drive.CreateDocument(ctx,
			stringParam(params, "title"), stringParam(params, "parent_id")))
	default:
		return model.ActionResult{
			Action:  string(action.Type),
			Success: false,
			Error:   fmt.Sprintf("unknown Drive operation: %s", op),
		}
	}
}

func (d *Dispatcher) envelope(action model.Action, res model.GenResult) model.ActionResult {
	return model.ActionResult{
		Action:  string(action.Type),
		Success: res.Success,
		Result:  res,
		Error:   res.Error,
	}
}

func notionEnvelope(action model.Action, res notion.Result) model.ActionResult {
	return model.ActionResult{
		Action:  string(action.Type),
		Success: res.Success,
		Result:  res,
		Error:   res.Error,
	}
}

func driveEnvelope(action model.Action, res drive.Result) model.ActionResult {
	return model.ActionResult{
		Action:  string(action.Type),
		Success: res.Success,
		Result:  res,
		Error:   res.Error,
	}
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func stringParamDefault(params map[string]any, key, def string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return def
}

func stringSliceParam(params map[string]any, key string) []string {
	items, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
