package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mwd-agent/internal/client/tracker"
	"mwd-agent/internal/model"
)

// LeadRegistry covers the invoice-system operations the intake flow needs.
type LeadRegistry interface {
	Configured() bool
	CreateLead(ctx context.Context, intake model.IntakeData, assessment *model.Assessment) tracker.Result
	AttachDeliverable(ctx context.Context, leadID string, deliverable map[string]any) tracker.Result
}

// Deliverable workflows run for every intake, in presentation order.
var intakeWorkflows = []string{"branding", "website", "social", "copywriting"}

// Concurrent deliverable generations per intake. Keeps a single intake from
// saturating the Anthropic rate limit.
const intakeConcurrency = 2

// Intake turns a client intake submission into strategy deliverables, an
// assessment, and a lead in the invoice system.
type Intake struct {
	strategy Strategist
	leads    LeadRegistry
	logger   *zap.Logger
}

func NewIntake(strategy Strategist, leads LeadRegistry, logger *zap.Logger) *Intake {
	return &Intake{strategy: strategy, leads: leads, logger: logger}
}

// ProcessIntake generates the four strategy deliverables, assesses the
// client, and registers the lead. A failed deliverable is skipped, not
// fatal; the outcome reports what was actually generated.
func (i *Intake) ProcessIntake(ctx context.Context, event model.IntakeEvent) model.IntakeOutcome {
	clientInfo := event.Intake.ClientInfo()
	logger := i.logger.With(
		zap.String("event_id", event.EventID),
		zap.String("company", event.Intake.CompanyName))
	logger.Info("processing intake", zap.String("event_type", event.EventType))

	deliverables := make(map[string]model.GenResult, len(intakeWorkflows))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(intakeConcurrency)
	for _, workflow := range intakeWorkflows {
		g.Go(func() error {
			res := i.generate(gctx, workflow, clientInfo)
			mu.Lock()
			deliverables[workflow] = res
			mu.Unlock()
			if !res.Success {
				logger.Warn("deliverable generation failed",
					zap.String("workflow", workflow),
					zap.String("error", res.Error))
			}
			return nil
		})
	}
	_ = g.Wait()

	workflowsRun := make([]string, 0, len(intakeWorkflows))
	for _, workflow := range intakeWorkflows {
		if deliverables[workflow].Success {
			workflowsRun = append(workflowsRun, workflow)
		}
	}

	assessment := buildAssessment(event.Intake, workflowsRun)
	outcome := model.IntakeOutcome{
		Success:           true,
		EventID:           event.EventID,
		WorkflowsRun:      workflowsRun,
		DeliverablesCount: len(workflowsRun),
		Assessment:        assessment,
	}

	if !i.leads.Configured() {
		logger.Info("invoice system not configured, skipping lead creation")
		return outcome
	}
	lead := i.leads.CreateLead(ctx, event.Intake, &assessment)
	if !lead.Success {
		logger.Error("lead creation failed", zap.String("error", lead.Error))
		return outcome
	}
	outcome.LeadID = lead.LeadID
	for _, workflow := range workflowsRun {
		res := deliverables[workflow]
		attach := i.leads.AttachDeliverable(ctx, lead.LeadID, map[string]any{
			"deliverable_type": fmt.Sprintf("%s_strategy", workflow),
			"generated_at":     time.Now().UTC().Format(time.RFC3339),
			"ai_model":         res.Model,
			"content":          res.Response,
			"tokens_used":      res.Usage,
		})
		if !attach.Success {
			logger.Warn("deliverable attach failed",
				zap.String("workflow", workflow),
				zap.String("error", attach.Error))
		}
	}
	return outcome
}

func (i *Intake) generate(ctx context.Context, workflow string, client map[string]any) model.GenResult {
	switch workflow {
	case "branding":
		return i.strategy.Branding(ctx, client)
	case "website":
		return i.strategy.Website(ctx, client)
	case "social":
		return i.strategy.Social(ctx, client)
	case "copywriting":
		return i.strategy.Copywriting(ctx, client)
	default:
		return model.GenFailure(fmt.Errorf("unknown workflow %q", workflow))
	}
}

func buildAssessment(intake model.IntakeData, workflowsRun []string) model.Assessment {
	pkg := "standard"
	if len(intake.KeyServices) > 2 {
		pkg = "premium"
	}
	return model.Assessment{
		ComplexityScore:    7,
		EstimatedHours:     len(workflowsRun) * 20,
		RecommendedPackage: pkg,
		Summary: fmt.Sprintf("Client %s in %s seeking %s",
			intake.CompanyName, intake.Industry, strings.Join(intake.KeyServices, ", ")),
		DeliverablesGenerated: workflowsRun,
	}
}

// HandleProjectStatus acknowledges a project status transition. Unrecognized
// statuses are accepted with no actions.
func (i *Intake) HandleProjectStatus(ctx context.Context, event model.ProjectStatusEvent) model.StatusOutcome {
	project := event.Project
	i.logger.Info("project status changed",
		zap.String("event_id", event.EventID),
		zap.String("company", project.CompanyName),
		zap.String("old_status", project.OldStatus),
		zap.String("new_status", project.NewStatus))

	var actions []string
	switch project.NewStatus {
	case "contract_signed":
		actions = append(actions, "project_kickoff_initialized")
	case "payment_received":
		actions = append(actions, "payment_confirmed")
	case "milestone_completed":
		actions = append(actions, "milestone_acknowledged")
	case "project_completed":
		actions = append(actions, "project_archived")
	}
	return model.StatusOutcome{
		Success:      true,
		EventID:      event.EventID,
		ProjectID:    project.ProjectID,
		NewStatus:    project.NewStatus,
		ActionsTaken: actions,
	}
}

// HandleContact registers a contact-form submission as a minimal lead.
func (i *Intake) HandleContact(ctx context.Context, event model.ContactEvent) model.ContactOutcome {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	outcome := model.ContactOutcome{Success: true, EventID: event.EventID}
	if !i.leads.Configured() {
		return outcome
	}
	intake := model.IntakeData{
		CompanyName:  event.Company,
		ContactName:  event.Name,
		ContactEmail: event.Email,
		Raw: map[string]any{
			"company_name":  event.Company,
			"contact_name":  event.Name,
			"contact_email": event.Email,
			"message":       event.Message,
			"source":        "contact_form",
		},
	}
	lead := i.leads.CreateLead(ctx, intake, nil)
	if !lead.Success {
		i.logger.Error("contact lead creation failed",
			zap.String("event_id", event.EventID),
			zap.String("error", lead.Error))
		return outcome
	}
	outcome.LeadID = lead.LeadID
	return outcome
}
