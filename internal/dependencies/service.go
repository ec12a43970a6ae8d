package dependencies

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
	"github.com/temirov/depctl/internal/report"
	pathutils "github.com/temirov/depctl/internal/utils/path"
)

const (
	missingRootsErrorMessageConstant  = "no project roots provided; specify --root or configure tools.dependencies.roots"
	discoveryErrorTemplateConstant    = "project discovery failed: %w"
	preflightErrorTemplateConstant    = "precondition failed: %w"
	interruptedErrorTemplateConstant  = "processing interrupted: %w"
	promptErrorTemplateConstant       = "unable to read confirmation: %w"
	missingAdapterWarningTemplate     = "no adapter registered for platform %s (%s)"
	updatePromptTemplateConstant      = "Update %s [%s] in %s? [y/N/a] "
	dryRunDetailConstant              = "dry run: would update"
	declinedDetailConstant            = "declined at prompt"
	projectsDiscoveredMessageConstant = "Discovered projects"
	projectFilteredMessageConstant    = "Skipping project outside platform filter"
	missingAdapterMessageConstant     = "No adapter registered for platform"
	projectCheckedMessageConstant     = "Checked project"
	projectUpdatedMessageConstant     = "Processed project update"
	noProjectsMessageConstant         = "No projects found"
	logFieldRootsConstant             = "roots"
	logFieldCountConstant             = "count"
	logFieldProjectConstant           = "project"
	logFieldPlatformConstant          = "platform"
	logFieldStatusConstant            = "status"
	logFieldDetailConstant            = "detail"
	serviceDiscovererMissingMessage   = "project discoverer not configured"
	serviceRegistryMissingMessage     = "adapter registry not configured"
	serviceConfirmationMissingMessage = "confirmation prompter not configured; pass --all or --dry-run"
)

var (
	// ErrDiscovererNotConfigured indicates that NewService received no discoverer.
	ErrDiscovererNotConfigured = errors.New(serviceDiscovererMissingMessage)
	// ErrRegistryNotConfigured indicates that NewService received no adapter registry.
	ErrRegistryNotConfigured = errors.New(serviceRegistryMissingMessage)
	// ErrPrompterNotConfigured indicates an interactive update without a prompter.
	ErrPrompterNotConfigured = errors.New(serviceConfirmationMissingMessage)
	// ErrNoRoots indicates that every configured root was blank.
	ErrNoRoots = errors.New(missingRootsErrorMessageConstant)
)

// ServiceDependencies bundles the collaborators of Service.
type ServiceDependencies struct {
	Discoverer ProjectDiscoverer
	Registry   AdapterRegistry
	Prompter   ConfirmationPrompter
	CIDetector CIEnvironmentDetector
	Sanitizer  *pathutils.RootPathSanitizer
	Logger     *zap.Logger
}

// CheckOptions controls a check run.
type CheckOptions struct {
	Roots     []string
	Platforms []discovery.Platform
}

// UpdateOptions controls an update run.
type UpdateOptions struct {
	Roots     []string
	Platforms []discovery.Platform
	All       bool
	DryRun    bool
}

// Service coordinates discovery, dispatch and sequential processing of projects.
type Service struct {
	discoverer ProjectDiscoverer
	registry   AdapterRegistry
	prompter   ConfirmationPrompter
	ciDetector CIEnvironmentDetector
	sanitizer  *pathutils.RootPathSanitizer
	logger     *zap.Logger
}

type dispatchedProject struct {
	project discovery.Project
	adapter platforms.Adapter
}

type executionPlan struct {
	roots    []string
	projects []dispatchedProject
	warnings []string
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if dependencies.Registry == nil {
		return nil, ErrRegistryNotConfigured
	}

	service := &Service{
		discoverer: dependencies.Discoverer,
		registry:   dependencies.Registry,
		prompter:   dependencies.Prompter,
		ciDetector: dependencies.CIDetector,
		sanitizer:  dependencies.Sanitizer,
		logger:     dependencies.Logger,
	}
	if service.ciDetector == nil {
		service.ciDetector = report.NewCIDetector()
	}
	if service.sanitizer == nil {
		service.sanitizer = pathutils.NewRootPathSanitizer()
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	return service, nil
}

// Check runs every dispatched project's check. Configuration problems, including a
// failed precondition on any project, abort the run before any project is checked.
func (service *Service) Check(executionContext context.Context, options CheckOptions) (report.CheckReport, error) {
	plan, planError := service.plan(options.Roots, options.Platforms, platforms.OperationCheck)
	if planError != nil {
		return report.CheckReport{}, planError
	}

	checkReport := report.CheckReport{
		CIEnvironment: service.ciDetector.Detect(),
		Roots:         plan.roots,
		Warnings:      plan.warnings,
		Results:       make([]platforms.CheckResult, 0, len(plan.projects)),
	}

	for _, item := range plan.projects {
		if contextError := executionContext.Err(); contextError != nil {
			return report.CheckReport{}, fmt.Errorf(interruptedErrorTemplateConstant, contextError)
		}
		result := item.adapter.Check(executionContext, item.project)
		service.logger.Info(projectCheckedMessageConstant,
			zap.String(logFieldProjectConstant, item.project.Path),
			zap.String(logFieldPlatformConstant, string(item.project.Platform)),
			zap.String(logFieldStatusConstant, string(result.Status)),
			zap.String(logFieldDetailConstant, result.Detail),
		)
		checkReport.Results = append(checkReport.Results, result)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return report.CheckReport{}, fmt.Errorf(interruptedErrorTemplateConstant, contextError)
	}

	return checkReport, nil
}

// Update updates dispatched projects one at a time. Without All each project is
// confirmed through the prompter; DryRun reports every project skipped and invokes
// no package manager.
func (service *Service) Update(executionContext context.Context, options UpdateOptions) (report.UpdateReport, error) {
	if !options.All && !options.DryRun && service.prompter == nil {
		return report.UpdateReport{}, ErrPrompterNotConfigured
	}

	plan, planError := service.plan(options.Roots, options.Platforms, platforms.OperationUpdate)
	if planError != nil {
		return report.UpdateReport{}, planError
	}

	updateReport := report.UpdateReport{
		CIEnvironment: service.ciDetector.Detect(),
		DryRun:        options.DryRun,
		Roots:         plan.roots,
		Warnings:      plan.warnings,
		Results:       make([]platforms.UpdateResult, 0, len(plan.projects)),
	}

	applyToAll := options.All
	for _, item := range plan.projects {
		if contextError := executionContext.Err(); contextError != nil {
			return report.UpdateReport{}, fmt.Errorf(interruptedErrorTemplateConstant, contextError)
		}

		result, resultError := service.updateProject(executionContext, item, options.DryRun, &applyToAll)
		if resultError != nil {
			return report.UpdateReport{}, resultError
		}
		service.logger.Info(projectUpdatedMessageConstant,
			zap.String(logFieldProjectConstant, item.project.Path),
			zap.String(logFieldPlatformConstant, string(item.project.Platform)),
			zap.String(logFieldStatusConstant, string(result.Status)),
			zap.String(logFieldDetailConstant, result.Detail),
		)
		updateReport.Results = append(updateReport.Results, result)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return report.UpdateReport{}, fmt.Errorf(interruptedErrorTemplateConstant, contextError)
	}

	return updateReport, nil
}

func (service *Service) updateProject(executionContext context.Context, item dispatchedProject, dryRun bool, applyToAll *bool) (platforms.UpdateResult, error) {
	if dryRun {
		return platforms.UpdateResult{Project: item.project, Status: platforms.UpdateStatusSkipped, Detail: dryRunDetailConstant}, nil
	}

	if !*applyToAll {
		prompt := fmt.Sprintf(updatePromptTemplateConstant, item.project.Name(), item.project.Platform, item.project.Path)
		confirmation, confirmationError := service.prompter.Confirm(prompt)
		if confirmationError != nil {
			return platforms.UpdateResult{}, fmt.Errorf(promptErrorTemplateConstant, confirmationError)
		}
		if confirmation.ApplyToAll {
			*applyToAll = true
		}
		if !confirmation.Confirmed {
			return platforms.UpdateResult{Project: item.project, Status: platforms.UpdateStatusSkipped, Detail: declinedDetailConstant}, nil
		}
	}

	return item.adapter.Update(executionContext, item.project), nil
}

func (service *Service) plan(rawRoots []string, platformFilter []discovery.Platform, operation platforms.Operation) (executionPlan, error) {
	roots := service.sanitizer.Sanitize(rawRoots)
	if len(roots) == 0 {
		return executionPlan{}, ErrNoRoots
	}

	projects, discoveryError := service.discoverer.DiscoverProjects(roots)
	if discoveryError != nil {
		return executionPlan{}, fmt.Errorf(discoveryErrorTemplateConstant, discoveryError)
	}
	service.logger.Debug(projectsDiscoveredMessageConstant, zap.Strings(logFieldRootsConstant, roots), zap.Int(logFieldCountConstant, len(projects)))
	if len(projects) == 0 {
		service.logger.Info(noProjectsMessageConstant, zap.Strings(logFieldRootsConstant, roots))
	}

	plan := executionPlan{roots: roots, projects: make([]dispatchedProject, 0, len(projects))}
	for _, project := range projects {
		if len(platformFilter) > 0 && !containsPlatform(platformFilter, project.Platform) {
			service.logger.Debug(projectFilteredMessageConstant, zap.String(logFieldProjectConstant, project.Path), zap.String(logFieldPlatformConstant, string(project.Platform)))
			continue
		}
		adapter, registered := service.registry.Lookup(project.Platform)
		if !registered {
			service.logger.Warn(missingAdapterMessageConstant, zap.String(logFieldProjectConstant, project.Path), zap.String(logFieldPlatformConstant, string(project.Platform)))
			plan.warnings = append(plan.warnings, fmt.Sprintf(missingAdapterWarningTemplate, project.Platform, project.Path))
			continue
		}
		plan.projects = append(plan.projects, dispatchedProject{project: project, adapter: adapter})
	}

	for _, item := range plan.projects {
		if preflightError := item.adapter.Preflight(item.project, operation); preflightError != nil {
			return executionPlan{}, fmt.Errorf(preflightErrorTemplateConstant, preflightError)
		}
	}

	return plan, nil
}

func containsPlatform(platformList []discovery.Platform, candidate discovery.Platform) bool {
	for _, platform := range platformList {
		if platform == candidate {
			return true
		}
	}
	return false
}
