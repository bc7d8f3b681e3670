package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/logger"

	"gorm.io/datatypes"
)

// ToolService implements the tool maintenance actions of the admin API.
type ToolService interface {
	List(ctx context.Context, status string) (*dto.ToolListResponse, error)
	CheckExist(ctx context.Context, names []string) (dto.CheckExistResponse, error)
	FindAutoGenerated(ctx context.Context) (*dto.ToolListResponse, error)
	DeleteTools(ctx context.Context, ids []string) (*dto.DeleteToolsResponse, error)
	DeleteTool(ctx context.Context, id string) (*dto.ToolUpdateResponse, error)
	CleanupAuto(ctx context.Context) (*dto.DeleteToolsResponse, error)
	RefreshDisplay(ctx context.Context, id string) (*dto.ToolUpdateResponse, error)
	UpdateCompany(ctx context.Context, id string, data dto.CompanyData) (*dto.ToolUpdateResponse, error)
	QuickFixDisplay(ctx context.Context) (*dto.BulkToolUpdateResponse, error)
	UpdateMissingCompany(ctx context.Context) (*dto.BulkToolUpdateResponse, error)
}

// NewToolService creates a new tool service.
func NewToolService(toolRepo repository.ToolRepository, newsRepo repository.NewsRepository, rankingRepo repository.RankingRepository, log *logger.Logger) ToolService {
	return &toolService{
		toolRepo:    toolRepo,
		newsRepo:    newsRepo,
		rankingRepo: rankingRepo,
		logger:      log,
	}
}

type toolService struct {
	toolRepo    repository.ToolRepository
	newsRepo    repository.NewsRepository
	rankingRepo repository.RankingRepository
	logger      *logger.Logger
}

// List returns all tools, or those with the given status.
func (s *toolService) List(ctx context.Context, status string) (*dto.ToolListResponse, error) {
	var (
		tools []entity.Tool
		err   error
	)
	if status == "" {
		tools, err = s.toolRepo.FindAll(ctx)
	} else {
		if !entity.ToolStatus(status).Valid() {
			return nil, invalidf("unknown tool status %q", status)
		}
		tools, err = s.toolRepo.FindByStatus(ctx, entity.ToolStatus(status))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return toolList(tools), nil
}

// CheckExist looks each name up by slug and by case-insensitive name.
func (s *toolService) CheckExist(ctx context.Context, names []string) (dto.CheckExistResponse, error) {
	results := make(dto.CheckExistResponse, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		bySlug, err := s.findOptional(ctx, s.toolRepo.FindBySlug, name)
		if err != nil {
			return nil, err
		}
		byName, err := s.findOptional(ctx, s.toolRepo.FindByName, name)
		if err != nil {
			return nil, err
		}

		existence := dto.ToolExistence{FoundBySlug: bySlug != nil, FoundByName: byName != nil}
		if match := firstTool(bySlug, byName); match != nil {
			summary := dto.NewToolSummary(*match)
			existence.Tool = &summary
		}
		results[name] = existence
	}
	return results, nil
}

// FindAutoGenerated lists tools created automatically by ingestion.
func (s *toolService) FindAutoGenerated(ctx context.Context) (*dto.ToolListResponse, error) {
	tools, err := s.autoTools(ctx)
	if err != nil {
		return nil, err
	}
	return toolList(tools), nil
}

// DeleteTools deletes each tool, collecting per-tool failures instead of aborting.
func (s *toolService) DeleteTools(ctx context.Context, ids []string) (*dto.DeleteToolsResponse, error) {
	if len(ids) == 0 {
		return nil, invalidf("toolIds array is required")
	}

	resp := &dto.DeleteToolsResponse{
		Success:        true,
		DeletedTools:   []dto.ToolSummary{},
		Errors:         []dto.ToolError{},
		TotalRequested: len(ids),
	}
	for _, id := range ids {
		tool, warning, err := s.deleteTool(ctx, id)
		if err != nil {
			resp.Errors = append(resp.Errors, dto.ToolError{ToolID: id, Error: err.Error()})
			continue
		}
		resp.DeletedTools = append(resp.DeletedTools, dto.NewToolSummary(*tool))
		if warning != "" {
			resp.Warnings = append(resp.Warnings, warning)
		}
	}
	resp.Message = fmt.Sprintf("Deleted %d of %d tools", len(resp.DeletedTools), len(ids))
	return resp, nil
}

// DeleteTool deletes a single tool.
func (s *toolService) DeleteTool(ctx context.Context, id string) (*dto.ToolUpdateResponse, error) {
	if id == "" {
		return nil, invalidf("id is required")
	}
	tool, warning, err := s.deleteTool(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ToolUpdateResponse{
		Success: true,
		Message: fmt.Sprintf("Deleted tool %s", tool.Name),
		Tool:    dto.NewToolSummary(*tool),
	}
	if warning != "" {
		resp.Warnings = []string{warning}
	}
	return resp, nil
}

// CleanupAuto deletes every auto-generated tool.
func (s *toolService) CleanupAuto(ctx context.Context) (*dto.DeleteToolsResponse, error) {
	tools, err := s.autoTools(ctx)
	if err != nil {
		return nil, err
	}
	if len(tools) == 0 {
		return &dto.DeleteToolsResponse{
			Success:      true,
			Message:      "No auto-generated tools found",
			DeletedTools: []dto.ToolSummary{},
			Errors:       []dto.ToolError{},
		}, nil
	}

	ids := make([]string, 0, len(tools))
	for _, t := range tools {
		ids = append(ids, t.ID)
	}
	return s.DeleteTools(ctx, ids)
}

// RefreshDisplay fills an empty display name from the tool name.
func (s *toolService) RefreshDisplay(ctx context.Context, id string) (*dto.ToolUpdateResponse, error) {
	tool, err := s.findTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if tool.DisplayName == "" {
		tool.DisplayName = tool.Name
		if err := s.toolRepo.Save(ctx, tool); err != nil {
			return nil, fmt.Errorf("failed to save tool %s: %w", id, err)
		}
	}
	return &dto.ToolUpdateResponse{
		Success: true,
		Message: fmt.Sprintf("Refreshed display data for %s", tool.Name),
		Tool:    dto.NewToolSummary(*tool),
	}, nil
}

// UpdateCompany merges the non-empty fields of data into the tool's company info.
func (s *toolService) UpdateCompany(ctx context.Context, id string, data dto.CompanyData) (*dto.ToolUpdateResponse, error) {
	tool, err := s.findTool(ctx, id)
	if err != nil {
		return nil, err
	}

	info := tool.Info.Data()
	info.Company = mergeCompany(info.Company, data)
	if err := info.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}
	tool.Info = datatypes.NewJSONType(info)
	if err := s.toolRepo.Save(ctx, tool); err != nil {
		return nil, fmt.Errorf("failed to save tool %s: %w", id, err)
	}

	s.logger.Info("Tool company updated", logger.StringField("tool_id", id))
	return &dto.ToolUpdateResponse{
		Success: true,
		Message: fmt.Sprintf("Updated company data for %s", tool.Name),
		Tool:    dto.NewToolSummary(*tool),
	}, nil
}

// QuickFixDisplay sets the display name of tools whose display name is empty or equal to their id.
func (s *toolService) QuickFixDisplay(ctx context.Context) (*dto.BulkToolUpdateResponse, error) {
	return s.bulkUpdate(ctx, "display names", func(t *entity.Tool) bool {
		if t.DisplayName != "" && t.DisplayName != t.ID {
			return false
		}
		t.DisplayName = t.Name
		return true
	})
}

// UpdateMissingCompany fills empty company info from the tool's own name and website.
func (s *toolService) UpdateMissingCompany(ctx context.Context) (*dto.BulkToolUpdateResponse, error) {
	return s.bulkUpdate(ctx, "company data", func(t *entity.Tool) bool {
		info := t.Info.Data()
		if !info.Company.IsEmpty() {
			return false
		}
		info.Company = entity.CompanyInfo{Name: t.Name, Website: info.Website}
		t.Info = datatypes.NewJSONType(info)
		return true
	})
}

func (s *toolService) bulkUpdate(ctx context.Context, what string, fix func(t *entity.Tool) bool) (*dto.BulkToolUpdateResponse, error) {
	tools, err := s.toolRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	updated := []dto.ToolSummary{}
	for i := range tools {
		tool := &tools[i]
		if !fix(tool) {
			continue
		}
		if err := s.toolRepo.Save(ctx, tool); err != nil {
			return nil, fmt.Errorf("failed to save tool %s: %w", tool.ID, err)
		}
		updated = append(updated, dto.NewToolSummary(*tool))
	}

	s.logger.Info("Bulk tool update completed", logger.StringField("fix", what), logger.IntField("updated", len(updated)))
	return &dto.BulkToolUpdateResponse{
		Success: true,
		Message: fmt.Sprintf("Updated %s for %d tools", what, len(updated)),
		Updated: len(updated),
		Tools:   updated,
	}, nil
}

// deleteTool strips news mentions of the tool and deletes it. Ranking periods keep their
// snapshot; a reference from a stored period is reported as a warning.
func (s *toolService) deleteTool(ctx context.Context, id string) (*entity.Tool, string, error) {
	tool, err := s.findTool(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var warning string
	refs, err := s.rankingRepo.CountToolReferences(ctx, tool.ID)
	if err != nil {
		s.logger.Warn("Failed to count ranking references", logger.ErrorField(err), logger.StringField("tool_id", tool.ID))
	} else if refs > 0 {
		warning = fmt.Sprintf("tool %s is referenced by %d ranking period(s)", tool.ID, refs)
	}

	removed, err := s.newsRepo.RemoveToolMention(ctx, tool.ID, tool.Slug, tool.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to remove news mentions of %s: %w", tool.ID, err)
	}
	if err := s.toolRepo.Delete(ctx, tool.ID); err != nil {
		return nil, "", fmt.Errorf("failed to delete tool %s: %w", tool.ID, err)
	}

	s.logger.Info("Tool deleted",
		logger.StringField("tool_id", tool.ID),
		logger.Field("news_updated", removed),
	)
	return tool, warning, nil
}

func (s *toolService) findTool(ctx context.Context, id string) (*entity.Tool, error) {
	if id == "" {
		return nil, invalidf("toolId is required")
	}
	tool, err := s.toolRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", id, err)
	}
	return tool, nil
}

func (s *toolService) findOptional(ctx context.Context, find func(context.Context, string) (*entity.Tool, error), key string) (*entity.Tool, error) {
	tool, err := find(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up tool %q: %w", key, err)
	}
	return tool, nil
}

func (s *toolService) autoTools(ctx context.Context) ([]entity.Tool, error) {
	tools, err := s.toolRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	var auto []entity.Tool
	for _, t := range tools {
		if isAutoGenerated(t) {
			auto = append(auto, t)
		}
	}
	return auto, nil
}

func isAutoGenerated(t entity.Tool) bool {
	return strings.HasPrefix(t.ID, "auto_") ||
		strings.Contains(t.Slug, "auto-generated") ||
		strings.Contains(t.Name, "(Auto)")
}

func mergeCompany(c entity.CompanyInfo, d dto.CompanyData) entity.CompanyInfo {
	if d.Name != "" {
		c.Name = d.Name
	}
	if d.Website != "" {
		c.Website = d.Website
	}
	if d.Founded != nil {
		c.Founded = d.Founded
	}
	if d.Employees != nil {
		c.Employees = d.Employees
	}
	if d.Funding != nil {
		c.Funding = d.Funding
	}
	if d.Valuation != nil {
		c.Valuation = d.Valuation
	}
	if d.AcquiredBy != "" {
		c.AcquiredBy = d.AcquiredBy
	}
	return c
}

func firstTool(tools ...*entity.Tool) *entity.Tool {
	for _, t := range tools {
		if t != nil {
			return t
		}
	}
	return nil
}

func toolList(tools []entity.Tool) *dto.ToolListResponse {
	resp := &dto.ToolListResponse{Tools: make([]dto.ToolSummary, 0, len(tools))}
	for _, t := range tools {
		resp.Tools = append(resp.Tools, dto.NewToolSummary(t))
	}
	resp.Total = len(resp.Tools)
	return resp
}
