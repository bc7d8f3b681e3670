package dto

import (
	"ai-power-rankings/internal/entity"
)

// Tools actions.
const (
	ToolActionList                 = "list"
	ToolActionCheckExist           = "check-exist"
	ToolActionCleanupAuto          = "cleanup-auto"
	ToolActionDelete               = "delete"
	ToolActionRefreshDisplay       = "refresh-display"
	ToolActionUpdateCompany        = "update-company"
	ToolActionQuickFixDisplay      = "quick-fix-display"
	ToolActionUpdateMissingCompany = "update-missing-company"
)

// ToolSummary is the admin view of a tool.
type ToolSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName,omitempty"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

// NewToolSummary maps a tool to its admin view.
func NewToolSummary(t entity.Tool) ToolSummary {
	return ToolSummary{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		DisplayName: t.DisplayName,
		Category:    string(t.Category),
		Status:      string(t.Status),
	}
}

// CompanyData is a partial company update; empty fields are left unchanged.
type CompanyData struct {
	Name       string   `json:"name"`
	Website    string   `json:"website"`
	Founded    *int     `json:"founded"`
	Employees  *int     `json:"employees"`
	Funding    *float64 `json:"funding"`
	Valuation  *float64 `json:"valuation"`
	AcquiredBy string   `json:"acquired_by"`
}

// ToolsActionRequest is the body of POST and PUT /tools.
type ToolsActionRequest struct {
	Action      string      `json:"action"`
	ToolIDs     []string    `json:"toolIds"`
	ToolID      string      `json:"toolId"`
	CompanyData CompanyData `json:"companyData"`
}

// ToolListResponse lists tools.
type ToolListResponse struct {
	Total int           `json:"total"`
	Tools []ToolSummary `json:"tools"`
}

// ToolExistence reports how a requested name matched.
type ToolExistence struct {
	FoundBySlug bool         `json:"foundBySlug"`
	FoundByName bool         `json:"foundByName"`
	Tool        *ToolSummary `json:"tool"`
}

// CheckExistResponse maps each requested name to its lookup result.
type CheckExistResponse map[string]ToolExistence

// ToolError is a per-tool failure of a bulk action.
type ToolError struct {
	ToolID string `json:"toolId"`
	Error  string `json:"error"`
}

// DeleteToolsResponse reports a bulk delete.
type DeleteToolsResponse struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	DeletedTools   []ToolSummary `json:"deletedTools"`
	Errors         []ToolError   `json:"errors"`
	Warnings       []string      `json:"warnings,omitempty"`
	TotalRequested int           `json:"totalRequested"`
}

// ToolUpdateResponse reports a single tool update.
type ToolUpdateResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Tool     ToolSummary `json:"tool"`
	Warnings []string    `json:"warnings,omitempty"`
}

// BulkToolUpdateResponse reports a bulk fix.
type BulkToolUpdateResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Updated int           `json:"updated"`
	Tools   []ToolSummary `json:"tools"`
}
