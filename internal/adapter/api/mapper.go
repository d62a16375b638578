package api

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/printandread/shelf/internal/domain"
)

// uploadedOn layouts: the server sends a zone-less local date-time with
// optional fractional seconds; some deployments append an offset.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func MapBranch(d BranchDTO) domain.Branch {
	return domain.Branch{ID: d.ID, Name: d.Name, Code: d.Code}
}

func MapBranches(dtos []BranchDTO) []domain.Branch {
	out := make([]domain.Branch, len(dtos))
	for i, d := range dtos {
		out[i] = MapBranch(d)
	}
	return out
}

func MapRegulation(d RegulationDTO) domain.Regulation {
	return domain.Regulation{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		StartYear:   d.StartYear,
		EndYear:     d.EndYear,
		Description: d.Description,
	}
}

func MapRegulations(dtos []RegulationDTO) []domain.Regulation {
	out := make([]domain.Regulation, len(dtos))
	for i, d := range dtos {
		out[i] = MapRegulation(d)
	}
	return out
}

func MapYears(dtos []YearDTO) []domain.Year {
	out := make([]domain.Year, len(dtos))
	for i, d := range dtos {
		out[i] = domain.Year{ID: d.ID, YearNumber: d.YearNumber}
	}
	return out
}

func MapSemesters(dtos []SemesterDTO) []domain.Semester {
	out := make([]domain.Semester, len(dtos))
	for i, d := range dtos {
		out[i] = domain.Semester{
			ID:          d.ID,
			SemNumber:   d.SemNumber,
			DisplayName: d.DisplayName,
			YearID:      d.YearID,
			YearNumber:  d.YearNumber,
		}
	}
	return out
}

func MapSubBranches(dtos []SubBranchDTO) []domain.SubBranch {
	out := make([]domain.SubBranch, len(dtos))
	for i, d := range dtos {
		out[i] = domain.SubBranch{
			ID:         d.ID,
			Name:       d.Name,
			Code:       d.Code,
			BranchID:   d.BranchID,
			BranchCode: d.BranchCode,
			BranchName: d.BranchName,
		}
	}
	return out
}

func MapSubject(d SubjectDTO) domain.Subject {
	return domain.Subject{
		ID:                  d.ID,
		Name:                d.Name,
		Code:                d.Code,
		BranchCode:          d.BranchCode,
		BranchName:          d.BranchName,
		RegulationID:        d.RegulationID,
		RegulationCode:      d.RegulationCode,
		RegulationName:      d.RegulationName,
		YearNumber:          d.YearNumber,
		SemNumber:           d.SemNumber,
		SemesterDisplayName: d.SemesterDisplayName,
		SubBranchID:         d.SubBranchID,
		SubBranchCode:       d.SubBranchCode,
		SubBranchName:       d.SubBranchName,
		MaterialCount:       d.MaterialCount,
	}
}

func MapSubjects(dtos []SubjectDTO) []domain.Subject {
	out := make([]domain.Subject, len(dtos))
	for i, d := range dtos {
		out[i] = MapSubject(d)
	}
	return out
}

func MapMaterial(d MaterialDTO) domain.Material {
	return domain.Material{
		ID:           d.ID,
		Title:        d.Title,
		MaterialType: d.MaterialType,
		URL:          d.CloudinaryURL,
		UploadedOn:   parseTime(d.UploadedOn),
		SubjectName:  d.SubjectName,
		SubjectID:    d.SubjectID,
	}
}

func MapMaterials(dtos []MaterialDTO) []domain.Material {
	out := make([]domain.Material, len(dtos))
	for i, d := range dtos {
		out[i] = MapMaterial(d)
	}
	return out
}

func MapSearchResult(query string, d SearchResultDTO) domain.SearchResult {
	return domain.SearchResult{
		Query:       query,
		Subjects:    MapSubjects(d.Subjects),
		Materials:   MapMaterials(d.Materials),
		Branches:    MapBranches(d.Branches),
		Regulations: MapRegulations(d.Regulations),
	}
}

// decodeError builds an APIError from a non-2xx body. Field errors are
// appended to the message in field order.
func decodeError(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{Status: status}

	var dto ErrorDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if len(apiErr.Message) > 200 {
			apiErr.Message = apiErr.Message[:200]
		}
		return apiErr
	}

	apiErr.Message = dto.Message
	if apiErr.Message == "" {
		apiErr.Message = dto.Error
	}
	if len(dto.ValidationErrors) > 0 {
		fields := slices.Sorted(maps.Keys(dto.ValidationErrors))
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f + ": " + dto.ValidationErrors[f]
		}
		apiErr.Message += " (" + strings.Join(parts, "; ") + ")"
	}
	return apiErr
}
