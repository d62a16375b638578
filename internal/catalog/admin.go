package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/validation"
)

// CreateBranch creates a branch and drops the cached branch list so the
// next load picks it up.
func (s *Service) CreateBranch(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = normalizeCode(req.Code)
	if err := validation.Struct(&req); err != nil {
		return domain.Branch{}, err
	}

	branch, err := s.client.CreateBranch(ctx, req)
	if err != nil {
		s.logger.Error("failed to create branch", "error", err, "code", req.Code)
		return domain.Branch{}, fmt.Errorf("create branch %s: %w", req.Code, err)
	}
	s.store.InvalidateBranches()
	s.logger.Info("created branch", "id", branch.ID, "code", branch.Code)
	return branch, nil
}

// CreateRegulation creates a regulation. The server provisions its years
// and semesters, so both the regulation and year lists are dropped.
func (s *Service) CreateRegulation(ctx context.Context, req domain.CreateRegulationRequest) (domain.Regulation, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = normalizeCode(req.Code)
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.Struct(&req); err != nil {
		return domain.Regulation{}, err
	}

	reg, err := s.client.CreateRegulation(ctx, req)
	if err != nil {
		s.logger.Error("failed to create regulation", "error", err, "code", req.Code)
		return domain.Regulation{}, fmt.Errorf("create regulation %s: %w", req.Code, err)
	}
	s.store.InvalidateRegulations()
	s.store.InvalidateYears()
	s.logger.Info("created regulation", "id", reg.ID, "code", reg.Code)
	return reg, nil
}

// CreateSubject creates a subject, indexes it and drops every subject
// listing, since it may belong to any of them.
func (s *Service) CreateSubject(ctx context.Context, req domain.CreateSubjectRequest) (domain.Subject, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = normalizeCode(req.Code)
	if err := validation.Struct(&req); err != nil {
		return domain.Subject{}, err
	}

	subject, err := s.client.CreateSubject(ctx, req)
	if err != nil {
		s.logger.Error("failed to create subject", "error", err, "code", req.Code)
		return domain.Subject{}, fmt.Errorf("create subject %s: %w", req.Code, err)
	}
	s.store.AddSubject(subject)
	s.store.ClearSubjects()
	s.logger.Info("created subject", "id", subject.ID, "code", subject.Code)
	return subject, nil
}

// UploadMaterial uploads a PDF and adds the new material to the cache.
func (s *Service) UploadMaterial(ctx context.Context, req domain.UploadMaterialRequest) (domain.Material, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.MaterialType = strings.ToLower(strings.TrimSpace(req.MaterialType))
	if err := validation.Struct(&req); err != nil {
		return domain.Material{}, err
	}
	if req.File == nil {
		return domain.Material{}, &domain.ValidationError{Field: "file", Message: "is required"}
	}
	if !strings.EqualFold(filepath.Ext(req.FileName), ".pdf") {
		return domain.Material{}, &domain.ValidationError{Field: "file", Message: "must be a PDF"}
	}

	material, err := s.client.UploadMaterial(ctx, req)
	if err != nil {
		s.logger.Error("failed to upload material", "error", err, "subjectID", req.SubjectID)
		return domain.Material{}, fmt.Errorf("upload %q: %w", req.Title, err)
	}
	if material.SubjectID == 0 {
		material.SubjectID = req.SubjectID
	}
	s.store.AddMaterial(material)
	s.logger.Info("uploaded material", "id", material.ID, "subjectID", material.SubjectID)
	return material, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
