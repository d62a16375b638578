package validation

import (
	"errors"
	"testing"

	"github.com/printandread/shelf/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestValidatorSingleton(t *testing.T) {
	if Validator() != Validator() {
		t.Fatal("expected the same validator instance")
	}
}

func TestStructCreateRegulation(t *testing.T) {
	tests := []struct {
		name      string
		req       domain.CreateRegulationRequest
		wantField string
	}{
		{
			name: "valid active regulation",
			req:  domain.CreateRegulationRequest{Name: "Regulation 2022", Code: "R22", StartYear: 2022},
		},
		{
			name: "valid closed regulation",
			req:  domain.CreateRegulationRequest{Name: "Regulation 2018", Code: "R18", StartYear: 2018, EndYear: intPtr(2022)},
		},
		{
			name:      "missing code",
			req:       domain.CreateRegulationRequest{Name: "Regulation 2022", StartYear: 2022},
			wantField: "code",
		},
		{
			name:      "end before start",
			req:       domain.CreateRegulationRequest{Name: "R", Code: "R", StartYear: 2022, EndYear: intPtr(2020)},
			wantField: "endYear",
		},
		{
			name:      "start year out of range",
			req:       domain.CreateRegulationRequest{Name: "R", Code: "R", StartYear: 22},
			wantField: "startYear",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *domain.ValidationError, got %T", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q (%v)", tt.wantField, ve.Field, err)
			}
		})
	}
}

func TestStructUploadMaterial(t *testing.T) {
	err := Struct(&domain.UploadMaterialRequest{SubjectID: 3, MaterialType: "essay", Title: "Unit 1", FileName: "u1.pdf"})

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	if len(errs) != 1 || errs[0].Field != "materialType" {
		t.Fatalf("expected one materialType error, got %v", errs)
	}
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(&domain.CreateSubjectRequest{})

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	// name, code and the four required ids
	if len(errs) != 6 {
		t.Fatalf("expected 6 errors, got %d: %v", len(errs), errs)
	}
}
