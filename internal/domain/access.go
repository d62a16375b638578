package domain

import (
	"fmt"
	"time"
)

// EntityType is the kind of entity an access record points at.
type EntityType string

const (
	EntityMaterial   EntityType = "material"
	EntityBranch     EntityType = "branch"
	EntityRegulation EntityType = "regulation"
	EntitySubject    EntityType = "subject"
)

// EntityTypes is the fixed ranking order used when grouping access records.
var EntityTypes = []EntityType{EntityMaterial, EntityBranch, EntityRegulation, EntitySubject}

// Valid reports whether t is one of the four tracked types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityMaterial, EntityBranch, EntityRegulation, EntitySubject:
		return true
	}
	return false
}

// ParseEntityType accepts the singular names used on disk.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntityType, s)
	}
	return t, nil
}

// AccessMetadata holds navigation hints recorded with an access.
// Nil fields are unset; merging keeps old values for unset fields.
type AccessMetadata struct {
	BranchID     *int64  `json:"branchId,omitempty"`
	RegulationID *int64  `json:"regulationId,omitempty"`
	YearID       *int64  `json:"yearId,omitempty"`
	SemesterID   *int64  `json:"semesterId,omitempty"`
	SubjectID    *int64  `json:"subjectId,omitempty"`
	MaterialID   *int64  `json:"materialId,omitempty"`
	Code         *string `json:"code,omitempty"`
}

// Merge returns a copy of m with every field set in other overriding it.
func (m *AccessMetadata) Merge(other *AccessMetadata) *AccessMetadata {
	if other == nil {
		return m
	}
	var out AccessMetadata
	if m != nil {
		out = *m
	}
	if other.BranchID != nil {
		out.BranchID = other.BranchID
	}
	if other.RegulationID != nil {
		out.RegulationID = other.RegulationID
	}
	if other.YearID != nil {
		out.YearID = other.YearID
	}
	if other.SemesterID != nil {
		out.SemesterID = other.SemesterID
	}
	if other.SubjectID != nil {
		out.SubjectID = other.SubjectID
	}
	if other.MaterialID != nil {
		out.MaterialID = other.MaterialID
	}
	if other.Code != nil {
		out.Code = other.Code
	}
	return &out
}

// AccessRecord ranks one (ID, Type) pair by how often and how recently it was visited.
type AccessRecord struct {
	ID             int64           `json:"id"`
	DisplayName    string          `json:"name"`
	Type           EntityType      `json:"type"`
	LastAccessedAt time.Time       `json:"lastAccessed"`
	AccessCount    int             `json:"accessCount"`
	Metadata       *AccessMetadata `json:"metadata,omitempty"`
}

// LastViewed points at the material to offer under "continue learning".
type LastViewed struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	SubjectID int64     `json:"subjectId"`
	Timestamp time.Time `json:"timestamp"`
}
