package api

// Wire types of the catalogue API. Optional numbers are pointers so a
// missing field is distinguishable from zero.

type BranchDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type RegulationDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	StartYear   int    `json:"startYear"`
	EndYear     *int   `json:"endYear"`
	Description string `json:"description"`
}

type YearDTO struct {
	ID         int64 `json:"id"`
	YearNumber int   `json:"yearNumber"`
}

type SemesterDTO struct {
	ID          int64  `json:"id"`
	SemNumber   int    `json:"semNumber"`
	YearID      int64  `json:"yearId"`
	YearNumber  int    `json:"yearNumber"`
	DisplayName string `json:"displayName"`
}

type SubBranchDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	BranchID   int64  `json:"branchId"`
	BranchCode string `json:"branchCode"`
	BranchName string `json:"branchName"`
}

type SubjectDTO struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Code                string `json:"code"`
	BranchCode          string `json:"branchCode"`
	BranchName          string `json:"branchName"`
	YearNumber          int    `json:"yearNumber"`
	SemNumber           int    `json:"semNumber"`
	SemesterDisplayName string `json:"semesterDisplayName"`
	RegulationID        int64  `json:"regulationId"`
	RegulationCode      string `json:"regulationCode"`
	RegulationName      string `json:"regulationName"`
	SubBranchID         *int64 `json:"subBranchId"`
	SubBranchCode       string `json:"subBranchCode"`
	SubBranchName       string `json:"subBranchName"`
	MaterialCount       int    `json:"materialCount"`
}

type MaterialDTO struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	MaterialType  string `json:"materialType"`
	CloudinaryURL string `json:"cloudinaryUrl"`
	UploadedOn    string `json:"uploadedOn"` // local date-time without zone
	SubjectName   string `json:"subjectName"`
	SubjectID     int64  `json:"subjectId"`
}

type SearchResultDTO struct {
	Subjects    []SubjectDTO    `json:"subjects"`
	Materials   []MaterialDTO   `json:"materials"`
	Branches    []BranchDTO     `json:"branches"`
	Regulations []RegulationDTO `json:"regulations"`
}

// ErrorDTO is the server's error body.
type ErrorDTO struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors"`
}
