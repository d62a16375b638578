package components

// Level identifies which step of the catalogue hierarchy a column lists
type Level int

const (
	LevelBranches Level = iota
	LevelRegulations
	LevelYears
	LevelSemesters
	LevelSubjects
	LevelMaterials
	LevelFrequent // frequently accessed shortcuts
	LevelSearch   // search results across types
)

// String returns the column heading for the level
func (l Level) String() string {
	switch l {
	case LevelBranches:
		return "Branches"
	case LevelRegulations:
		return "Regulations"
	case LevelYears:
		return "Years"
	case LevelSemesters:
		return "Semesters"
	case LevelSubjects:
		return "Subjects"
	case LevelMaterials:
		return "Materials"
	case LevelFrequent:
		return "Frequently accessed"
	case LevelSearch:
		return "Search"
	default:
		return ""
	}
}

// Child returns the level reached by drilling into an item of this level
func (l Level) Child() (Level, bool) {
	if l >= LevelBranches && l < LevelMaterials {
		return l + 1, true
	}
	return 0, false
}
