package domain

// Announcement categories used by the client app. Any other value is treated
// as a free-form category and falls back to the generic title.
const (
	CategoryGeneral           = "General"
	CategoryNotes             = "Notes"
	CategoryPastPaper         = "Past Paper"
	CategoryAssignment        = "Assignment"
	CategoryCAT               = "CAT"
	CategoryClassConfirmation = "Class Confirmation"
)

type Announcement struct {
	AnnouncementID string `json:"id" dynamodbav:"announcement_id"`
	Title          string `json:"title" dynamodbav:"title"`
	Description    string `json:"description" dynamodbav:"description"`
	Category       string `json:"type" dynamodbav:"type"`
	UnitCode       string `json:"unit_code,omitempty" dynamodbav:"unit_code"`
	UnitTitle      string `json:"unit_title,omitempty" dynamodbav:"unit_title"`
	Year           string `json:"year,omitempty" dynamodbav:"year"`
	Semester       string `json:"semester,omitempty" dynamodbav:"semester"`
	AuthorID       string `json:"author_id" dynamodbav:"author_id"`
	AppID          string `json:"app_id,omitempty" dynamodbav:"app_id"`
}

// IsGeneral reports whether this is an admin broadcast sent to every user
// regardless of course, campus, school or department.
func (a *Announcement) IsGeneral() bool {
	return a.Category == CategoryGeneral
}

// HasTerm reports whether the announcement targets a specific year/semester.
// Both must be present; a lone year or semester is ignored.
func (a *Announcement) HasTerm() bool {
	return a.Year != "" && a.Semester != ""
}
