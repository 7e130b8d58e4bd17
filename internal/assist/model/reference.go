package model

// Tag is a topic or solution tag.
type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// POTD is the daily coding challenge.
type POTD struct {
	Date       string  `json:"date"`
	Link       string  `json:"link"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	FrontendID string  `json:"frontendId"`
	Difficulty string  `json:"difficulty"`
	ACRate     float64 `json:"acRate"`
	Tags       []Tag   `json:"tags"`
}

// CandidateDocument is one community solution post.
type CandidateDocument struct {
	ID      string
	Title   string
	Content string
	Votes   *int
	Tags    []Tag
}

// ReferenceItem is a link shown next to a problem.
type ReferenceItem struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Votes    *int    `json:"votes"`
	Language *string `json:"language"`
	Source   string  `json:"source"`
}

// CommunitySolution is the selected top community post.
type CommunitySolution struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Votes    *int    `json:"votes"`
	Language *string `json:"language"`
	Code     *string `json:"code"`
	Content  *string `json:"content"`
}

// ReferencesResponse is the reference outcome for a problem.
type ReferencesResponse struct {
	Slug              string             `json:"slug"`
	Language          *string            `json:"language"`
	Items             []ReferenceItem    `json:"items"`
	CommunitySolution *CommunitySolution `json:"community_solution"`
}

// SubmissionSummary is one row of a user's submission history.
type SubmissionSummary struct {
	SubmissionID   string  `json:"submission_id"`
	Status         *string `json:"status"`
	StatusDisplay  *string `json:"status_display"`
	Lang           *string `json:"lang"`
	LangName       *string `json:"lang_name"`
	RuntimeDisplay *string `json:"runtime_display"`
	MemoryDisplay  *string `json:"memory_display"`
	Timestamp      *int64  `json:"timestamp"`
	RelativeTime   *string `json:"relative_time"`
	IsPending      bool    `json:"is_pending"`
	Runtime        *string `json:"runtime"`
	Memory         *string `json:"memory"`
	URL            *string `json:"url"`
}

// SubmissionHistory is the history endpoint response.
type SubmissionHistory struct {
	Submissions []SubmissionSummary `json:"submissions"`
	HasNext     bool                `json:"has_next"`
}
