package bullhorn

import (
	"context"
	"time"
)

// Session is the platform session obtained from a successful login.
// A Session is never mutated after creation; re-authentication produces a new value.
type Session struct {
	RestURL     string    `json:"restUrl"     yaml:"rest_url"`
	BhRestToken string    `json:"BhRestToken" yaml:"bh_rest_token"`
	AcquiredAt  time.Time `json:"acquiredAt"  yaml:"acquired_at"`
}

// Age returns how long ago the session was acquired.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.AcquiredAt)
}

// EntityRef is a to-one association carrying only the related entity id.
type EntityRef struct {
	ID   int    `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Address represents a Bullhorn address composite.
type Address struct {
	Address1    string `json:"address1,omitempty"    yaml:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"    yaml:"address2,omitempty"`
	City        string `json:"city,omitempty"        yaml:"city,omitempty"`
	State       string `json:"state,omitempty"       yaml:"state,omitempty"`
	Zip         string `json:"zip,omitempty"         yaml:"zip,omitempty"`
	CountryID   int    `json:"countryID,omitempty"   yaml:"country_id,omitempty"`
	CountryName string `json:"countryName,omitempty" yaml:"country_name,omitempty"`
}

// JobOrder represents a job order entity.
type JobOrder struct {
	ID                int        `json:"id"                          yaml:"id"`
	Title             string     `json:"title"                       yaml:"title"`
	IsOpen            bool       `json:"isOpen"                      yaml:"is_open"`
	Status            string     `json:"status,omitempty"            yaml:"status,omitempty"`
	EmploymentType    string     `json:"employmentType,omitempty"    yaml:"employment_type,omitempty"`
	NumOpenings       int        `json:"numOpenings,omitempty"       yaml:"num_openings,omitempty"`
	PublicDescription string     `json:"publicDescription,omitempty" yaml:"public_description,omitempty"`
	DateAdded         int64      `json:"dateAdded,omitempty"         yaml:"date_added,omitempty"`
	ClientCorporation *EntityRef `json:"clientCorporation,omitempty" yaml:"client_corporation,omitempty"`
	Address           *Address   `json:"address,omitempty"           yaml:"address,omitempty"`
}

// Candidate represents a candidate entity.
type Candidate struct {
	ID         int      `json:"id,omitempty"         yaml:"id,omitempty"`
	FirstName  string   `json:"firstName,omitempty"  yaml:"first_name,omitempty"`
	LastName   string   `json:"lastName,omitempty"   yaml:"last_name,omitempty"`
	Name       string   `json:"name,omitempty"       yaml:"name,omitempty"`
	Email      string   `json:"email,omitempty"      yaml:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"      yaml:"phone,omitempty"`
	Mobile     string   `json:"mobile,omitempty"     yaml:"mobile,omitempty"`
	Status     string   `json:"status,omitempty"     yaml:"status,omitempty"`
	Source     string   `json:"source,omitempty"     yaml:"source,omitempty"`
	Occupation string   `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Address    *Address `json:"address,omitempty"    yaml:"address,omitempty"`
}

// JobSubmission links a candidate to a job order.
type JobSubmission struct {
	ID              int        `json:"id,omitempty"              yaml:"id,omitempty"`
	Candidate       *EntityRef `json:"candidate"                 yaml:"candidate"`
	JobOrder        *EntityRef `json:"jobOrder"                  yaml:"job_order"`
	Status          string     `json:"status,omitempty"          yaml:"status,omitempty"`
	Source          string     `json:"source,omitempty"          yaml:"source,omitempty"`
	DateWebResponse int64      `json:"dateWebResponse,omitempty" yaml:"date_web_response,omitempty"`
}

// FileAttachment is a file to attach to an entity. Content is sent base64-encoded.
type FileAttachment struct {
	ExternalID    string `json:"externalID"            yaml:"external_id"`
	Content       []byte `json:"fileContent"           yaml:"-"`
	FileExtension string `json:"fileExtension"         yaml:"file_extension"`
	FileType      string `json:"fileType"              yaml:"file_type"`
	Name          string `json:"name"                  yaml:"name"`
	ContentType   string `json:"contentType,omitempty" yaml:"content_type,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Type          string `json:"type,omitempty"        yaml:"type,omitempty"`
}

// ChangeResult is the response to an entity create or association call.
type ChangeResult struct {
	ChangedEntityType string                 `json:"changedEntityType" yaml:"changed_entity_type"`
	ChangedEntityID   int                    `json:"changedEntityId"   yaml:"changed_entity_id"`
	ChangeType        string                 `json:"changeType"        yaml:"change_type"`
	Data              map[string]interface{} `json:"data,omitempty"    yaml:"data,omitempty"`
}

// FileResult is the response to a file attachment call.
type FileResult struct {
	FileID int `json:"fileId" yaml:"file_id"`
}

// ListResponse represents a query or search response.
type ListResponse[T any] struct {
	Total int `json:"total,omitempty" yaml:"total,omitempty"`
	Start int `json:"start"           yaml:"start"`
	Count int `json:"count"           yaml:"count"`
	Data  []T `json:"data"            yaml:"data"`
}

// ListOptions controls field projection and paging of list calls.
type ListOptions struct {
	Fields  []string
	Count   int
	Start   int
	OrderBy string
}

// JobOrdersClient lists job orders.
type JobOrdersClient interface {
	ListOpen(ctx context.Context, opts *ListOptions) ([]JobOrder, error)
}

// CandidatesClient finds and creates candidates.
type CandidatesClient interface {
	FindByEmail(ctx context.Context, email string) (*Candidate, error)
	Create(ctx context.Context, candidate *Candidate) (*ChangeResult, error)
	// FindOrCreateByEmail returns the id of the candidate with candidate.Email,
	// creating it if no match exists.
	FindOrCreateByEmail(ctx context.Context, candidate *Candidate) (int, error)
}

// JobSubmissionsClient creates job submissions.
type JobSubmissionsClient interface {
	Create(ctx context.Context, submission *JobSubmission) (*ChangeResult, error)
}

// FilesClient attaches files to entities.
type FilesClient interface {
	Attach(ctx context.Context, entity string, entityID int, file *FileAttachment) (*FileResult, error)
}

// TearsheetsClient manages tearsheet associations.
type TearsheetsClient interface {
	AddCandidate(ctx context.Context, tearsheetID, candidateID int) (*ChangeResult, error)
}

// SessionClient exposes the session backing entity calls.
type SessionClient interface {
	Session(ctx context.Context) (*Session, error)
}

// Client is the Bullhorn REST API client.
type Client interface {
	SessionClient

	JobOrders() JobOrdersClient
	Candidates() CandidatesClient
	JobSubmissions() JobSubmissionsClient
	Files() FilesClient
	Tearsheets() TearsheetsClient

	// Close releases cache connections.
	Close() error
}
