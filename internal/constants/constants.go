package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Session policy.
const (
	// SessionStaleAfter is the age at which a cached session must be replaced.
	SessionStaleAfter = 8 * time.Minute
)

// OAuth and login parameters.
const (
	// GrantTypeAuthorizationCode is the grant used to redeem an authorization code.
	GrantTypeAuthorizationCode = "authorization_code"

	// ResponseTypeCode asks the authorize endpoint for an authorization code.
	ResponseTypeCode = "code"

	// ActionLogin makes the authorize endpoint accept credentials in the request.
	ActionLogin = "Login"

	// RestTokenParam carries the session token on every entity call.
	RestTokenParam = "BhRestToken"
)

// Entity names and paths.
const (
	EntityJobOrder      = "JobOrder"
	EntityCandidate     = "Candidate"
	EntityJobSubmission = "JobSubmission"
	EntityTearsheet     = "Tearsheet"
	EntityFile          = "File"

	PathQuery  = "query/"
	PathSearch = "search/"
	PathEntity = "entity/"
	PathFile   = "file/"
	PathLogin  = "login"
)

// Query defaults.
const (
	// DefaultOpenJobsCount is the page size requested for open job orders.
	DefaultOpenJobsCount = 499

	// OpenJobsWhere selects open job orders.
	OpenJobsWhere = "isOpen=true"

	// AllFields projects every field.
	AllFields = "*"

	// CandidateLookupFields are the fields returned by email lookups.
	CandidateLookupFields = "id,firstName,lastName,email"

	// DefaultFileType is the file type used when an attachment does not set one.
	DefaultFileType = "SAMPLE"

	// DefaultSubmissionStatus is applied to job submissions created without a status.
	DefaultSubmissionStatus = "New Lead"
)

// Cache defaults.
const (
	// DefaultCacheSize is the default number of cached candidate lookups.
	DefaultCacheSize = 1000

	// DefaultCandidateCacheTTL bounds how long an email to id mapping is trusted.
	DefaultCandidateCacheTTL = 24 * time.Hour

	// CandidateCacheKeyPrefix namespaces candidate lookups in shared caches.
	CandidateCacheKeyPrefix = "candidate:email:"
)

// HTTP defaults.
const (
	// DefaultUserAgent is sent when the config does not override it.
	DefaultUserAgent = "bullhorn-client-go/1.0"

	// ContentTypeJSON is used for entity bodies.
	ContentTypeJSON = "application/json"

	// ContentTypeForm is used for the authorize request.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)
