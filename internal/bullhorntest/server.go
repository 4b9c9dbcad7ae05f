// Package bullhorntest provides an in-process fake of the Bullhorn auth and
// REST endpoints for tests.
package bullhorntest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// Credentials accepted by the fake server.
var Credentials = bullhorn.Credentials{
	Username:     "api.user",
	Password:     "secret",
	ClientID:     "client-id",
	ClientSecret: "client-secret",
}

// CorpToken is the corporation segment of the REST URL handed out on login.
const CorpToken = "corp1"

// Behavior switches the fake into failure modes.
type Behavior struct {
	// AuthorizeNoRedirect answers authorize with 200 instead of a redirect.
	AuthorizeNoRedirect bool
	// AuthorizeOmitCode redirects without a code parameter.
	AuthorizeOmitCode bool
	// TokenStatus overrides the token endpoint status when non-zero.
	TokenStatus int
	// LoginStatus overrides the login endpoint status when non-zero.
	LoginStatus int
	// EntityStatus overrides every REST entity endpoint status when non-zero.
	EntityStatus int
}

// Server is a fake Bullhorn deployment.
type Server struct {
	*httptest.Server

	AuthorizeCalls  atomic.Int64
	TokenCalls      atomic.Int64
	LoginCalls      atomic.Int64
	CandidateCreate atomic.Int64
	CandidateSearch atomic.Int64

	mutex         sync.Mutex
	behavior      Behavior
	loginGate     chan struct{}
	serial        int
	codes         map[string]bool
	accessTokens  map[string]bool
	restTokens    map[string]bool
	usedCodes     []string
	jobOrders     []bullhorn.JobOrder
	candidates    map[int]bullhorn.Candidate
	submissions   []bullhorn.JobSubmission
	files         map[string][]bullhorn.FileAttachment
	tearsheets    map[int][]int
	nextEntityID  int
	lastRestToken string
}

// NewServer starts a fake server. Close it with Server.Close.
func NewServer() *Server {
	server := &Server{
		codes:        make(map[string]bool),
		accessTokens: make(map[string]bool),
		restTokens:   make(map[string]bool),
		candidates:   make(map[int]bullhorn.Candidate),
		files:        make(map[string][]bullhorn.FileAttachment),
		tearsheets:   make(map[int][]int),
		nextEntityID: 1000,
	}

	server.Server = httptest.NewServer(server.router())

	return server
}

// AuthEndpoint is the OAuth base URL of the fake.
func (s *Server) AuthEndpoint() string {
	return s.URL + "/oauth/"
}

// APIRoot is the REST services root of the fake.
func (s *Server) APIRoot() string {
	return s.URL + "/rest-services/"
}

// RestURL is the REST URL returned by login.
func (s *Server) RestURL() string {
	return s.URL + "/rest-services/" + CorpToken + "/"
}

// Config returns a client config pointing at the fake.
func (s *Server) Config() *bullhorn.Config {
	return &bullhorn.Config{
		AuthEndpoint: s.AuthEndpoint(),
		APIRoot:      s.APIRoot(),
		Version:      bullhorn.DefaultVersion,
		Username:     Credentials.Username,
		Password:     Credentials.Password,
		ClientID:     Credentials.ClientID,
		ClientSecret: Credentials.ClientSecret,
	}
}

// SetBehavior replaces the failure switches.
func (s *Server) SetBehavior(behavior Behavior) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.behavior = behavior
}

// SetLoginGate makes the login endpoint block until gate is closed.
func (s *Server) SetLoginGate(gate chan struct{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.loginGate = gate
}

// AddJobOrder seeds a job order.
func (s *Server) AddJobOrder(job bullhorn.JobOrder) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.jobOrders = append(s.jobOrders, job)
}

// AddCandidate seeds a candidate and returns its id.
func (s *Server) AddCandidate(candidate bullhorn.Candidate) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextEntityID++
	candidate.ID = s.nextEntityID
	s.candidates[candidate.ID] = candidate

	return candidate.ID
}

// UsedCodes returns the authorization codes redeemed so far, in order.
func (s *Server) UsedCodes() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]string(nil), s.usedCodes...)
}

// LastRestToken returns the most recently issued BhRestToken.
func (s *Server) LastRestToken() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.lastRestToken
}

// Submissions returns the job submissions created so far.
func (s *Server) Submissions() []bullhorn.JobSubmission {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]bullhorn.JobSubmission(nil), s.submissions...)
}

// Files returns the files attached to entity/id.
func (s *Server) Files(entity string, id int) []bullhorn.FileAttachment {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]bullhorn.FileAttachment(nil), s.files[fileKey(entity, id)]...)
}

// TearsheetCandidates returns candidate ids associated to a tearsheet.
func (s *Server) TearsheetCandidates(tearsheetID int) []int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]int(nil), s.tearsheets[tearsheetID]...)
}

func (s *Server) router() http.Handler {
	router := chi.NewRouter()

	router.Route("/oauth", func(r chi.Router) {
		r.Post("/authorize", s.handleAuthorize)
		r.Post("/token", s.handleToken)
	})

	router.Route("/rest-services", func(r chi.Router) {
		r.Get("/login", s.handleLogin)

		r.Route("/"+CorpToken, func(r chi.Router) {
			r.Use(s.requireRestToken)
			r.Get("/query/JobOrder", s.handleQueryJobOrders)
			r.Get("/search/Candidate", s.handleSearchCandidates)
			r.Put("/entity/Candidate", s.handleCreateCandidate)
			r.Put("/entity/JobSubmission", s.handleCreateSubmission)
			r.Put("/entity/Tearsheet/{tearsheetID}/candidates/{candidateID}", s.handleAssociateTearsheet)
			r.Put("/file/{entity}/{entityID}", s.handleAttachFile)
		})
	})

	return router
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	s.AuthorizeCalls.Add(1)

	query := r.URL.Query()
	if query.Get("client_id") != Credentials.ClientID || query.Get("response_type") != "code" || query.Get("action") != "Login" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})

		return
	}

	err := r.ParseForm()
	if err != nil || r.PostForm.Get("username") != Credentials.Username || r.PostForm.Get("password") != Credentials.Password {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Invalid credentials</body></html>"))

		return
	}

	s.mutex.Lock()
	behavior := s.behavior
	s.serial++
	code := fmt.Sprintf("code-%d", s.serial)
	s.codes[code] = true
	s.mutex.Unlock()

	if behavior.AuthorizeNoRedirect {
		w.WriteHeader(http.StatusOK)

		return
	}

	location := url.URL{Scheme: "https", Host: "callback.example.com", Path: "/oauth/callback"}
	params := url.Values{"client_id": {Credentials.ClientID}}

	if !behavior.AuthorizeOmitCode {
		params.Set("code", code)
	}

	location.RawQuery = params.Encode()
	http.Redirect(w, r, location.String(), http.StatusFound)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.TokenCalls.Add(1)

	query := r.URL.Query()
	code := query.Get("code")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.behavior.TokenStatus != 0 {
		writeJSON(w, s.behavior.TokenStatus, map[string]string{"error": "server_error", "error_description": "token endpoint unavailable"})

		return
	}

	if query.Get("client_id") != Credentials.ClientID || query.Get("client_secret") != Credentials.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})

		return
	}

	if query.Get("grant_type") != "authorization_code" || !s.codes[code] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "unknown or reused code"})

		return
	}

	delete(s.codes, code)
	s.usedCodes = append(s.usedCodes, code)

	s.serial++
	accessToken := fmt.Sprintf("access-%d", s.serial)
	s.accessTokens[accessToken] = true

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": fmt.Sprintf("refresh-%d", s.serial),
		"token_type":    "Bearer",
		"expires_in":    600,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.LoginCalls.Add(1)

	s.mutex.Lock()
	gate := s.loginGate
	s.mutex.Unlock()

	if gate != nil {
		<-gate
	}

	query := r.URL.Query()
	accessToken := query.Get("access_token")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.behavior.LoginStatus != 0 {
		writeJSON(w, s.behavior.LoginStatus, bullhorn.APIError{ErrorMessage: "login rejected", ErrorCode: s.behavior.LoginStatus})

		return
	}

	if query.Get("version") == "" || !s.accessTokens[accessToken] {
		writeJSON(w, http.StatusUnauthorized, bullhorn.APIError{ErrorMessage: "Invalid access token", ErrorCode: http.StatusUnauthorized})

		return
	}

	delete(s.accessTokens, accessToken)

	s.serial++
	restToken := fmt.Sprintf("bh-%d", s.serial)
	s.restTokens[restToken] = true
	s.lastRestToken = restToken

	writeJSON(w, http.StatusOK, map[string]string{
		"restUrl":     s.RestURL(),
		"BhRestToken": restToken,
	})
}

func (s *Server) requireRestToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mutex.Lock()
		valid := s.restTokens[r.URL.Query().Get("BhRestToken")]
		status := s.behavior.EntityStatus
		s.mutex.Unlock()

		if !valid {
			writeJSON(w, http.StatusUnauthorized, bullhorn.APIError{
				ErrorMessage:    "Bad 'BhRestToken' or timed-out.",
				ErrorMessageKey: "errors.authentication.invalidRestToken",
				ErrorCode:       http.StatusUnauthorized,
			})

			return
		}

		if status != 0 {
			writeJSON(w, status, bullhorn.APIError{ErrorMessage: "entity call rejected", ErrorCode: status})

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleQueryJobOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("where") != "isOpen=true" || query.Get("fields") == "" {
		writeJSON(w, http.StatusBadRequest, bullhorn.APIError{ErrorMessage: "bad query", ErrorCode: http.StatusBadRequest})

		return
	}

	count, _ := strconv.Atoi(query.Get("count"))
	start, _ := strconv.Atoi(query.Get("start"))

	s.mutex.Lock()

	open := make([]bullhorn.JobOrder, 0, len(s.jobOrders))
	for _, job := range s.jobOrders {
		if job.IsOpen {
			open = append(open, job)
		}
	}

	s.mutex.Unlock()

	if start > len(open) {
		start = len(open)
	}

	open = open[start:]
	if count > 0 && count < len(open) {
		open = open[:count]
	}

	writeJSON(w, http.StatusOK, bullhorn.ListResponse[bullhorn.JobOrder]{Start: start, Count: len(open), Data: open})
}

func (s *Server) handleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	s.CandidateSearch.Add(1)

	lucene := r.URL.Query().Get("query")
	email := strings.Trim(strings.TrimPrefix(lucene, "email:"), `"`)

	s.mutex.Lock()

	matches := []bullhorn.Candidate{}
	for _, candidate := range s.candidates {
		if strings.EqualFold(candidate.Email, email) {
			matches = append(matches, candidate)
		}
	}

	s.mutex.Unlock()

	writeJSON(w, http.StatusOK, bullhorn.ListResponse[bullhorn.Candidate]{Total: len(matches), Count: len(matches), Data: matches})
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	s.CandidateCreate.Add(1)

	var candidate bullhorn.Candidate

	err := json.NewDecoder(r.Body).Decode(&candidate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, bullhorn.APIError{ErrorMessage: "malformed body", ErrorCode: http.StatusBadRequest})

		return
	}

	id := s.AddCandidate(candidate)

	writeJSON(w, http.StatusOK, bullhorn.ChangeResult{
		ChangedEntityType: "Candidate",
		ChangedEntityID:   id,
		ChangeType:        "INSERT",
	})
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var submission bullhorn.JobSubmission

	err := json.NewDecoder(r.Body).Decode(&submission)
	if err != nil || submission.Candidate == nil || submission.JobOrder == nil {
		writeJSON(w, http.StatusBadRequest, bullhorn.APIError{
			ErrorMessage: "error persisting an entity of type: JobSubmission",
			ErrorCode:    http.StatusBadRequest,
			Errors:       []bullhorn.FieldError{{PropertyName: "candidate", Severity: "ERROR", Type: "MISSING_REQUIRED_PROPERTY"}},
		})

		return
	}

	s.mutex.Lock()
	s.nextEntityID++
	submission.ID = s.nextEntityID
	s.submissions = append(s.submissions, submission)
	s.mutex.Unlock()

	writeJSON(w, http.StatusOK, bullhorn.ChangeResult{
		ChangedEntityType: "JobSubmission",
		ChangedEntityID:   submission.ID,
		ChangeType:        "INSERT",
	})
}

func (s *Server) handleAssociateTearsheet(w http.ResponseWriter, r *http.Request) {
	tearsheetID, err1 := strconv.Atoi(chi.URLParam(r, "tearsheetID"))
	candidateID, err2 := strconv.Atoi(chi.URLParam(r, "candidateID"))

	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, bullhorn.APIError{ErrorMessage: "bad id", ErrorCode: http.StatusBadRequest})

		return
	}

	s.mutex.Lock()
	s.tearsheets[tearsheetID] = append(s.tearsheets[tearsheetID], candidateID)
	s.mutex.Unlock()

	writeJSON(w, http.StatusOK, bullhorn.ChangeResult{
		ChangedEntityType: "Tearsheet",
		ChangedEntityID:   tearsheetID,
		ChangeType:        "ASSOCIATE",
	})
}

func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	entityID, err := strconv.Atoi(chi.URLParam(r, "entityID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, bullhorn.APIError{ErrorMessage: "bad id", ErrorCode: http.StatusBadRequest})

		return
	}

	var file bullhorn.FileAttachment

	err = json.NewDecoder(r.Body).Decode(&file)
	if err != nil || len(file.Content) == 0 {
		writeJSON(w, http.StatusBadRequest, bullhorn.APIError{ErrorMessage: "fileContent is required", ErrorCode: http.StatusBadRequest})

		return
	}

	s.mutex.Lock()
	s.nextEntityID++
	fileID := s.nextEntityID
	key := fileKey(entity, entityID)
	s.files[key] = append(s.files[key], file)
	s.mutex.Unlock()

	writeJSON(w, http.StatusOK, bullhorn.FileResult{FileID: fileID})
}

func fileKey(entity string, id int) string {
	return entity + "/" + strconv.Itoa(id)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
