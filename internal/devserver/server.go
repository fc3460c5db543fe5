// Package devserver is an in-memory stand-in for the CallMeBack backend,
// good enough for local development and end-to-end tests. State lives for
// the process lifetime only.
package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/callmeback/callbackd/internal/model"
)

// dueWindow is how far ahead of now a reminder may be and still count as due.
const dueWindow = time.Minute

type user struct {
	id           string
	name         string
	email        string
	passwordHash []byte
	planType     model.PlanType
	planExpiry   *time.Time
}

type reminder struct {
	id          string
	userID      string
	nameToCall  string
	phoneNumber string
	description string
	dateTime    time.Time
	status      model.ReminderStatus
	createdAt   time.Time
}

type Server struct {
	mu        sync.Mutex
	// users is keyed by email; tokens maps bearer tokens to user ids.
	users     map[string]*user
	tokens    map[string]string
	reminders map[string]*reminder

	router *mux.Router
	log    zerolog.Logger
	now    func() time.Time
}

func NewServer(log zerolog.Logger) *Server {
	s := &Server{
		users:     make(map[string]*user),
		tokens:    make(map[string]string),
		reminders: make(map[string]*reminder),
		log:       log.With().Str("component", "devserver").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/user/profile", s.withAuth(s.handleProfile)).Methods(http.MethodGet)
	r.HandleFunc("/api/user/plan-status", s.withAuth(s.handlePlanStatus)).Methods(http.MethodGet)
	r.HandleFunc("/api/reminders/create", s.withAuth(s.handleCreate)).Methods(http.MethodPost)
	r.HandleFunc("/api/reminders/list", s.withAuth(s.handleList)).Methods(http.MethodGet)
	r.HandleFunc("/api/reminders/check", s.withAuth(s.handleCheck)).Methods(http.MethodGet)
	r.HandleFunc("/api/reminders/{id}/complete", s.withAuth(s.handleComplete)).Methods(http.MethodPost)
	r.HandleFunc("/api/reminders/{id}", s.withAuth(s.handleDelete)).Methods(http.MethodDelete)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetClock overrides the server clock, for tests.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u *user)

func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		userID, ok := s.tokens[token]
		var u *user
		if ok {
			for _, candidate := range s.users {
				if candidate.id == userID {
					u = candidate
					break
				}
			}
		}
		s.mu.Unlock()

		if u == nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid authentication token")
			return
		}
		next(w, r, u)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not hash password")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := &user{
		id:           uuid.NewString(),
		name:         req.Name,
		email:        req.Email,
		passwordHash: hash,
		planType:     model.PlanFree,
	}
	s.users[req.Email] = u
	token := newToken()
	s.tokens[token] = u.id
	s.mu.Unlock()

	s.log.Info().Str("email", req.Email).Msg("user registered")
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": s.userJSON(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	u, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token := newToken()
	s.mu.Lock()
	s.tokens[token] = u.id
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": s.userJSON(u)})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, s.userJSON(u))
}

func (s *Server) handlePlanStatus(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, map[string]any{
		"plan_type":      u.planType,
		"plan_expiry":    u.planExpiry,
		"reminder_count": s.activeReminderCount(u.id),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, u *user) {
	var req struct {
		NameToCall  string    `json:"name_to_call"`
		PhoneNumber string    `json:"phone_number"`
		Description string    `json:"description"`
		DateTime    time.Time `json:"date_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.NameToCall) == "" || strings.TrimSpace(req.PhoneNumber) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Name and phone number are required")
		return
	}
	if req.DateTime.IsZero() {
		writeDetail(w, http.StatusUnprocessableEntity, "A reminder time is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u.planType == model.PlanFree && s.activeReminderCountLocked(u.id) >= model.FreePlanReminderLimit {
		writeDetail(w, http.StatusForbidden, "Free plan limit reached. Upgrade to add more reminders.")
		return
	}
	rem := &reminder{
		id:          uuid.NewString(),
		userID:      u.id,
		nameToCall:  strings.TrimSpace(req.NameToCall),
		phoneNumber: strings.TrimSpace(req.PhoneNumber),
		description: strings.TrimSpace(req.Description),
		dateTime:    req.DateTime.UTC(),
		status:      model.ReminderStatusActive,
		createdAt:   s.now(),
	}
	s.reminders[rem.id] = rem
	writeJSON(w, http.StatusOK, reminderJSON(rem))
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	out := make([]*reminder, 0)
	for _, rem := range s.reminders {
		if rem.userID == u.id && rem.status != model.ReminderStatusDeleted {
			out = append(out, rem)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].dateTime.Before(out[j].dateTime) })
	payload := make([]map[string]any, 0, len(out))
	for _, rem := range out {
		payload = append(payload, reminderJSON(rem))
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleCheck returns reminders due now or within the next minute and flips
// them to triggered so a later poll does not surface them again.
func (s *Server) handleCheck(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	now := s.now()
	due := make([]*reminder, 0)
	for _, rem := range s.reminders {
		if rem.userID != u.id || rem.status != model.ReminderStatusActive {
			continue
		}
		if rem.dateTime.After(now.Add(dueWindow)) {
			continue
		}
		rem.status = model.ReminderStatusTriggered
		due = append(due, rem)
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].dateTime.Before(due[j].dateTime) })
	payload := make([]map[string]any, 0, len(due))
	for _, rem := range due {
		payload = append(payload, map[string]any{
			"id":           rem.id,
			"name_to_call": rem.nameToCall,
			"phone_number": rem.phoneNumber,
			"description":  rem.description,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request, u *user) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	rem, ok := s.reminders[id]
	if !ok || rem.userID != u.id || rem.status == model.ReminderStatusDeleted {
		writeDetail(w, http.StatusNotFound, "Reminder not found")
		return
	}
	rem.status = model.ReminderStatusCompleted
	writeJSON(w, http.StatusOK, reminderJSON(rem))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, u *user) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	rem, ok := s.reminders[id]
	if !ok || rem.userID != u.id || rem.status == model.ReminderStatusDeleted {
		writeDetail(w, http.StatusNotFound, "Reminder not found")
		return
	}
	rem.status = model.ReminderStatusDeleted
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) userJSON(u *user) map[string]any {
	return map[string]any{
		"id":             u.id,
		"name":           u.name,
		"email":          u.email,
		"plan_type":      u.planType,
		"plan_expiry":    u.planExpiry,
		"reminder_count": s.activeReminderCount(u.id),
	}
}

func (s *Server) activeReminderCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeReminderCountLocked(userID)
}

func (s *Server) activeReminderCountLocked(userID string) int {
	count := 0
	for _, rem := range s.reminders {
		if rem.userID == userID && rem.status != model.ReminderStatusDeleted && rem.status != model.ReminderStatusCompleted {
			count++
		}
	}
	return count
}

func reminderJSON(rem *reminder) map[string]any {
	return map[string]any{
		"id":           rem.id,
		"name_to_call": rem.nameToCall,
		"phone_number": rem.phoneNumber,
		"description":  rem.description,
		"date_time":    rem.dateTime,
		"status":       rem.status,
		"created_at":   rem.createdAt,
	}
}

func newToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
