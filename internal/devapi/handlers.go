package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yndnr/sessiongate/internal/core/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxRequestBody    = 64 << 10
	maxPasswordLength = 128
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes an error body in the {"detail": ...} shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "Request body must be a JSON object")
		return false
	}
	return true
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Identifier and password are required")
		return
	}

	u, err := s.users.authenticate(req.Identifier, req.Password)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, exp, err := s.tokens.issue(u.ID)
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Could not sign in")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token     string    `json:"token"`
		SubjectID string    `json:"subjectId"`
		ExpiresAt time.Time `json:"expiresAt"`
	}{token, u.ID, exp})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if !decode(w, r, &req) {
		return
	}

	switch {
	case strings.TrimSpace(req.DisplayName) == "":
		writeDetail(w, http.StatusUnprocessableEntity, "Full name is required")
		return
	case !emailPattern.MatchString(strings.TrimSpace(req.Email)):
		writeDetail(w, http.StatusUnprocessableEntity, "A valid email address is required")
		return
	case utf8.RuneCountInString(req.Password) < s.cfg.MinPasswordLength:
		writeDetail(w, http.StatusUnprocessableEntity, "Password is too short")
		return
	}

	if _, err := s.users.create(req.DisplayName, req.Email, req.Password); err != nil {
		if errors.Is(err, errEmailTaken) {
			writeDetail(w, http.StatusConflict, "Email already registered")
			return
		}
		s.logger.Error("create user failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Could not create account")
		return
	}
	writeJSON(w, http.StatusCreated, domain.Confirmation{Message: "Account created successfully."})
}

// forgotPassword answers 404 for unknown addresses. The client is expected
// to hide the difference.
func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		writeDetail(w, http.StatusUnprocessableEntity, "A valid email address is required")
		return
	}

	u, ok := s.users.byEmail.Get(foldEmail(req.Email))
	if !ok {
		writeDetail(w, http.StatusNotFound, "No account is registered with that email")
		return
	}
	tok, err := s.users.issueReset(u)
	if err != nil {
		s.logger.Error("issue reset token", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Could not start password reset")
		return
	}
	s.resets.Add(1)
	s.mailbox(u.Email, tok)
	writeJSON(w, http.StatusOK, domain.Confirmation{Message: domain.MessageResetRequested})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordReset
	if !decode(w, r, &req) {
		return
	}

	n := utf8.RuneCountInString(req.NewPassword)
	switch {
	case strings.TrimSpace(req.Token) == "":
		writeDetail(w, http.StatusBadRequest, "Invalid or expired password reset token")
		return
	case n < s.cfg.MinPasswordLength:
		writeDetail(w, http.StatusUnprocessableEntity, "Password is too short")
		return
	case n > maxPasswordLength:
		writeDetail(w, http.StatusUnprocessableEntity, "Password is too long")
		return
	}

	u, err := s.users.redeemReset(req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, errResetToken) {
			writeDetail(w, http.StatusBadRequest, "Invalid or expired password reset token")
			return
		}
		s.logger.Error("reset password failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Could not reset password")
		return
	}
	s.logger.Info("password reset", "subject", u.ID)
	writeJSON(w, http.StatusOK, domain.Confirmation{Message: domain.MessagePasswordReset})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	token := req.Token
	if token == "" {
		token = bearerToken(r)
	}

	sub, err := s.tokens.subject(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	if _, err := s.users.byUserID(sub); err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"subjectId": sub})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	sub, err := s.tokens.subject(bearerToken(r))
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	u, err := s.users.byUserID(sub)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, domain.Profile{
		SubjectID: u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}
