package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/store"
	"github.com/validateiq/validateiq/internal/waitlist"
)

const (
	msgSignupSuccess   = "You're in! Check your inbox for confirmation."
	msgDuplicateEmail  = "This email is already on the waitlist!"
	msgVisitorNotFound = "Visitor not found"
	msgRateLimited     = "Too many signups from this address. Please try again in a minute."
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !s.limiter.Allow(ip) {
		SignupsRateLimited.Inc()
		s.log.Warn("signup rate limited", slog.String("ip", ip))
		writeError(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	var req api.SignupRequest
	if !s.decode(w, r, &req) {
		return
	}

	email, err := validEmail(req.Email)
	if err != nil {
		SignupsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, "value is not a valid email address")
		return
	}
	feature, err := waitlist.ParseFeature(req.MostWantedFeature)
	if err != nil {
		SignupsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	source := req.SignupSource
	if source == "" {
		source = waitlist.SignupSource
	}
	// Omitted or negative durations are stored as NULL.
	timeToSignup := req.TimeToSignupSeconds
	if timeToSignup != nil && *timeToSignup < 0 {
		timeToSignup = nil
	}

	signup, err := s.store.CreateSignup(r.Context(), &store.Signup{
		VisitorID:           req.VisitorID,
		Email:               email,
		MostWantedFeature:   string(feature),
		MarketingConsent:    req.MarketingConsent,
		SignupSource:        source,
		TimeToSignupSeconds: timeToSignup,
	})
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		SignupsTotal.WithLabelValues("duplicate").Inc()
		writeError(w, http.StatusBadRequest, msgDuplicateEmail)
		return
	case errors.Is(err, store.ErrNotFound):
		SignupsTotal.WithLabelValues("unknown_visitor").Inc()
		writeError(w, http.StatusNotFound, msgVisitorNotFound)
		return
	case err != nil:
		s.internalError(w, "failed to create signup", err)
		return
	}

	SignupsTotal.WithLabelValues("success").Inc()
	s.log.Info("new signup",
		slog.Int("position", signup.WaitlistPosition),
		slog.String("feature", signup.MostWantedFeature),
	)

	spots := spotsLeft(s.waitlistCap(), signup.WaitlistPosition)
	writeJSON(w, http.StatusOK, api.SignupResponse{
		Success:   true,
		Position:  signup.WaitlistPosition,
		SpotsLeft: &spots,
		Message:   msgSignupSuccess,
	})
}

func (s *Server) handleSignupCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountSignups(r.Context())
	if err != nil {
		s.internalError(w, "failed to count signups", err)
		return
	}

	spots := spotsLeft(s.waitlistCap(), count)
	writeJSON(w, http.StatusOK, api.CountResponse{Count: count, SpotsLeft: &spots})
}

// validEmail accepts a bare address such as "a@example.com".
func validEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return "", errors.New("invalid email address")
	}
	return email, nil
}
