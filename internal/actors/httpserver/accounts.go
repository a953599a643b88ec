package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/model"
)

type sessionResponse struct {
	Account      model.Account `json:"account"`
	SessionToken string        `json:"session_token"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var args model.SignUpArgs
	if !decode(w, r, &args) {
		return
	}

	resp, err := s.accounts.SignUp(r.Context(), args)
	if err != nil && errors.Is(err, model.ErrNotificationFailed) && resp != nil {
		// the account exists, only the mail did not go out
		log.WithError(err).WithField("email", args.Email).Warn("sign-up mail not delivered")
		writeData(w, r, http.StatusAccepted, resp.Account)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, resp.Account)
}

// handleCheckEmailToken consumes the verification link. It accepts both the mailed GET
// link with query parameters and a JSON POST.
func (s *Server) handleCheckEmailToken(w http.ResponseWriter, r *http.Request) {
	args, ok := linkArgs(w, r)
	if !ok {
		return
	}

	resp, err := s.accounts.CompleteVerification(r.Context(), model.CompleteVerificationArgs{
		Email: args.Email, Token: args.Token,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, sessionResponse{
		Account:      resp.Account,
		SessionToken: resp.SessionToken,
	})
}

func (s *Server) handleResendCheckEmail(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.ResendVerification(r.Context(), args.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleEmailLogin(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.RequestLoginLink(r.Context(), args.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

// handleLoginByEmail consumes the mailed login link.
func (s *Server) handleLoginByEmail(w http.ResponseWriter, r *http.Request) {
	args, ok := linkArgs(w, r)
	if !ok {
		return
	}

	resp, err := s.accounts.ConsumeLoginLink(r.Context(), model.ConsumeLoginLinkArgs{
		Email: args.Email, Token: args.Token,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, sessionResponse{
		Account:      resp.Account,
		SessionToken: resp.SessionToken,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.GetAccount(r.Context(), chi.URLParam(r, "nickname"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, account)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.UpdateProfileArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.UpdateProfile(r.Context(), actor, args); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, actor)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.UpdatePasswordArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.UpdatePassword(r.Context(), actor, args); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.UpdateNotificationsArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.UpdateNotifications(r.Context(), actor, args); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, actor)
}

func (s *Server) handleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.UpdateNicknameArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.UpdateNickname(r.Context(), actor, args); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, actor)
}

func (s *Server) handleAddAccountTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args tagArgs
	if !decode(w, r, &args) {
		return
	}
	tag, err := s.accounts.AddTag(r.Context(), actor, args.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, tag)
}

func (s *Server) handleRemoveAccountTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args tagArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.RemoveTag(r.Context(), actor, args.Title); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleAddAccountZone(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args zoneArgs
	if !decode(w, r, &args) {
		return
	}
	zone, err := s.accounts.AddZone(r.Context(), actor, args.City, args.Province)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, zone)
}

func (s *Server) handleRemoveAccountZone(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args zoneArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.accounts.RemoveZone(r.Context(), actor, args.City, args.Province); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

type tagArgs struct {
	Title string `json:"title"`
}

type zoneArgs struct {
	City     string `json:"city"`
	Province string `json:"province"`
}

type emailTokenArgs struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// linkArgs extracts email and token from the query string on GET (the mailed links) or
// from the JSON body otherwise.
func linkArgs(w http.ResponseWriter, r *http.Request) (emailTokenArgs, bool) {
	if r.Method == http.MethodGet {
		return emailTokenArgs{
			Email: r.URL.Query().Get("email"),
			Token: r.URL.Query().Get("token"),
		}, true
	}
	var args emailTokenArgs
	if !decode(w, r, &args) {
		return emailTokenArgs{}, false
	}
	return args, true
}

// decode reads the JSON request body into v, replying 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, model.Invalid("body", "must be valid JSON"))
		return false
	}
	return true
}
