package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/legalbot/jai/internal/auth"
	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/internal/storage"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("register request", zap.String("username", req.Username))
	user, err := s.auth.Register(r.Context(), req.Username, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			s.respondError(w, http.StatusConflict, "username already taken")
			return
		}
		if errors.Is(err, auth.ErrMissingField) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("registration failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"username": user.Username, "status": "registered"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.logger.Error("login failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.tokens.CookieName(),
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		MaxAge:   int(s.tokens.Expiry().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("login succeeded", zap.String("username", user.Username), zap.String("session", claims.SessionID))
	s.respondJSON(w, http.StatusOK, models.LoginResponse{
		Username:  user.Username,
		Name:      user.Name,
		ExpiresAt: claims.ExpiresAt,
	})
}

// handleLogout clears the session cookie and drops the session's conversation
// history. It succeeds even without a valid session so clients can always
// reset their state.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.tokens.CookieName()); err == nil {
		if claims, err := s.tokens.Verify(cookie.Value); err == nil {
			if err := s.chat.Clear(r.Context(), claims.SessionID); err != nil {
				s.logger.Warn("failed to clear conversation on logout", zap.Error(err))
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.tokens.CookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r)
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.logger.Debug("ask request", zap.String("session", claims.SessionID), zap.String("question", req.Question))
	match, err := s.engine.Answer(r.Context(), req.Question)
	if err != nil {
		s.logger.Error("answer lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if match == nil {
		s.respondError(w, http.StatusNotFound, "no matching answer found")
		return
	}
	response := models.AskResponse{
		Question:        req.Question,
		Answer:          match.Record.Answer,
		MatchedQuestion: match.Record.Question,
		Score:           match.Score,
	}
	turn := models.ConversationTurn{
		Question: req.Question,
		Answer:   match.Record.Answer,
		AskedAt:  time.Now(),
	}
	if err := s.chat.Append(r.Context(), claims.SessionID, turn); err != nil {
		s.logger.Warn("failed to record conversation turn", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r)
	turns, err := s.chat.History(r.Context(), claims.SessionID)
	if err != nil {
		s.logger.Error("history lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.HistoryResponse{Turns: turns})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r)
	s.logger.Debug("clear history request", zap.String("session", claims.SessionID))
	if err := s.chat.Clear(r.Context(), claims.SessionID); err != nil {
		s.logger.Error("history clear failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	answerCount, err := s.storage.CountAnswers(ctx)
	if err != nil {
		s.logger.Error("status: count answers failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	userCount, err := s.storage.CountUsers(ctx)
	if err != nil {
		s.logger.Error("status: count users failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response := models.StatusResponse{
		Status:         "ok",
		Version:        s.version,
		Answers:        answerCount,
		Users:          userCount,
		Dimensions:     s.engine.Dimensions(),
		Provider:       s.config.Embedding.Provider,
		CorpusLoadedAt: s.engine.LoadedAt(),
	}
	diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Embedding.ModelPath)
	if err == nil {
		response.DiskUsageBytes = diskBytes
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
