package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"i4.energy/across/gsmgw/modem"
)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	logger *zap.Logger
	modem  Gateway
	outbox *Outbox
	// token, when set, is required as a bearer token
	token string
	auth  modem.AuthRange

	router *mux.Router
}

func NewServer(logger *zap.Logger, gw Gateway, outbox *Outbox, token string, auth modem.AuthRange) *Server {
	s := &Server{
		logger: logger,
		modem:  gw,
		outbox: outbox,
		token:  token,
		auth:   auth,
		router: mux.NewRouter(),
	}

	s.router.Use(s.requestID)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.NewRoute().Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/sms", s.handleSendSMS).Methods(http.MethodPost)
	api.HandleFunc("/sms", s.handleListSMS).Methods(http.MethodGet)
	api.HandleFunc("/sms/{position:[0-9]+}", s.handleGetSMS).Methods(http.MethodGet)
	api.HandleFunc("/sms/{position:[0-9]+}", s.handleDeleteSMS).Methods(http.MethodDelete)
	api.HandleFunc("/phonebook/{position:[0-9]+}", s.handleGetPhoneNumber).Methods(http.MethodGet)
	api.HandleFunc("/phonebook/{position:[0-9]+}", s.handlePutPhoneNumber).Methods(http.MethodPut)
	api.HandleFunc("/phonebook/{position:[0-9]+}", s.handleDeletePhoneNumber).Methods(http.MethodDelete)
	api.HandleFunc("/calls", s.handleDial).Methods(http.MethodPost)
	api.HandleFunc("/calls", s.handleHangUp).Methods(http.MethodDelete)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	return s
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
				s.sendError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// sendModemError maps a modem failure to a status code.
func (s *Server) sendModemError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, modem.ErrLineBusy), errors.Is(err, ErrOutboxFull):
		status = http.StatusServiceUnavailable
	case errors.Is(err, modem.ErrInvalidPosition):
		status = http.StatusBadRequest
	case errors.Is(err, modem.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, modem.ErrNoResponse):
		status = http.StatusGatewayTimeout
	case errors.Is(err, modem.ErrResponseMismatch):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Modem request failed", zap.Error(err))
	}
	s.sendError(w, err.Error(), status)
}

func position(r *http.Request) int {
	pos, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil {
		return 0
	}
	return pos
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSendSMS queues an SMS for delivery
func (s *Server) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	var req SMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.outbox.Enqueue(req)
	if err != nil {
		s.sendModemError(w, err)
		return
	}

	s.logger.Info("SMS queued", zap.String("id", id), zap.String("to", req.To), zap.Int("message_length", len(req.Message)))
	s.sendJSON(w, map[string]string{"status": "queued", "id": id}, http.StatusAccepted)
}

type smsResponse struct {
	Position int    `json:"position"`
	Status   string `json:"status"`
	Number   string `json:"number"`
	Text     string `json:"text"`
}

func newSMSResponse(sms modem.SMS) smsResponse {
	return smsResponse{Position: sms.Position, Status: sms.Status.String(), Number: sms.Number, Text: sms.Text}
}

func (s *Server) handleListSMS(w http.ResponseWriter, r *http.Request) {
	var filter modem.SMSFilter
	switch status := r.URL.Query().Get("status"); status {
	case "unread":
		filter = modem.SMSUnread
	case "read":
		filter = modem.SMSRead
	case "", "all":
		filter = modem.SMSAll
	default:
		s.sendError(w, "status must be one of unread, read, all", http.StatusBadRequest)
		return
	}

	list, err := s.modem.ListSMS(r.Context(), filter)
	if err != nil {
		s.sendModemError(w, err)
		return
	}

	resp := make([]smsResponse, 0, len(list))
	for _, sms := range list {
		resp = append(resp, newSMSResponse(sms))
	}
	s.sendJSON(w, resp, http.StatusOK)
}

func (s *Server) handleGetSMS(w http.ResponseWriter, r *http.Request) {
	sms, err := s.modem.GetAuthorizedSMS(r.Context(), position(r), 0, s.auth)
	if err != nil {
		s.sendModemError(w, err)
		return
	}
	if sms.Status == modem.NoSMS {
		s.sendError(w, "no message at this position", http.StatusNotFound)
		return
	}
	s.sendJSON(w, newSMSResponse(sms), http.StatusOK)
}

func (s *Server) handleDeleteSMS(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.modem.DeleteSMS(r.Context(), position(r))
	if err != nil {
		s.sendModemError(w, err)
		return
	}
	if !deleted {
		s.sendModemError(w, modem.ErrResponseMismatch)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type phonebookEntry struct {
	Position int    `json:"position"`
	Number   string `json:"number"`
}

func (s *Server) handleGetPhoneNumber(w http.ResponseWriter, r *http.Request) {
	pos := position(r)
	number, err := s.modem.GetPhoneNumber(r.Context(), pos)
	if err != nil {
		s.sendModemError(w, err)
		return
	}
	s.sendJSON(w, phonebookEntry{Position: pos, Number: number}, http.StatusOK)
}

func (s *Server) handlePutPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var entry phonebookEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if entry.Number == "" {
		s.sendError(w, "'number' is required", http.StatusBadRequest)
		return
	}

	entry.Position = position(r)
	if err := s.modem.WritePhoneNumber(r.Context(), entry.Position, entry.Number); err != nil {
		s.sendModemError(w, err)
		return
	}
	s.sendJSON(w, entry, http.StatusOK)
}

func (s *Server) handleDeletePhoneNumber(w http.ResponseWriter, r *http.Request) {
	if err := s.modem.DeletePhoneNumber(r.Context(), position(r)); err != nil {
		s.sendModemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number string `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Number == "" {
		s.sendError(w, "'number' is required", http.StatusBadRequest)
		return
	}

	if err := s.modem.Dial(r.Context(), req.Number); err != nil {
		s.sendModemError(w, err)
		return
	}
	s.logger.Info("Call placed", zap.String("to", req.Number))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHangUp(w http.ResponseWriter, r *http.Request) {
	if err := s.modem.HangUp(r.Context()); err != nil {
		s.sendModemError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.modem.Status()
	s.sendJSON(w, struct {
		Initialized bool   `json:"initialized"`
		Registered  bool   `json:"registered"`
		Line        string `json:"line"`
	}{
		Initialized: status.Has(modem.StatusInitialized),
		Registered:  status.Has(modem.StatusRegistered),
		Line:        s.modem.LineState().String(),
	}, http.StatusOK)
}
