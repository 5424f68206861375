package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Clark-Hu/store-rating/internal/apperr"
)

const maxRequestBody = 1 << 20 // 1 MiB

// envelope wraps every response body.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.WithError(err).Error("failed to encode response")
		}
	}
}

func (s *Server) respondMessage(w http.ResponseWriter, status int, ok bool, message string, data interface{}) {
	s.respondJSON(w, status, envelope{Success: ok, Message: message, Data: data})
}

func (s *Server) respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	s.respondMessage(w, status, true, message, data)
}

// respondError maps err onto the envelope. Internal errors are logged and
// their detail withheld from the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	} else {
		s.logger.WithError(err).WithField("path", r.URL.Path).Debug("request rejected")
	}
	s.respondMessage(w, kind.HTTPStatus(), false, apperr.PublicMessage(err), nil)
}

func (s *Server) respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
		s.respondError(w, r, apperr.Invalid("Malformed JSON payload"))
	case errors.As(err, &typeError):
		s.respondError(w, r, apperr.Invalid(fmt.Sprintf("Invalid value for field %s", typeError.Field)))
	case errors.As(err, &maxBytesError):
		s.respondError(w, r, apperr.Invalid("Request body is too large"))
	case errors.Is(err, io.EOF):
		s.respondError(w, r, apperr.Invalid("Request body cannot be empty"))
	default:
		s.respondError(w, r, apperr.Invalid("Unable to parse request body"))
	}
}
