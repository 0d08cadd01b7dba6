// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/models"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// InternalMessage is the only detail clients see for unexpected failures
	InternalMessage = "internal server error"
)

// PageInfo describes the position of a paginated listing
type PageInfo struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Envelope is the body of every API response
type Envelope struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Data       interface{}       `json:"data"`
	Errors     map[string]string `json:"errors,omitempty"`
	PageInfo   *PageInfo         `json:"page_info,omitempty"`
}

// JSON writes a success envelope
func JSON(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, Envelope{
		Status:     StatusSuccess,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// Fail writes an error envelope with an explicit status
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, Envelope{
		Status:     StatusError,
		StatusCode: status,
		Message:    message,
	})
}

// Paged writes a success envelope for one page of a listing. Pages past the
// end of a non-empty listing are answered with not found.
func Paged(w http.ResponseWriter, r *http.Request, log *logger.Logger, message string, data interface{}, total int64, page models.Page) {
	if page.Number > 1 && int64(page.Offset()) >= total {
		Error(w, r, log, apperr.NotFound("invalid page"))
		return
	}

	info := &PageInfo{Count: total}
	if int64(page.Number*page.Size) < total {
		info.Next = pageURL(r.URL, page.Number+1)
	}
	if page.Number > 1 {
		info.Previous = pageURL(r.URL, page.Number-1)
	}

	write(w, Envelope{
		Status:     StatusSuccess,
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		PageInfo:   info,
	})
}

// Error maps err to a status code and writes an error envelope. Errors
// without an apperr kind are logged and reported as internal.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	env := Envelope{
		Status:     StatusError,
		StatusCode: kind.HTTPStatus(),
		Message:    err.Error(),
	}

	if kind == apperr.KindInternal {
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		env.Message = InternalMessage
	} else {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Message != "" {
			env.Message = ae.Message
		}
		if ae != nil {
			env.Errors = ae.Fields
		}
	}

	write(w, env)
}

func pageURL(u *url.URL, number int) *string {
	next := *u
	q := next.Query()
	q.Set("page", strconv.Itoa(number))
	next.RawQuery = q.Encode()
	s := next.RequestURI()
	return &s
}

func write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}
