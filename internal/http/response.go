package http

import (
	"encoding/json"
	"net/http"
)

// Notification is a transient banner for the client to show and
// auto-dismiss.
type Notification struct {
	Type     string `json:"type"` // success | error
	Message  string `json:"message"`
	Duration int    `json:"duration"` // milliseconds
}

type envelope struct {
	Data         any           `json:"data,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Response builds a JSON reply fluently: status, payload and an optional
// notification banner.
type Response struct {
	statusCode   int
	headers      map[string]string
	payload      any
	notification *Notification
}

func NewResponse() *Response {
	return &Response{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (r *Response) Status(code int) *Response {
	r.statusCode = code
	return r
}

func (r *Response) Header(key, value string) *Response {
	r.headers[key] = value
	return r
}

func (r *Response) Payload(v any) *Response {
	r.payload = v
	return r
}

func (r *Response) NotifySuccess(message string) *Response {
	r.notification = &Notification{Type: "success", Message: message, Duration: 3000}
	return r
}

func (r *Response) NotifyError(message string) *Response {
	r.notification = &Notification{Type: "error", Message: message, Duration: 5000}
	return r
}

func (r *Response) Write(w http.ResponseWriter) {
	for key, value := range r.headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.statusCode)
	_ = json.NewEncoder(w).Encode(envelope{
		Data:         r.payload,
		Notification: r.notification,
	})
}

func ErrorResponse(code int, message string) *Response {
	return NewResponse().Status(code).NotifyError(message)
}

func BadRequestError(message string) *Response {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *Response {
	return ErrorResponse(http.StatusUnauthorized, message)
}

func ForbiddenError(message string) *Response {
	return ErrorResponse(http.StatusForbidden, message)
}

func NotFoundError(message string) *Response {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *Response {
	return ErrorResponse(http.StatusInternalServerError, message)
}
