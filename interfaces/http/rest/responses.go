package rest

import (
	"net/http"

	"dispatch/pkg/common"
)

// Responder writes the response of a view.
type Responder interface {
	Respond(w http.ResponseWriter, r *http.Request) error
}

// TextResponse is a plain text response.
type TextResponse struct {
	Status int
	Body   string
}

// Text returns a 200 text/plain response.
func Text(body string) *TextResponse {
	return &TextResponse{Status: http.StatusOK, Body: body}
}

// WithStatus sets the status code.
func (t *TextResponse) WithStatus(status int) *TextResponse {
	t.Status = status
	return t
}

// Respond implements Responder
func (t *TextResponse) Respond(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(t.Status)
	_, err := w.Write([]byte(t.Body))
	return err
}

// JSONResponse encodes Body as JSON.
type JSONResponse struct {
	Status int
	Body   any
}

// JSON returns a 200 application/json response.
func JSON(body any) *JSONResponse {
	return &JSONResponse{Status: http.StatusOK, Body: body}
}

// WithStatus sets the status code.
func (j *JSONResponse) WithStatus(status int) *JSONResponse {
	j.Status = status
	return j
}

// Respond implements Responder
func (j *JSONResponse) Respond(w http.ResponseWriter, _ *http.Request) error {
	return common.WriteJSON(w, j.Status, j.Body)
}

type noContent struct{}

// NoContent returns an empty 204 response.
func NoContent() Responder {
	return noContent{}
}

func (noContent) Respond(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}
