// cmd/api/errors.go
// Error responses. Every error leaves as {"error": ...}; a 500 additionally
// carries the request id so a report can be matched to the log line.
package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgServerError = "the server encountered a problem and could not process your request"
	msgNotFound    = "the requested resource could not be found"
	msgRateLimited = "rate limit exceeded"
)

func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// errorResponse is the building block of the helpers below.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	if err := app.writeJSON(w, status, body, nil); err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs err and answers with a generic message. err never reaches the client.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	body := envelope{"error": msgServerError}
	if id := middleware.GetReqID(r.Context()); id != "" {
		body["request_id"] = id
	}
	app.errorResponse(w, r, http.StatusInternalServerError, body)
}

func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, envelope{"error": msgNotFound})
}

func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, envelope{"error": message})
}

func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, envelope{"error": err.Error()})
}

// failedValidationResponse sends a 422 with the field errors collected by a Validator.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, envelope{"error": errors})
}

func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, envelope{"error": msgRateLimited})
}
