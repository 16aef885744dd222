// Package router wires the HTTP surface: route registration, request
// decoding and validation, and the single translator mapping domain errors
// to status codes and the uniform {success, message} error body.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/jobtrack/internal/auth"
	"github.com/patric-chuzhbe/jobtrack/internal/authenticator"
	"github.com/patric-chuzhbe/jobtrack/internal/gzippedhttp"
	"github.com/patric-chuzhbe/jobtrack/internal/logger"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/service"
)

var errMalformedJSON = errors.New("request body is not valid JSON")

var validate = validator.New()

// Router holds the handler dependencies: the service layer and the
// token issuer.
type Router struct {
	svc  *service.Service
	auth authenticator.Authenticator
}

// New builds the chi mux with the full route table and middleware chain.
func New(svc *service.Service, theAuth authenticator.Authenticator) *chi.Mux {
	h := &Router{
		svc:  svc,
		auth: theAuth,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Post(`/auth/register`, h.PostRegister)
	router.Post(`/auth/login`, h.PostLogin)

	router.With(theAuth.RequireAuth).Put(`/user/update-user`, h.PutUpdateUser)

	router.Route(`/job`, func(router chi.Router) {
		router.Use(theAuth.RequireAuth)
		router.Post(`/create-job`, h.PostCreateJob)
		router.Get(`/get-job`, h.GetJobs)
		router.Put(`/update-job/{id}`, h.PutUpdateJob)
		router.Delete(`/delete-job/{id}`, h.DeleteJob)
		router.Get(`/job-stats`, h.GetJobStats)
	})

	router.Get(`/ping`, h.GetPing)

	return router
}

// PostRegister handles POST /auth/register: creates the identity and
// responds with its non-secret fields plus a fresh token.
func (h *Router) PostRegister(response http.ResponseWriter, request *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(request, &req); err != nil {
		writeError(response, err)
		return
	}

	usr, err := h.svc.Register(request.Context(), req)
	if err != nil {
		writeError(response, err)
		return
	}

	token, err := h.auth.IssueToken(usr.ID)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    usr,
		Token:   token,
	})
}

// PostLogin handles POST /auth/login: verifies the credential and responds
// with the identity plus a fresh token.
func (h *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(request, &req); err != nil {
		writeError(response, err)
		return
	}

	usr, err := h.svc.Login(request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(response, err)
		return
	}

	token, err := h.auth.IssueToken(usr.ID)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{
		Success: true,
		Message: "Login Successful",
		User:    usr,
		Token:   token,
	})
}

// PutUpdateUser handles PUT /user/update-user for the authenticated identity.
func (h *Router) PutUpdateUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, service.ErrUserNotFound)
		return
	}

	var req models.UpdateUserRequest
	if err := decodeAndValidate(request, &req); err != nil {
		writeError(response, err)
		return
	}

	usr, err := h.svc.UpdateUser(request.Context(), userID, req)
	if err != nil {
		writeError(response, err)
		return
	}

	token, err := h.auth.IssueToken(usr.ID)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{
		Success: true,
		User:    usr,
		Token:   token,
	})
}

// PostCreateJob handles POST /job/create-job. The record owner is the
// authenticated identity regardless of the request body.
func (h *Router) PostCreateJob(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	var req models.JobRequest
	if err := decodeAndValidate(request, &req); err != nil {
		writeError(response, err)
		return
	}

	theJob, err := h.svc.CreateJob(request.Context(), userID, req)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.CreateJobResponse{Job: theJob})
}

// GetJobs handles GET /job/get-job with the filter, sort and pagination
// query parameters.
func (h *Router) GetJobs(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	query := request.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	filter := models.JobsFilter{
		Status:   query.Get("status"),
		WorkType: query.Get("workType"),
		Search:   query.Get("search"),
		Sort:     query.Get("sort"),
		Page:     page,
		Limit:    limit,
	}

	list, err := h.svc.GetJobs(request.Context(), userID, filter)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, list)
}

// PutUpdateJob handles PUT /job/update-job/{id}.
func (h *Router) PutUpdateJob(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	jobID := chi.URLParam(request, "id")

	var req models.JobRequest
	if err := decodeAndValidate(request, &req); err != nil {
		writeError(response, err)
		return
	}

	theJob, err := h.svc.UpdateJob(request.Context(), userID, jobID, req)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.UpdateJobResponse{UpdateJob: theJob})
}

// DeleteJob handles DELETE /job/delete-job/{id}.
func (h *Router) DeleteJob(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	jobID := chi.URLParam(request, "id")

	if err := h.svc.DeleteJob(request.Context(), userID, jobID); err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.APIMessage{
		Success: true,
		Message: "Success, Job deleted!",
	})
}

// GetJobStats handles GET /job/job-stats.
func (h *Router) GetJobStats(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	stats, err := h.svc.GetJobStats(request.Context(), userID)
	if err != nil {
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

// GetPing handles GET /ping, reporting storage health.
func (h *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := h.svc.Ping(request.Context()); err != nil {
		writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func decodeAndValidate(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return errMalformedJSON
	}

	return validate.Struct(target)
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response payload: ", zap.Error(err))
	}
}

func validationErrorMessage(validationErrors validator.ValidationErrors) string {
	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldError.Field()))
		case "email":
			messages = append(messages, "please provide a valid email")
		case "min":
			messages = append(
				messages,
				fmt.Sprintf("%s length should be at least %s characters", fieldError.Field(), fieldError.Param()),
			)
		case "oneof":
			messages = append(
				messages,
				fmt.Sprintf("%s must be one of: %s", fieldError.Field(), fieldError.Param()),
			)
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fieldError.Field()))
		}
	}

	return strings.Join(messages, ", ")
}

// writeError is the single place translating domain errors into HTTP
// status codes and the uniform error body.
func writeError(response http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Something went wrong"

	var validationErrors validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrors):
		statusCode = http.StatusBadRequest
		message = validationErrorMessage(validationErrors)
	case errors.Is(err, errMalformedJSON):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrEmailAlreadyTaken):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrJobNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrNotJobOwner):
		statusCode = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	default:
		logger.Log.Debugln("Unclassified handler error: ", zap.Error(err))
	}

	writeJSON(response, statusCode, models.APIError{
		Success: false,
		Message: message,
	})
}
