// Package router wires the HTTP surface of the service: the auth,
// progress, notes, content and health endpoints, plus the logging and
// gzip middleware. Handlers only translate between HTTP and the
// service layer.
package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/coursetrack/internal/content"
	"github.com/patric-chuzhbe/coursetrack/internal/db/storage"
	"github.com/patric-chuzhbe/coursetrack/internal/gzippedhttp"
	"github.com/patric-chuzhbe/coursetrack/internal/logger"
	"github.com/patric-chuzhbe/coursetrack/internal/models"
	"github.com/patric-chuzhbe/coursetrack/internal/service"
)

// Router holds the handlers' collaborators.
type Router struct {
	service  *service.Service
	gateway  *content.Gateway
	validate *validator.Validate
}

// New assembles the chi mux with every route and middleware attached.
func New(theService *service.Service, gateway *content.Gateway) *chi.Mux {
	theRouter := &Router{
		service:  theService,
		gateway:  gateway,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Post(`/api/auth`, theRouter.PostAPIAuth)
	router.Post(`/api/progress/{username}`, theRouter.PostAPIProgress)
	router.Get(`/api/progress/{username}`, theRouter.GetAPIProgress)
	router.Post(`/api/notes/{username}`, theRouter.PostAPINotes)
	router.Get(`/api/notes/{username}`, theRouter.GetAPINotes)
	router.Get(`/api/notes/{username}/{episodeId}`, theRouter.GetAPINotes)
	router.Get(`/api/content/{type}/{episode}`, theRouter.GetAPIContent)
	router.Get(`/api/content/{type}/{episode}/{file}`, theRouter.GetAPIContent)
	router.Get(`/api/health`, theRouter.GetAPIHealth)

	return router
}

func writeJSON(response http.ResponseWriter, statusCode int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, statusCode int, message string) {
	writeJSON(response, statusCode, models.ErrorResponse{Error: message})
}

// writeServiceError maps service and storage failures onto the
// documented status codes. Anything unexpected, a corrupt record
// included, becomes a plain 500 and is logged with its cause.
func writeServiceError(response http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(response, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrUnauthorized):
		writeError(response, http.StatusUnauthorized, err.Error())

	case errors.Is(err, storage.ErrRecordNotFound):
		writeError(response, http.StatusNotFound, "unknown user")

	default:
		logger.Log.Debugln("Internal error while handling the request: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "internal error")
	}
}

// PostAPIAuth is the combined register-or-login endpoint.
func (r *Router) PostAPIAuth(response http.ResponseWriter, request *http.Request) {
	var authRequest models.AuthRequest
	if err := json.NewDecoder(request.Body).Decode(&authRequest); err != nil {
		writeError(response, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := r.validate.Struct(authRequest); err != nil {
		writeError(response, http.StatusBadRequest, service.ErrInvalidRequest.Error())
		return
	}

	result, err := r.service.Authenticate(request.Context(), authRequest.Username, authRequest.Password)
	if err != nil {
		writeServiceError(response, err)
		return
	}

	message := "login successful"
	if result.Registered {
		message = "registration successful"
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{
		Success:  true,
		Message:  message,
		Username: result.Username,
		Data:     result.Progress,
	})
}

// PostAPIProgress replaces the user's progress blob.
func (r *Router) PostAPIProgress(response http.ResponseWriter, request *http.Request) {
	var saveRequest models.SaveProgressRequest
	if err := json.NewDecoder(request.Body).Decode(&saveRequest); err != nil {
		writeError(response, http.StatusBadRequest, "invalid request body")
		return
	}

	err := r.service.SaveProgress(
		request.Context(),
		chi.URLParam(request, "username"),
		saveRequest.Progress,
	)
	if err != nil {
		writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.SaveResponse{
		Success: true,
		Message: "progress saved",
	})
}

// GetAPIProgress returns the user's progress blob.
func (r *Router) GetAPIProgress(response http.ResponseWriter, request *http.Request) {
	progress, err := r.service.GetProgress(request.Context(), chi.URLParam(request, "username"))
	if err != nil {
		writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.ProgressResponse{
		Success:  true,
		Progress: progress,
	})
}

// PostAPINotes stores one note entry for the user.
func (r *Router) PostAPINotes(response http.ResponseWriter, request *http.Request) {
	var saveRequest models.SaveNoteRequest
	if err := json.NewDecoder(request.Body).Decode(&saveRequest); err != nil {
		writeError(response, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := r.validate.Struct(saveRequest); err != nil {
		writeError(response, http.StatusBadRequest, "episodeId and noteType must not be empty")
		return
	}

	err := r.service.SaveNote(
		request.Context(),
		chi.URLParam(request, "username"),
		saveRequest.EpisodeID,
		saveRequest.NoteType,
		saveRequest.Content,
	)
	if err != nil {
		writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.SaveResponse{
		Success: true,
		Message: "note saved",
	})
}

// GetAPINotes returns the user's full notes mapping, or a single
// episode's entries when the episodeId path parameter is present.
func (r *Router) GetAPINotes(response http.ResponseWriter, request *http.Request) {
	notes, err := r.service.GetNotes(
		request.Context(),
		chi.URLParam(request, "username"),
		chi.URLParam(request, "episodeId"),
	)
	if err != nil {
		writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.NotesResponse{
		Success: true,
		Notes:   notes,
	})
}

// GetAPIContent serves a course content file or a directory listing.
func (r *Router) GetAPIContent(response http.ResponseWriter, request *http.Request) {
	result, err := r.gateway.Resolve(
		chi.URLParam(request, "type"),
		chi.URLParam(request, "episode"),
		chi.URLParam(request, "file"),
	)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			writeError(response, http.StatusNotFound, "no such content")
			return
		}
		writeServiceError(response, err)
		return
	}

	if result.Listing {
		writeJSON(response, http.StatusOK, models.ContentListResponse{
			Success: true,
			Files:   result.Files,
		})
		return
	}

	writeJSON(response, http.StatusOK, models.ContentResponse{
		Success: true,
		Content: result.Content,
	})
}

// GetAPIHealth reports liveness.
func (r *Router) GetAPIHealth(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, models.HealthResponse{
		Status: "ok",
		Time:   time.Now(),
	})
}
