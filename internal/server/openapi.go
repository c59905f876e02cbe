package server

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/eastertrail/internal/game"
	"github.com/playperu/eastertrail/internal/storybook"
	"github.com/playperu/eastertrail/internal/upload"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthStatus struct {
	Status string `json:"status" enum:"ok,error"`
}

type dayPath struct {
	Day int `path:"day" minimum:"1" maximum:"3"`
}

type playPath struct {
	ID string `path:"id" format:"uuid"`
}

type playCommandRequest struct {
	playPath
	Command
}

type uploadBackgroundRequest struct {
	File multipart.File `formData:"file" description:"Image file (jpg, jpeg, png, gif, webp)."`
	Day  string         `formData:"day" description:"Day number; omit for an unassigned background."`
}

type uploadItemRequest struct {
	File  multipart.File `formData:"file" description:"Image file (jpg, jpeg, png, gif, webp)."`
	Day   string         `formData:"day" description:"Day number, default 1."`
	Index string         `formData:"index" description:"Item slot, default the current time in milliseconds."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Easter Trail API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Easter storybook trail.")

	add := func(method, path, summary, desc string, setup func(oc openapi.OperationContext)) {
		oc, _ := r.NewOperationContext(method, path)
		oc.SetSummary(summary)
		oc.SetDescription(desc)
		setup(oc)
		_ = r.AddOperation(oc)
	}

	add(http.MethodGet, "/healthz", "Health check",
		"Returns the health status of backend dependencies.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
		})

	add(http.MethodGet, "/api/config", "Get site config",
		"Returns the operator overrides as a flat record; unset keys are null.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(map[string]any{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
		})

	add(http.MethodPost, "/api/config", "Update site config",
		"Merges the given keys into the stored record. Empty strings clear a field. Requires admin_session cookie when a password is configured.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(map[string]any{})
			oc.AddRespStructure(map[string]any{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
		})

	add(http.MethodGet, "/api/days/{day}", "Get day",
		"Returns a day's scene, items, story and goody bag with operator overrides applied.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(dayPath{})
			oc.AddRespStructure(storybook.DayView{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		})

	add(http.MethodPost, "/api/days/{day}/play", "Start playing a day",
		"Creates an in-memory play session for the day.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(dayPath{})
			oc.AddRespStructure(PlayStartResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		})

	add(http.MethodGet, "/api/play/{id}", "Get play state",
		"Returns the current state of a play session.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(playPath{})
			oc.AddRespStructure(game.State{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		})

	add(http.MethodPost, "/api/play/{id}/commands", "Send a command",
		"Applies one player action and returns the new state. Commands the game refuses in its current state return 409.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(playCommandRequest{})
			oc.AddRespStructure(game.State{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		})

	add(http.MethodGet, "/api/play/{id}/events", "SSE state stream",
		"Server-Sent Events stream of state snapshots, including timed changes.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(playPath{})
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
				openapi.WithContentType("text/event-stream"))
		})

	add(http.MethodGet, "/api/play/{id}/ws", "WebSocket command channel",
		"Upgrades to a WebSocket. Send Command frames; receive WSMessage frames.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(playPath{})
			oc.AddRespStructure(WSMessage{}, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
		})

	add(http.MethodPost, "/api/admin-auth", "Admin login",
		"Checks the admin password and sets the admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(AdminLoginRequest{})
			oc.AddRespStructure(AdminLoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
		})

	add(http.MethodGet, "/api/admin-auth", "Admin session status",
		"Reports whether a password is configured and whether the caller is signed in.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(AdminStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
		})

	add(http.MethodDelete, "/api/admin-auth", "Admin logout",
		"Clears the admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(AdminLoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
		})

	add(http.MethodPost, "/api/upload/background", "Upload background",
		"Stores a scene background as background-day-N, replacing an earlier one.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(uploadBackgroundRequest{})
			oc.AddRespStructure(upload.Saved{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		})

	add(http.MethodPost, "/api/upload/item", "Upload item image",
		"Stores a findable item image as day-D-item-I.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(uploadItemRequest{})
			oc.AddRespStructure(upload.Saved{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		})

	add(http.MethodGet, "/api/uploads/backgrounds", "List backgrounds",
		"Lists uploaded backgrounds with the day each is assigned to.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure([]upload.Background{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		})

	add(http.MethodGet, "/api/uploads/items", "List item images",
		"Lists the built-in item images followed by uploaded ones.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure([]upload.Image{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		})

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
