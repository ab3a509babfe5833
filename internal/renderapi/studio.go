package renderapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixetta/pixetta/internal/handler"
	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/params"
	"github.com/pixetta/pixetta/internal/studio"
)

type createSessionRequest struct {
	ImageID   string `json:"image_id"`
	Extension string `json:"extension"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// Creates a new interactive session for a source image
func (a *API) createSessionHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	var request createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return handler.BadRequest("invalid request body")
	}

	if request.ImageID == "" {
		return handler.BadRequest("image_id is required")
	}

	extension := request.Extension
	if extension == "" {
		extension = ".png"
	}

	if extension != ".png" && extension != ".jpg" {
		return handler.BadRequest(params.ErrInvalidFileExtension.Error())
	}

	sessionID, _ := a.Studio.Create(request.ImageID, getOutputFormat(extension))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(createSessionResponse{SessionID: sessionID}); err != nil {
		a.logError(r, "error encoding session response", err)
		return handler.InternalServerError()
	}

	return nil
}

// Records a new parameter set for the session, coalescing rapid updates
func (a *API) updateSessionHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	session, handlerErr := a.getSession(r)
	if handlerErr != nil {
		return handlerErr
	}

	p, err := params.GetParams(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	session.Update(p.Render)

	w.WriteHeader(http.StatusAccepted)
	return nil
}

// Returns the newest completed render for the session
func (a *API) sessionRenderHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	session, handlerErr := a.getSession(r)
	if handlerErr != nil {
		return handlerErr
	}

	if err := session.Wait(r.Context()); err != nil {
		return &handler.Error{Message: "timed out waiting for render", Code: http.StatusServiceUnavailable}
	}

	seq, result, err := session.Latest()
	if err != nil {
		a.logError(r, "error rendering session image", err)
		return handler.InternalServerError()
	}

	if seq == 0 {
		return &handler.Error{Message: "no render available", Code: http.StatusNotFound}
	}

	extension := ".png"
	if session.Format() == image.JPEG {
		extension = ".jpg"
	}

	w.Header().Set("Content-Type", getContentType(extension))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pixetta-ID", session.ImageID())

	w.Write(result)
	return nil
}

// Closes the session and cancels any in-flight render
func (a *API) closeSessionHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	vars := mux.Vars(r)

	if err := a.Studio.Close(vars["sessionID"]); err != nil {
		return &handler.Error{Message: err.Error(), Code: http.StatusNotFound}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) getSession(r *http.Request) (*studio.Session, *handler.Error) {
	vars := mux.Vars(r)

	session, err := a.Studio.Get(vars["sessionID"])
	if err != nil {
		return nil, &handler.Error{Message: err.Error(), Code: http.StatusNotFound}
	}

	return session, nil
}
