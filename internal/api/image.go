package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/pixetta/pixetta/internal/database"
	"github.com/pixetta/pixetta/internal/handler"
	"github.com/pixetta/pixetta/internal/params"
)

func (a *API) imageRedirectHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	// Get the path and query parameters
	p, err := params.GetParams(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	// Get the image from the database
	vars := mux.Vars(r)
	imageID := vars["id"]
	image, handlerErr := a.getImage(r, imageID)
	if handlerErr != nil {
		return handlerErr
	}

	// Sign the render URL and redirect to the render service
	query := url.Values{}
	for key, value := range p.Query() {
		query.Set(key, value)
	}

	path := fmt.Sprintf("/id/%s%s", image.ID, p.Extension)
	signedPath, err := params.HMAC(a.HMAC, path, query)
	if err != nil {
		a.logError(r, "error signing render url", err)
		return handler.InternalServerError()
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header()["Content-Type"] = nil
	http.Redirect(w, r, a.RenderServiceURL+signedPath, http.StatusFound)

	return nil
}

func (a *API) getImage(r *http.Request, imageID string) (*database.Image, *handler.Error) {
	databaseImage, err := a.Database.Get(r.Context(), imageID)
	if err != nil {
		if err == database.ErrNotFound {
			return nil, &handler.Error{Message: err.Error(), Code: http.StatusNotFound}
		}

		a.logError(r, "error getting image from database", err)
		return nil, handler.InternalServerError()
	}

	return databaseImage, nil
}
