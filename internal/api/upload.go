package api

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"image/png"
	"io"
	"net/http"

	"github.com/pixetta/pixetta/internal/database"
	"github.com/pixetta/pixetta/internal/handler"
	"github.com/pixetta/pixetta/internal/pixelate"
)

// Max size of an uploaded image
const maxUploadSize = 10 << 20 // 10 MB

// Accepts a source image upload, normalizes it to PNG, and registers it
func (a *API) uploadHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, _, err := r.FormFile("image")
	if err != nil {
		return handler.BadRequest("image file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return handler.BadRequest("error reading image file")
	}

	// Decode to validate the image and get its dimensions
	source, err := pixelate.Decode(data)
	if err != nil {
		return handler.BadRequest("invalid image, must be a valid PNG or JPEG")
	}

	name := r.FormValue("name")
	if name == "" {
		name = "Untitled"
	}

	// Normalize the source to PNG
	var normalized bytes.Buffer
	if err := png.Encode(&normalized, source.Image()); err != nil {
		a.logError(r, "error encoding image", err)
		return handler.InternalServerError()
	}

	image := database.Image{
		ID:     newImageID(),
		Name:   name,
		Width:  source.Width(),
		Height: source.Height(),
	}

	if err := a.Storage.Put(r.Context(), image.ID, normalized.Bytes()); err != nil {
		a.logError(r, "error storing image", err)
		return handler.InternalServerError()
	}

	if err := a.Database.Add(r.Context(), image); err != nil {
		a.logError(r, "error adding image to database", err)
		return handler.InternalServerError()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(a.getListImage(image)); err != nil {
		a.logError(r, "error encoding upload response", err)
		return handler.InternalServerError()
	}

	return nil
}

func newImageID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
