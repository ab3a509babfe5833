package renderapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pixetta/pixetta/internal/handler"
	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/params"
	"github.com/pixetta/pixetta/internal/pixelate"
)

func (a *API) imageHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	// Validate the request signature
	valid, err := params.ValidateHMAC(a.HMAC, r)
	if err != nil {
		a.logError(r, "error validating hmac", err)
		return handler.InternalServerError()
	}

	if !valid {
		return &handler.Error{Message: "invalid signature", Code: http.StatusForbidden}
	}

	// Get the path and query parameters
	p, err := params.GetParams(r)
	if err != nil {
		return handler.BadRequest(err.Error())
	}

	vars := mux.Vars(r)
	imageID := vars["id"]

	// Build the render task
	task := image.NewTask(imageID, getOutputFormat(p.Extension))
	task.Params = p.Render

	// Process the image
	processedImage, err := a.ImageProcessor.ProcessImage(r.Context(), task)
	if err != nil {
		a.logError(r, "error processing image", err)
		return handler.InternalServerError()
	}

	// Set the headers
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", buildFilename(imageID, p)))
	w.Header().Set("Content-Type", getContentType(p.Extension))
	w.Header().Set("Cache-Control", "public, max-age=2592000") // Cache for a month
	w.Header().Set("Pixetta-ID", imageID)

	// Return the image
	w.Write(processedImage)

	return nil
}

func getOutputFormat(extension string) image.OutputFormat {
	switch extension {
	case ".jpg":
		return image.JPEG
	default:
		return image.PNG
	}
}

func getContentType(extension string) string {
	switch extension {
	case ".jpg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

func buildFilename(imageID string, p *params.Params) string {
	filename := imageID

	defaults := pixelate.DefaultParams()

	if p.Render.PixelSize != defaults.PixelSize {
		filename += fmt.Sprintf("-pixel_%d", p.Render.PixelSize)
	}

	if p.Render.Brightness != defaults.Brightness {
		filename += "-brightness_" + strconv.FormatFloat(p.Render.Brightness, 'f', -1, 64)
	}

	if p.Render.Contrast != defaults.Contrast {
		filename += "-contrast_" + strconv.FormatFloat(p.Render.Contrast, 'f', -1, 64)
	}

	if p.Render.ShadowRadius != defaults.ShadowRadius {
		filename += fmt.Sprintf("-shadow_%d", p.Render.ShadowRadius)
	}

	filename += p.Extension

	return filename
}
