package params

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pixetta/pixetta/internal/pixelate"
)

// Errors
var (
	ErrInvalidPixelSize     = fmt.Errorf("Invalid pixel size, must be an integer between %d and %d", pixelate.MinPixelSize, pixelate.MaxPixelSize)
	ErrInvalidBrightness    = fmt.Errorf("Invalid brightness, must be between %g and %g", pixelate.MinBrightness, pixelate.MaxBrightness)
	ErrInvalidContrast      = fmt.Errorf("Invalid contrast, must be between %g and %g", pixelate.MinContrast, pixelate.MaxContrast)
	ErrInvalidShadowRadius  = fmt.Errorf("Invalid shadow radius, must be an integer between %d and %d", pixelate.MinShadowRadius, pixelate.MaxShadowRadius)
	ErrInvalidFileExtension = fmt.Errorf("Invalid file extension")
)

// Params contains all the parameters for a render request
type Params struct {
	Render    pixelate.Params
	Extension string
}

// GetParams parses and returns all the path and query parameters.
// Parameters that are absent fall back to the engine defaults,
// out-of-domain values are rejected.
func GetParams(r *http.Request) (*Params, error) {
	extension, err := getFileExtension(r)
	if err != nil {
		return nil, err
	}

	render := pixelate.DefaultParams()
	query := r.URL.Query()

	if value := query.Get("pixel"); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil || size < pixelate.MinPixelSize || size > pixelate.MaxPixelSize {
			return nil, ErrInvalidPixelSize
		}
		render.PixelSize = size
	}

	if value := query.Get("brightness"); value != "" {
		brightness, err := strconv.ParseFloat(value, 64)
		if err != nil || brightness < pixelate.MinBrightness || brightness > pixelate.MaxBrightness {
			return nil, ErrInvalidBrightness
		}
		render.Brightness = brightness
	}

	if value := query.Get("contrast"); value != "" {
		contrast, err := strconv.ParseFloat(value, 64)
		if err != nil || contrast < pixelate.MinContrast || contrast > pixelate.MaxContrast {
			return nil, ErrInvalidContrast
		}
		render.Contrast = contrast
	}

	if value := query.Get("shadow"); value != "" {
		radius, err := strconv.Atoi(value)
		if err != nil || radius < pixelate.MinShadowRadius || radius > pixelate.MaxShadowRadius {
			return nil, ErrInvalidShadowRadius
		}
		render.ShadowRadius = radius
	}

	return &Params{
		Render:    render,
		Extension: extension,
	}, nil
}

// getFileExtension gets the file extension (if present) from the path params, and validates it
func getFileExtension(r *http.Request) (extension string, err error) {
	vars := mux.Vars(r)

	// We only allow the .png and .jpg extensions, as we only serve png and jpg images
	// We normalize having no extension since it's an optional path param
	val := strings.ToLower(vars["extension"])

	if val == "" {
		val = ".png"
	}

	if val != ".png" && val != ".jpg" {
		return "", ErrInvalidFileExtension
	}

	return val, nil
}

// Query returns the query parameter representation of the render parameters.
// Parameters that match the engine defaults are omitted.
func (p *Params) Query() map[string]string {
	defaults := pixelate.DefaultParams()
	values := make(map[string]string)

	if p.Render.PixelSize != defaults.PixelSize {
		values["pixel"] = strconv.Itoa(p.Render.PixelSize)
	}

	if p.Render.Brightness != defaults.Brightness {
		values["brightness"] = strconv.FormatFloat(p.Render.Brightness, 'f', -1, 64)
	}

	if p.Render.Contrast != defaults.Contrast {
		values["contrast"] = strconv.FormatFloat(p.Render.Contrast, 'f', -1, 64)
	}

	if p.Render.ShadowRadius != defaults.ShadowRadius {
		values["shadow"] = strconv.Itoa(p.Render.ShadowRadius)
	}

	return values
}
