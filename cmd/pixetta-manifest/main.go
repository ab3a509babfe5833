package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixetta/pixetta/internal/database"

	_ "image/png"
)

// Comandline flags
var (
	imagePath         = flag.String("image-path", ".", "path to image directory")
	imageManifestPath = flag.String("image-manifest-path", "./metadata.json", "path to the image manifest to write")
)

func main() {
	flag.Parse()

	resolvedImagePath, err := filepath.Abs(*imagePath)
	if err != nil {
		log.Fatal(err)
	}

	resolvedManifestPath, err := filepath.Abs(*imageManifestPath)
	if err != nil {
		log.Fatal(err)
	}

	// Carry over names from an existing manifest
	names := make(map[string]string)
	if manifestData, err := os.ReadFile(resolvedManifestPath); err == nil {
		var existing []database.Image
		if err := json.Unmarshal(manifestData, &existing); err != nil {
			log.Fatal(err)
		}

		for _, img := range existing {
			names[img.ID] = img.Name
		}
	}

	entries, err := os.ReadDir(resolvedImagePath)
	if err != nil {
		log.Fatal(err)
	}

	var images []database.Image
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".png")

		reader, err := os.Open(filepath.Join(resolvedImagePath, entry.Name()))
		if err != nil {
			log.Fatal(err)
		}

		imageMetadata, _, err := image.DecodeConfig(reader)
		reader.Close()
		if err != nil {
			log.Fatalf("%s: %s", entry.Name(), err)
		}

		name, ok := names[id]
		if !ok {
			name = "Untitled"
		}

		images = append(images, database.Image{
			ID:     id,
			Name:   name,
			Width:  imageMetadata.Width,
			Height: imageMetadata.Height,
		})
	}

	if len(images) == 0 {
		log.Fatal(fmt.Errorf("no images found in %s", resolvedImagePath))
	}

	file, err := os.Create(resolvedManifestPath)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(images); err != nil {
		log.Fatal(err)
	}
}
