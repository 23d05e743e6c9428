package handler

import (
	"encoding/base64"
	"strings"

	"github.com/go-faster/errors"

	"github.com/storefront-go/storefront/internal/domain/catalog"
)

const defaultImageContentType = "application/octet-stream"

// decodeImages turns uploaded image references into raw image data. Each
// reference is either a data URI ("data:image/png;base64,...") or bare
// base64; malformed references fail as catalog.ErrInvalidInput.
func decodeImages(refs []string) ([]catalog.ImageData, error) {
	images := make([]catalog.ImageData, 0, len(refs))
	for _, ref := range refs {
		img, err := decodeImageRef(ref)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func decodeImageRef(ref string) (catalog.ImageData, error) {
	contentType := defaultImageContentType
	payload := ref

	if rest, ok := strings.CutPrefix(ref, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found {
			return catalog.ImageData{}, errors.Wrap(catalog.ErrInvalidInput, "malformed image data uri")
		}
		if ct, _, _ := strings.Cut(meta, ";"); ct != "" {
			contentType = ct
		}
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return catalog.ImageData{}, errors.Wrap(catalog.ErrInvalidInput, "image is not valid base64")
	}
	if len(data) == 0 {
		return catalog.ImageData{}, errors.Wrap(catalog.ErrInvalidInput, "empty image")
	}
	return catalog.ImageData{ContentType: contentType, Data: data}, nil
}
