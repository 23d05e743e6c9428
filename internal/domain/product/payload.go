package product

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// ImagePayload is the image portion of a catalog create/update request.
// Clients historically sent either a single image string or a list of them;
// the ambiguity is resolved exactly once, at JSON decode time, and the rest
// of the system only ever sees the normalized list.
type ImagePayload struct {
	refs []string
}

// SingleImage builds a payload holding one image reference.
func SingleImage(ref string) ImagePayload {
	return ImagePayload{refs: []string{ref}}
}

// MultipleImages builds a payload holding the given image references.
func MultipleImages(refs []string) ImagePayload {
	return ImagePayload{refs: refs}
}

// Refs returns the normalized image references. Nil when no images were sent.
func (p ImagePayload) Refs() []string {
	return p.refs
}

// IsEmpty reports whether the payload carries no images, which on update
// means "keep the existing images".
func (p ImagePayload) IsEmpty() bool {
	return len(p.refs) == 0
}

// UnmarshalJSON accepts a JSON string, an array of strings, or null.
func (p *ImagePayload) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		p.refs = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decode image")
		}
		p.refs = []string{s}
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return errors.Wrap(err, "decode image list")
		}
		p.refs = list
		return nil
	default:
		return errors.New("images must be a string or an array of strings")
	}
}

// MarshalJSON always emits the normalized array form.
func (p ImagePayload) MarshalJSON() ([]byte, error) {
	if p.refs == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.refs)
}
