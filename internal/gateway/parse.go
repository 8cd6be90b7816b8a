package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vbonduro/closet/internal/domain"
)

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseClassification validates a model's classification JSON.
func ParseClassification(raw string) (*Classification, error) {
	var out struct {
		Category    string `json:"category"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrClassification, err)
	}
	category, err := domain.ParseCategory(out.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	desc := strings.TrimSpace(out.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: empty description", ErrClassification)
	}
	return &Classification{
		Category:    category,
		Description: desc,
		Color:       strings.TrimSpace(out.Color),
	}, nil
}

// ParseSelection validates the shape of a selection. It does not check the
// IDs against any inventory.
func ParseSelection(raw string) (*Selection, error) {
	var out Selection
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrSelection, err)
	}
	if out.SelectedIDs == nil {
		return nil, fmt.Errorf("%w: missing selectedIds", ErrSelection)
	}
	out.StylistNote = strings.TrimSpace(out.StylistNote)
	return &out, nil
}
