package whisper

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Segment is one recognized span from the CLI's JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type payload struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

func loadPayload(path string) (*payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse whisper json: %w", err)
	}
	return &p, nil
}

// TranscriptText returns the full transcript, preferring the top-level text
// field and falling back to concatenated segments.
func (p *payload) TranscriptText() string {
	if text := strings.TrimSpace(p.Text); text != "" {
		return text
	}
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
