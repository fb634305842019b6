package model

import "encoding/json"

// Source identifiers for the configured catalogs.
const (
	SourceAIC = "aic"
	SourceMet = "met"
)

// Candidate is one proposed identification of a painting from one catalog.
// A Candidate is immutable once produced by a source adapter; scoring and
// enrichment return updated copies.
type Candidate struct {
	ID              string          `json:"id,omitempty"`
	Rank            int             `json:"rank,omitempty"`
	Source          string          `json:"source"`
	Confidence      float64         `json:"confidence"`
	Artist          *string         `json:"artist"`
	Title           *string         `json:"title"`
	DateCreated     *string         `json:"date_created"`
	LocationPainted *string         `json:"location_painted"`
	Style           *string         `json:"style"`
	Medium          *string         `json:"medium"`
	RawJSON         json.RawMessage `json:"-"`
}

// TextSignals holds text extracted from the uploaded image by the client.
type TextSignals struct {
	Caption  string   `json:"caption,omitempty"`
	OCRText  string   `json:"ocrText,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// IdentifyRequest asks the pipeline to identify an artwork. Museum fields,
// when present, take precedence over the stored artwork's values.
type IdentifyRequest struct {
	ArtworkID     string       `json:"artworkId"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	MuseumName    string       `json:"museum_name,omitempty"`
	MuseumCity    string       `json:"museum_city,omitempty"`
	MuseumCountry string       `json:"museum_country,omitempty"`
	TextSignals   *TextSignals `json:"textSignals,omitempty"`
}

// IdentifyResult reports the candidates stored for an artwork after a run.
type IdentifyResult struct {
	ArtworkID  string      `json:"artworkId"`
	Candidates []Candidate `json:"candidates"`
}
