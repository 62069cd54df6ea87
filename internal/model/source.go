package model

import "time"

// Source is a fetched document about the target company.
// Sources are created by discovery, immutable within a run, and only read
// by validators. URL is the join key every downstream stage uses to find
// the raw text.
type Source struct {
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	RawText     string     `json:"raw_text"` // May be empty on fetch failure
	PublishedAt *time.Time `json:"published_at,omitempty"`
	OriginTag   string     `json:"origin_tag,omitempty"` // Discovery channel that produced it
	IsPDF       bool       `json:"is_pdf"`
}

// SourceTexts builds the URL -> raw text lookup used by the validators.
// Sources without text are skipped: an empty body means "cannot verify",
// not "known source".
func SourceTexts(sources []Source) map[string]string {
	texts := make(map[string]string, len(sources))
	for _, s := range sources {
		if s.URL != "" && s.RawText != "" {
			texts[s.URL] = s.RawText
		}
	}
	return texts
}
