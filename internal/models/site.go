// Package models defines the wire types of the folio sitemap.
package models

import "encoding/json"

// Entry is the serialized form of one sitemap node. Keys are kept short
// because the payload is downloaded by the client-side navigator.
type Entry struct {
	Title       string  `json:"t,omitempty"`
	Description string  `json:"a,omitempty"`
	Link        string  `json:"p,omitempty"`
	Children    []Entry `json:"c,omitempty"`
	Hidden      bool    `json:"h,omitempty"`
	Modified    string  `json:"m,omitempty"`
	Subsection  bool    `json:"s,omitempty"`
}

// Site is the top-level sitemap: the main content tree and the footer tree.
// It encodes as a two-element JSON array.
type Site struct {
	Main   []Entry
	Footer []Entry
}

// MarshalJSON encodes s as [main, footer]; absent trees encode as [].
func (s Site) MarshalJSON() ([]byte, error) {
	main, footer := s.Main, s.Footer
	if main == nil {
		main = []Entry{}
	}
	if footer == nil {
		footer = []Entry{}
	}
	return json.Marshal([2][]Entry{main, footer})
}

// UnmarshalJSON decodes the two-element array form.
func (s *Site) UnmarshalJSON(data []byte) error {
	var pair [2][]Entry
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	s.Main, s.Footer = pair[0], pair[1]
	return nil
}
