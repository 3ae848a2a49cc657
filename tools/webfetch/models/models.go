package models

import "errors"

// ErrNoContent reports a page that was fetched successfully but yielded no
// visible text. Callers must treat the document as unusable.
var ErrNoContent = errors.New("no content extracted from page")

// Page is the extracted, whitespace-normalized content of one URL.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
