package confluence

// RawAttachment is one entry of the content/{id}/child/attachment listing.
type RawAttachment struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Metadata struct {
		MediaType string `json:"mediaType"`
	} `json:"metadata"`
	Extensions struct {
		FileSize int64 `json:"fileSize"`
	} `json:"extensions"`
	Links struct {
		Download string `json:"download"`
	} `json:"_links"`
}

type attachmentsPage struct {
	Results *[]RawAttachment `json:"results"`
	Links   struct {
		Next string `json:"next"`
	} `json:"_links"`
}
