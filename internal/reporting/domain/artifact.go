package reporting

// Artifact is a serialized report ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}
