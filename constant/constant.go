package constant

// UploadStatus is the processing lifecycle of a game film upload.
// "processing" is the initial state; "ready" and "error" are terminal.
type UploadStatus string

const (
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusReady      UploadStatus = "ready"
	UploadStatusError      UploadStatus = "error"
)

// Terminal reports whether no further automatic transition can occur.
func (s UploadStatus) Terminal() bool {
	return s == UploadStatusReady || s == UploadStatusError
}

type ClipStatus string

const (
	ClipStatusPublished ClipStatus = "published"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
