package shell

// Metadata describes the running build. It is what the content bridge
// returns for getAppMetadata.
type Metadata struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	AppURL    string `json:"appUrl"`
}
