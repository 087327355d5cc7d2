package commsutil

import "fmt"

// Default COMMS subjects for the action gateway.
const (
	// SubjectDispatchAPI receives API-protocol dispatch requests.
	SubjectDispatchAPI = "action.dispatch.api"
	// SubjectDispatchServer receives server-action dispatch requests.
	SubjectDispatchServer = "action.dispatch.server"
	// SubjectDispatchSystem receives system-rendered dispatch requests.
	SubjectDispatchSystem = "action.dispatch.system"
	// SubjectManifest serves the encrypted action manifest.
	SubjectManifest = "action.manifest"
)

// BuildDispatchSubject builds a dispatch subject for a protocol tag.
func BuildDispatchSubject(protocol string) string {
	return fmt.Sprintf("action.dispatch.%s", protocol)
}
