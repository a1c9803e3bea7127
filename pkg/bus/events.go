package bus

import "time"

// EventType identifies a domain event.
type EventType string

const (
	// Assistant events
	EventAsstCreated        EventType = "asst_created"
	EventAsstLoaded         EventType = "asst_loaded"
	EventAsstDeleted        EventType = "asst_deleted"
	EventAsstFileCantRemove EventType = "asst_file_cant_remove"

	// Account file events
	EventOrgFileUploading  EventType = "org_file_uploading"
	EventOrgFileUploaded   EventType = "org_file_uploaded"
	EventOrgFileDeleted    EventType = "org_file_deleted"
	EventOrgFileCantDelete EventType = "org_file_cant_delete"

	// Buddy events
	EventInstUploaded EventType = "inst_uploaded"
	EventConvCreated  EventType = "conv_created"
	EventConvLoaded   EventType = "conv_loaded"
)

// Event is one immutable domain notification. Which optional fields are set
// depends on Type; consumers must not rely on observing any event for
// correctness.
type Event struct {
	Type EventType `json:"type"`
	Time time.Time `json:"time"`

	// Name is the assistant name or file display name, per Type.
	Name string `json:"name,omitempty"`
	// ID is the remote assistant or file id, per Type.
	ID string `json:"id,omitempty"`
	// AssistantID is set on attachment-scoped file events.
	AssistantID string `json:"assistant_id,omitempty"`
	// Cause carries the failure reason on cant-delete/cant-remove events.
	Cause string `json:"cause,omitempty"`
}

// AsstCreated builds an assistant-created event.
func AsstCreated(name, id string) Event {
	return Event{Type: EventAsstCreated, Name: name, ID: id}
}

// AsstLoaded builds an assistant-loaded event.
func AsstLoaded(name, id string) Event {
	return Event{Type: EventAsstLoaded, Name: name, ID: id}
}

// AsstDeleted builds an assistant-deleted event.
func AsstDeleted(name, id string) Event {
	return Event{Type: EventAsstDeleted, Name: name, ID: id}
}

// AsstFileCantRemove reports a failed assistant-file detach. Non-fatal.
func AsstFileCantRemove(assistantID, fileID string, cause error) Event {
	return Event{Type: EventAsstFileCantRemove, AssistantID: assistantID, ID: fileID, Cause: cause.Error()}
}

// OrgFileUploading reports an upload about to start.
func OrgFileUploading(fileName string) Event {
	return Event{Type: EventOrgFileUploading, Name: fileName}
}

// OrgFileUploaded reports a completed upload.
func OrgFileUploaded(fileName, fileID string) Event {
	return Event{Type: EventOrgFileUploaded, Name: fileName, ID: fileID}
}

// OrgFileDeleted reports a deleted account file.
func OrgFileDeleted(fileName, fileID string) Event {
	return Event{Type: EventOrgFileDeleted, Name: fileName, ID: fileID}
}

// OrgFileCantDelete reports a failed account-file delete. Non-fatal.
func OrgFileCantDelete(fileName, fileID string, cause error) Event {
	return Event{Type: EventOrgFileCantDelete, Name: fileName, ID: fileID, Cause: cause.Error()}
}

// InstUploaded reports that assistant instructions were pushed.
func InstUploaded() Event {
	return Event{Type: EventInstUploaded}
}

// ConvCreated reports a new conversation thread.
func ConvCreated() Event {
	return Event{Type: EventConvCreated}
}

// ConvLoaded reports a validated existing conversation thread.
func ConvLoaded() Event {
	return Event{Type: EventConvLoaded}
}
