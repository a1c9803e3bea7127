package terminal

import (
	"fmt"

	"github.com/odvcencio/buddy/pkg/bus"
)

// FormatEvent renders one bus event as a styled progress line.
func (w *Writer) FormatEvent(evt bus.Event) string {
	check := w.okStyle.Render("✔")
	deleted := w.okStyle.Render("⌫")
	failed := w.errorStyle.Render("✗")

	switch evt.Type {
	case bus.EventAsstCreated:
		return fmt.Sprintf("%s Assistant %s created", check, evt.Name)
	case bus.EventAsstLoaded:
		return fmt.Sprintf("%s Assistant %s loaded", check, evt.Name)
	case bus.EventAsstDeleted:
		return fmt.Sprintf("%s Assistant %s deleted", deleted, evt.Name)
	case bus.EventOrgFileUploading:
		return fmt.Sprintf("%s Uploading %s", w.warnStyle.Render("↥"), evt.Name)
	case bus.EventOrgFileUploaded:
		return fmt.Sprintf("%s Uploaded  %s", w.okStyle.Render("↥"), evt.Name)
	case bus.EventOrgFileDeleted:
		return fmt.Sprintf("%s File %s deleted", deleted, evt.Name)
	case bus.EventOrgFileCantDelete:
		return fmt.Sprintf("%s File %s can't be deleted: %s", failed, evt.Name, evt.Cause)
	case bus.EventAsstFileCantRemove:
		return fmt.Sprintf("%s File %s can't be removed from assistant %s\n   cause: %s",
			failed, evt.ID, evt.AssistantID, evt.Cause)
	case bus.EventInstUploaded:
		return fmt.Sprintf("%s Instructions uploaded", check)
	case bus.EventConvCreated:
		return fmt.Sprintf("%s Conversation created", check)
	case bus.EventConvLoaded:
		return fmt.Sprintf("%s Conversation loaded", check)
	default:
		return fmt.Sprintf("• %s", evt.Type)
	}
}

// PrintEvent writes one formatted event line.
func (w *Writer) PrintEvent(evt bus.Event) {
	w.Println("%s", w.FormatEvent(evt))
}
