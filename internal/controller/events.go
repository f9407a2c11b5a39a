package controller

// Event kinds emitted by the controller.
const (
	EventOpened    = "document.opened"
	EventCreated   = "document.created"
	EventClosed    = "document.closed"
	EventSaved     = "document.saved"
	EventSorted    = "document.sorted"
	EventReloaded  = "document.reloaded"
	EventActivated = "document.activated"
	EventRenamed   = "document.renamed"
	EventRestored  = "session.restored"
	EventPersisted = "session.saved"
	EventFontSize  = "session.font_size"
)

// Event describes one change to the session.
type Event struct {
	Kind     string `json:"kind"`
	ID       int    `json:"id,omitempty"`
	Path     string `json:"path,omitempty"`
	Title    string `json:"title,omitempty"`
	FontSize int    `json:"font_size,omitempty"`
}

func (c *Controller) emit(ev Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

func (c *Controller) pathsChanged() {
	if c.onPaths == nil {
		return
	}
	paths := make([]string, 0, c.session.Len())
	for _, p := range c.session.Paths() {
		if p != "" {
			paths = append(paths, p)
		}
	}
	c.onPaths(paths)
}
