package websocket

// FilePayload carries an attachment: the client-declared name and the
// base64 data-URI payload.
type FilePayload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// InboundEvent is one message event sent by an authenticated connection.
// The sender is never taken from the payload; it comes from the owning
// connection's verified identity.
type InboundEvent struct {
	Recipient uint         `json:"recipient"`
	Text      string       `json:"text,omitempty"`
	File      *FilePayload `json:"file,omitempty"`
}

// UserRef is one entry of the online set.
type UserRef struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

// PresencePayload is the full-state online list pushed to every
// connection after any registry change.
type PresencePayload struct {
	Online []UserRef `json:"online"`
}

// DeliveryPayload is a persisted message pushed to the recipient's live
// connections. File keeps the original upload name; the stored reference
// travels only in the persisted record.
type DeliveryPayload struct {
	Text      string       `json:"text,omitempty"`
	Sender    uint         `json:"sender"`
	Recipient uint         `json:"recipient"`
	File      *FilePayload `json:"file"`
	MessageID string       `json:"_id"`
}
