package entities

import "time"

// Message is a single turn in a conversation node's transcript
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment is a file carried by a node, rendered as a separately
// attributed block during context assembly
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// ArtifactVersion is one entry in an artifact node's version history
type ArtifactVersion struct {
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
