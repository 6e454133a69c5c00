package entities

import (
	"fmt"
	"time"

	"canvas-backend/domain/core/valueobjects"
)

// Node is a typed entity on the canvas. Its Kind determines which
// fields of Data are meaningful.
type Node struct {
	ID       valueobjects.NodeID     `json:"id"`
	Kind     valueobjects.NodeKind   `json:"kind"`
	Position valueobjects.Position   `json:"position"`
	Size     valueobjects.Dimensions `json:"size"`
	ZIndex   int                     `json:"zIndex"`
	Selected bool                    `json:"selected"`
	Data     NodeData                `json:"data"`
}

// NodeData is the node's payload: a shared metadata subset plus
// kind-specific fields populated by the per-kind factory
type NodeData struct {
	// Shared metadata
	Title               string                           `json:"title"`
	Color               string                           `json:"color,omitempty"`
	ParentID            valueobjects.NodeID              `json:"parentId,omitempty"`
	Tags                []string                         `json:"tags,omitempty"`
	Summary             string                           `json:"summary,omitempty"`
	KeyEntities         []string                         `json:"keyEntities,omitempty"`
	ContextRole         string                           `json:"contextRole,omitempty"`
	ContextPriority     valueobjects.ContextPriority     `json:"contextPriority"`
	Enabled             bool                             `json:"enabled"`
	ActivationCondition valueobjects.ActivationCondition `json:"activationCondition"`
	IncludeInContext    bool                             `json:"includeInContext"`
	Properties          map[string]interface{}           `json:"properties,omitempty"`
	Attachments         []Attachment                     `json:"attachments,omitempty"`
	CreatedAt           time.Time                        `json:"createdAt"`
	UpdatedAt           time.Time                        `json:"updatedAt"`

	// Conversation
	Provider string    `json:"provider,omitempty"`
	Messages []Message `json:"messages,omitempty"`

	// Note, text, artifact
	Content string `json:"content,omitempty"`

	// Task
	Status       string `json:"status,omitempty"`
	TaskPriority string `json:"taskPriority,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`

	// Project
	ChildIDs []valueobjects.NodeID `json:"childIds,omitempty"`

	// Artifact
	Versions        []ArtifactVersion            `json:"versions,omitempty"`
	InjectionFormat valueobjects.InjectionFormat `json:"injectionFormat,omitempty"`
}

// NewNode constructs a node of the given kind with its kind-specific
// default payload. An unrecognized kind is a caller/schema mismatch
// and panics rather than returning an error.
func NewNode(kind valueobjects.NodeKind, position valueobjects.Position) *Node {
	if !kind.IsValid() {
		panic(fmt.Sprintf("entities: unknown node kind %q", kind))
	}

	return &Node{
		ID:       valueobjects.NewNodeID(),
		Kind:     kind,
		Position: position,
		Size:     defaultSizeForKind(kind),
		Data:     defaultDataForKind(kind),
	}
}

func defaultSizeForKind(kind valueobjects.NodeKind) valueobjects.Dimensions {
	switch kind {
	case valueobjects.KindWorkspace, valueobjects.KindProject:
		return valueobjects.NewDimensions(480, 360)
	case valueobjects.KindConversation:
		return valueobjects.NewDimensions(360, 280)
	default:
		return valueobjects.NewDimensions(240, 160)
	}
}

func defaultDataForKind(kind valueobjects.NodeKind) NodeData {
	now := time.Now()
	data := NodeData{
		ContextPriority:     valueobjects.PriorityMedium,
		Enabled:             true,
		ActivationCondition: valueobjects.ActivateAlways,
		IncludeInContext:    true,
		Properties:          map[string]interface{}{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	switch kind {
	case valueobjects.KindConversation:
		data.Title = "New Conversation"
		data.Provider = "openai"
		data.Messages = []Message{}
	case valueobjects.KindNote:
		data.Title = "New Note"
	case valueobjects.KindTask:
		data.Title = "New Task"
		data.Status = "todo"
		data.TaskPriority = "medium"
	case valueobjects.KindProject:
		data.Title = "New Project"
		data.ChildIDs = []valueobjects.NodeID{}
	case valueobjects.KindArtifact:
		data.Title = "New Artifact"
		data.InjectionFormat = valueobjects.InjectFull
		data.Versions = []ArtifactVersion{}
	case valueobjects.KindWorkspace:
		data.Title = "New Workspace"
	case valueobjects.KindText:
		data.Title = "Text"
	case valueobjects.KindAction:
		data.Title = "New Action"
	case valueobjects.KindOrchestrator:
		data.Title = "Orchestrator"
	}

	return data
}

// Clone returns a deep copy of the node. History snapshots hold
// clones, never aliases of live entities.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Data = n.Data.Clone()
	return &c
}

// Clone returns a deep copy of the payload
func (d NodeData) Clone() NodeData {
	c := d
	c.Tags = cloneStrings(d.Tags)
	c.KeyEntities = cloneStrings(d.KeyEntities)
	c.Properties = cloneProperties(d.Properties)
	if d.Attachments != nil {
		c.Attachments = make([]Attachment, len(d.Attachments))
		copy(c.Attachments, d.Attachments)
	}
	if d.Messages != nil {
		c.Messages = make([]Message, len(d.Messages))
		copy(c.Messages, d.Messages)
	}
	if d.ChildIDs != nil {
		c.ChildIDs = make([]valueobjects.NodeID, len(d.ChildIDs))
		copy(c.ChildIDs, d.ChildIDs)
	}
	if d.Versions != nil {
		c.Versions = make([]ArtifactVersion, len(d.Versions))
		copy(c.Versions, d.Versions)
	}
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneProperties(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if list, ok := v.([]string); ok {
			out[k] = cloneStrings(list)
			continue
		}
		out[k] = v
	}
	return out
}

// ContentLength returns the size of the node's primary text content,
// used in cache fingerprints
func (d NodeData) ContentLength() int {
	length := len(d.Content)
	for _, m := range d.Messages {
		length += len(m.Content)
	}
	return length
}

// NodePatch carries a partial update to a node's payload. Nil fields
// are left untouched; Properties entries are merged into the bag.
type NodePatch struct {
	Title               *string
	Color               *string
	ParentID            *valueobjects.NodeID
	Tags                *[]string
	Summary             *string
	KeyEntities         *[]string
	ContextRole         *string
	ContextPriority     *valueobjects.ContextPriority
	Enabled             *bool
	ActivationCondition *valueobjects.ActivationCondition
	IncludeInContext    *bool
	Properties          map[string]interface{}
	Provider            *string
	Content             *string
	Status              *string
	TaskPriority        *string
	DueDate             *string
	InjectionFormat     *valueobjects.InjectionFormat
}

// Apply merges the patch into the payload and stamps UpdatedAt
func (p NodePatch) Apply(d *NodeData) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	if p.ParentID != nil {
		d.ParentID = *p.ParentID
	}
	if p.Tags != nil {
		d.Tags = cloneStrings(*p.Tags)
	}
	if p.Summary != nil {
		d.Summary = *p.Summary
	}
	if p.KeyEntities != nil {
		d.KeyEntities = cloneStrings(*p.KeyEntities)
	}
	if p.ContextRole != nil {
		d.ContextRole = *p.ContextRole
	}
	if p.ContextPriority != nil {
		d.ContextPriority = *p.ContextPriority
	}
	if p.Enabled != nil {
		d.Enabled = *p.Enabled
	}
	if p.ActivationCondition != nil {
		d.ActivationCondition = *p.ActivationCondition
	}
	if p.IncludeInContext != nil {
		d.IncludeInContext = *p.IncludeInContext
	}
	if len(p.Properties) > 0 {
		if d.Properties == nil {
			d.Properties = map[string]interface{}{}
		}
		for k, v := range p.Properties {
			d.Properties[k] = v
		}
	}
	if p.Provider != nil {
		d.Provider = *p.Provider
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.TaskPriority != nil {
		d.TaskPriority = *p.TaskPriority
	}
	if p.DueDate != nil {
		d.DueDate = *p.DueDate
	}
	if p.InjectionFormat != nil {
		d.InjectionFormat = *p.InjectionFormat
	}
	d.UpdatedAt = time.Now()
}
