package contextassembly

import (
	"fmt"
	"strings"

	"canvas-backend/domain/core/entities"
	"canvas-backend/domain/core/valueobjects"
)

// renderNode formats one reachable node with the template for its kind
func (a *Assembler) renderNode(r entry, settings Settings) string {
	var b strings.Builder

	role := r.node.Data.ContextRole
	if role == "" {
		role = defaultRole(r.node.Kind)
	}
	fmt.Fprintf(&b, "[%s: %s]", role, r.node.Data.Title)
	writeMetadata(&b, r)

	switch r.node.Kind {
	case valueobjects.KindConversation:
		renderConversation(&b, r.node, settings.ConversationTail)
	case valueobjects.KindTask:
		renderTask(&b, r.node)
	case valueobjects.KindArtifact:
		a.renderArtifact(&b, r.node, settings)
	case valueobjects.KindProject:
		renderProject(&b, r.node)
	default:
		renderGeneric(&b, r.node)
	}

	return strings.TrimRight(b.String(), "\n")
}

func defaultRole(kind valueobjects.NodeKind) string {
	switch kind {
	case valueobjects.KindConversation:
		return "Conversation"
	case valueobjects.KindNote:
		return "Note"
	case valueobjects.KindTask:
		return "Task"
	case valueobjects.KindProject:
		return "Project"
	case valueobjects.KindArtifact:
		return "Artifact"
	case valueobjects.KindWorkspace:
		return "Workspace"
	case valueobjects.KindOrchestrator:
		return "Orchestrator"
	case valueobjects.KindAction:
		return "Action"
	default:
		return "Text"
	}
}

func writeMetadata(b *strings.Builder, r entry) {
	if len(r.node.Data.Tags) > 0 {
		fmt.Fprintf(b, "\nTags: %s", strings.Join(r.node.Data.Tags, ", "))
	}
	if len(r.node.Data.KeyEntities) > 0 {
		fmt.Fprintf(b, "\nKey entities: %s", strings.Join(r.node.Data.KeyEntities, ", "))
	}
	if r.label != "" {
		fmt.Fprintf(b, "\nRelationship: %s", r.label)
	}
}

func renderConversation(b *strings.Builder, node *entities.Node, tail int) {
	if node.Data.Provider != "" {
		fmt.Fprintf(b, "\nProvider: %s", node.Data.Provider)
	}
	msgs := node.Data.Messages
	if tail <= 0 {
		tail = 5
	}
	if len(msgs) > tail {
		msgs = msgs[len(msgs)-tail:]
	}
	for _, m := range msgs {
		fmt.Fprintf(b, "\n%s: %s", m.Role, m.Content)
	}
}

func renderTask(b *strings.Builder, node *entities.Node) {
	parts := make([]string, 0, 3)
	if node.Data.Status != "" {
		parts = append(parts, "Status: "+node.Data.Status)
	}
	if node.Data.TaskPriority != "" {
		parts = append(parts, "Priority: "+node.Data.TaskPriority)
	}
	if node.Data.DueDate != "" {
		parts = append(parts, "Due: "+node.Data.DueDate)
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, "\n%s", strings.Join(parts, " | "))
	}
	if node.Data.Content != "" {
		fmt.Fprintf(b, "\n%s", node.Data.Content)
	}
}

func (a *Assembler) renderArtifact(b *strings.Builder, node *entities.Node, settings Settings) {
	switch node.Data.InjectionFormat {
	case valueobjects.InjectSummary:
		if node.Data.Summary != "" {
			fmt.Fprintf(b, "\n%s", node.Data.Summary)
		}
	case valueobjects.InjectChunked:
		chunk, truncated := a.tokenizer.Truncate(node.Data.Content, settings.ChunkTokenBudget)
		if chunk != "" {
			fmt.Fprintf(b, "\n%s", chunk)
		}
		if truncated {
			b.WriteString("\n[truncated: token budget reached]")
		}
	case valueobjects.InjectReferenceOnly:
		version := len(node.Data.Versions)
		if version > 0 {
			fmt.Fprintf(b, "\nSee artifact %q (v%d)", node.Data.Title, version)
		} else {
			fmt.Fprintf(b, "\nSee artifact %q", node.Data.Title)
		}
	default: // full
		if node.Data.Content != "" {
			fmt.Fprintf(b, "\n%s", node.Data.Content)
		}
	}
}

func renderProject(b *strings.Builder, node *entities.Node) {
	if node.Data.Summary != "" {
		fmt.Fprintf(b, "\n%s", node.Data.Summary)
	}
	if count := len(node.Data.ChildIDs); count > 0 {
		fmt.Fprintf(b, "\nContains %d items", count)
	}
}

func renderGeneric(b *strings.Builder, node *entities.Node) {
	if node.Data.Content != "" {
		fmt.Fprintf(b, "\n%s", node.Data.Content)
	} else if node.Data.Summary != "" {
		fmt.Fprintf(b, "\n%s", node.Data.Summary)
	}
}

// renderAttachments builds the separately attributed block listing a
// node's file attachments, or "" when it has none
func renderAttachments(node *entities.Node) string {
	if len(node.Data.Attachments) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[Attachments: %s]", node.Data.Title)
	for _, att := range node.Data.Attachments {
		fmt.Fprintf(&b, "\n- %s (%s, %d bytes)", att.Name, att.MimeType, att.Size)
	}
	return b.String()
}
