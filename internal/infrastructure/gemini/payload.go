// Package gemini implements the outbound gateway to the generateContent
// endpoint: the request document builder and the retrying HTTP client.
package gemini

import (
	"encoding/base64"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

// Part is one piece of a message: text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded attachment bytes with their declared
// MIME type.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content is one message in the request, tagged with its author role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateContentRequest is the provider request document.
type GenerateContentRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

// GenerateContentResponse models the subset of the reply the gateway reads.
type GenerateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// BuildRequest assembles the request document from a transcript window plus
// the new user message. Pure: identical inputs produce an identical document.
//
// History roles are carried verbatim. When an attachment is present, its
// inline representation is placed as the first part of the new user message,
// ahead of the text part. Attachment content is passed through unvalidated —
// empty bytes or an unknown MIME type are the upload boundary's problem.
func BuildRequest(history []domain.Turn, prompt string, attachment *domain.Attachment, systemInstruction string) *GenerateContentRequest {
	contents := make([]Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, Content{
			Role:  string(turn.Role),
			Parts: []Part{{Text: turn.Text}},
		})
	}

	userParts := []Part{{Text: prompt}}
	if attachment != nil {
		inline := Part{InlineData: &InlineData{
			MIMEType: attachment.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(attachment.Bytes),
		}}
		userParts = append([]Part{inline}, userParts...)
	}
	contents = append(contents, Content{Role: string(domain.RoleUser), Parts: userParts})

	return &GenerateContentRequest{
		Contents:          contents,
		SystemInstruction: &Content{Parts: []Part{{Text: systemInstruction}}},
	}
}
