package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/evchat/chat-gateway/internal/core/domain"
	"github.com/evchat/chat-gateway/internal/core/ports"
)

// acceptedImageTypes mirrors what the upload widget offers: PNG and JPEG.
var acceptedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

type ChatHandler struct {
	chatService ports.ChatService
}

func NewChatHandler(chatService ports.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type submitRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type submitResponse struct {
	Reply string `json:"reply"`
}

type turnView struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type historyResponse struct {
	Turns []turnView `json:"turns"`
}

// Submit relays one user turn, optionally with an image attachment.
// Accepts either a JSON body {"prompt": "..."} or a multipart form with a
// "prompt" field and an optional "image" file.
func (h *ChatHandler) Submit(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	prompt, attachment, err := h.bindSubmission(c)
	if err != nil {
		return err
	}

	reply, err := h.chatService.Submit(c.Request().Context(), username, prompt, attachment)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, submitResponse{Reply: reply})
}

// History returns the full transcript for display.
func (h *ChatHandler) History(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	turns, err := h.chatService.History(username)
	if err != nil {
		return err
	}

	views := make([]turnView, 0, len(turns))
	for _, t := range turns {
		views = append(views, turnView{Role: string(t.Role), Text: t.Text})
	}
	return c.JSON(http.StatusOK, historyResponse{Turns: views})
}

// Reset clears the caller's transcript.
func (h *ChatHandler) Reset(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	if err := h.chatService.Reset(username); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) bindSubmission(c echo.Context) (string, *domain.Attachment, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		var req submitRequest
		if err := c.Bind(&req); err != nil {
			return "", nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return "", nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return req.Prompt, nil, nil
	}

	prompt := c.FormValue("prompt")
	if prompt == "" {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No image part — a plain text submission via multipart.
		return prompt, nil, nil
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !acceptedImageTypes[mimeType] {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "unsupported image type, expected image/png or image/jpeg")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "could not read image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "could not read image")
	}

	return prompt, &domain.Attachment{Bytes: data, MIMEType: mimeType}, nil
}
