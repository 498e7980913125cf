package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"bistro/internal/llm"
	"bistro/internal/menu"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 8 << 20

// MenuChatter answers free-form questions about the menu
type MenuChatter interface {
	Reply(ctx context.Context, items []models.MenuItem, history []llm.Message) (string, error)
}

// DishRecognizer names the dish shown in a photo
type DishRecognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// MenuChat continues a free-form chat about the menu. The body carries
// the whole history: {"messages": [{"role": "user", "content": "..."}]}.
func (s *Server) MenuChat(c *gin.Context) {
	if s.svc.Chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Menu chat is not configured"})
		return
	}

	var req struct {
		Messages []llm.Message `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	items, err := s.svc.Catalog.ListItems(ctx, "")
	if err != nil {
		respondError(c, err)
		return
	}

	reply, err := s.svc.Chat.Reply(ctx, items, req.Messages)
	if errors.Is(err, llm.ErrInvalidChat) {
		respondError(c, err)
		return
	}
	if err != nil {
		log.Printf("api: menu chat failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is unavailable, please try again"})
		return
	}

	s.svc.Monitor.IncrementMetric("menu_chats", 1)
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// ImageSearch finds menu items resembling the dish in a photo. The image
// comes either as a multipart "image" file or as JSON
// {"image": "<base64 or data URL>", "mime_type": "image/jpeg"}.
func (s *Server) ImageSearch(c *gin.Context) {
	if s.svc.Dishes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image search is not configured"})
		return
	}

	image, mimeType, err := readImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	dish, err := s.svc.Dishes.Recognize(ctx, image, mimeType)
	switch {
	case errors.Is(err, llm.ErrNoDish):
		dish = ""
	case err != nil:
		log.Printf("api: failed to analyze image: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze image"})
		return
	}

	items, err := s.svc.Catalog.ListItems(ctx, "")
	if err != nil {
		respondError(c, err)
		return
	}
	matches := menu.MatchDish(dish, items)
	if matches == nil {
		matches = []menu.Match{}
	}

	s.svc.Monitor.IncrementMetric("image_searches", 1)
	c.JSON(http.StatusOK, gin.H{"dish": dish, "matches": matches})
}

func readImage(c *gin.Context) ([]byte, string, error) {
	// base64 inflates by a third
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes*2)

	var (
		data     []byte
		mimeType string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			return nil, "", errors.New("No image provided")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, maxImageBytes+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
		mimeType = fh.Header.Get("Content-Type")
	} else {
		var req struct {
			Image    string `json:"image"`
			MimeType string `json:"mime_type"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
			return nil, "", errors.New("No image provided")
		}
		raw := req.Image
		mimeType = req.MimeType
		if rest, ok := strings.CutPrefix(raw, "data:"); ok {
			meta, payload, found := strings.Cut(rest, ",")
			if !found || !strings.HasSuffix(meta, ";base64") {
				return nil, "", errors.New("image must be base64 encoded")
			}
			if mimeType == "" {
				mimeType = strings.TrimSuffix(meta, ";base64")
			}
			raw = payload
		}
		var err error
		data, err = base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, "", errors.New("image must be base64 encoded")
		}
	}

	if len(data) == 0 {
		return nil, "", errors.New("No image provided")
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image is larger than %d MB", maxImageBytes>>20)
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("unsupported image type %q", mimeType)
	}
	return data, mimeType, nil
}
