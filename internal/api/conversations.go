package api

import (
	"net/http"
	"strings"

	"bistro/internal/dialogue"
	"bistro/internal/models"
	"bistro/internal/session"

	"github.com/gin-gonic/gin"
)

type createConversationRequest struct {
	Mode string `json:"mode"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type voiceRequest struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id"`
}

// turnResponse is one assistant reply with the conversation it belongs to
type turnResponse struct {
	ConversationID string `json:"conversation_id"`
	dialogue.Reply
}

// CreateConversation starts an assistant conversation and returns its greeting
func (s *Server) CreateConversation(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		return
	}
	var req createConversationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sess, greeting, err := s.svc.Sessions.Create(c.Request.Context(), userID(c), key, req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, turnResponse{ConversationID: sess.ID, Reply: greeting})
}

// PostTurn sends one customer utterance to a conversation
func (s *Server) PostTurn(c *gin.Context) {
	sess, ok := s.ownSession(c, c.Param("id"))
	if !ok {
		return
	}
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	reply, err := s.svc.Sessions.Handle(c.Request.Context(), sess.ID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, turnResponse{ConversationID: sess.ID, Reply: reply})
}

func (s *Server) CloseConversation(c *gin.Context) {
	sess, ok := s.ownSession(c, c.Param("id"))
	if !ok {
		return
	}
	if err := s.svc.Sessions.Close(sess.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTranscript returns the stored turns of one of the caller's conversations
func (s *Server) GetTranscript(c *gin.Context) {
	ctx := c.Request.Context()
	conv, err := s.svc.Transcripts.GetConversation(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if conv.UserID != userID(c) {
		respondError(c, session.ErrNotFound)
		return
	}

	entries, err := s.svc.Transcripts.Transcript(ctx, conv.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv, "turns": entries})
}

// VoiceAssistant handles one transcribed utterance. Without a
// conversation_id a new voice conversation is started for it.
func (s *Server) VoiceAssistant(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	key, ok := cartKey(c)
	if !ok {
		return
	}

	id := req.ConversationID
	if id == "" {
		sess, _, err := s.svc.Sessions.Create(c.Request.Context(), userID(c), key, models.ModeVoice)
		if err != nil {
			respondError(c, err)
			return
		}
		id = sess.ID
	} else if _, ok := s.ownSession(c, id); !ok {
		return
	}

	reply, err := s.svc.Sessions.Handle(c.Request.Context(), id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, turnResponse{ConversationID: id, Reply: reply})
}

// ownSession looks up a live conversation the caller may use. Other
// callers' conversations are reported as missing.
func (s *Server) ownSession(c *gin.Context, id string) (*session.Session, bool) {
	sess, err := s.svc.Sessions.Get(id)
	if err == nil && !sess.AccessibleBy(userID(c), c.GetString(ctxCartKey)) {
		err = session.ErrNotFound
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}
