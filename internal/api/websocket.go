package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"bistro/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsMaxMessage = 4 * 1024
)

// chatFrame is a customer utterance received over the websocket
type chatFrame struct {
	Text string `json:"text"`
}

// wsConnection pumps one conversation over a websocket. Frames are
// handled in arrival order by the read pump.
type wsConnection struct {
	conn     *websocket.Conn
	send     chan []byte
	sessions *session.Manager
	id       string
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
}

// handleWebSocket attaches a websocket to an existing conversation
func (s *Server) handleWebSocket(c *gin.Context) {
	sess, ok := s.ownSession(c, c.Param("id"))
	if !ok {
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("api: failed to upgrade connection: %v", err)
		return
	}

	ws := &wsConnection{
		conn:     conn,
		send:     make(chan []byte, 16),
		sessions: s.svc.Sessions,
		id:       sess.ID,
	}

	// Start the read and write pumps
	go ws.writePump()
	go ws.readPump()
}

// readPump reads frames until the client goes away and answers each one
func (c *wsConnection) readPump() {
	defer func() {
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessage)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("api: websocket error on %s: %v", c.id, err)
			}
			return
		}
		if !c.handleMessage(message) {
			return
		}
	}
}

// handleMessage runs one turn. It returns false once the conversation is gone.
func (c *wsConnection) handleMessage(message []byte) bool {
	var frame chatFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.sendJSON(gin.H{"error": "frames must be JSON objects with a text field"})
		return true
	}
	if strings.TrimSpace(frame.Text) == "" {
		c.sendJSON(gin.H{"error": "text is required"})
		return true
	}

	reply, err := c.sessions.Handle(context.Background(), c.id, frame.Text)
	if err != nil {
		c.sendJSON(gin.H{"error": err.Error()})
		return false
	}
	c.sendJSON(turnResponse{ConversationID: c.id, Reply: reply})
	return true
}

func (c *wsConnection) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("api: failed to encode websocket frame: %v", err)
		return
	}
	c.send <- data
}

// writePump pumps messages from the server to the WebSocket connection
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// The read pump is done
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
