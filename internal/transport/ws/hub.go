package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgGroupAvailability MessageType = "group_availability"
	MsgGroupFilled       MessageType = "group_filled"
	MsgFormClosed        MessageType = "form_closed"
	MsgError             MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for forms. Students on a group selection
// question stay subscribed to their form and see slot availability move in
// real time as other groups fill.
type Hub struct {
	// formID -> studentEmail -> conn
	studentConns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one student's WebSocket connection
type Connection struct {
	FormID       string
	StudentEmail string
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	FormID    string
	ToStudent string // empty means every student on the form
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		studentConns: make(map[string]map[string]*Connection),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		broadcast:    make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.studentConns[conn.FormID] == nil {
				h.studentConns[conn.FormID] = make(map[string]*Connection)
			}
			h.studentConns[conn.FormID][conn.StudentEmail] = conn
			h.mu.Unlock()
			log.Printf("Student %s connected to form %s", conn.StudentEmail, conn.FormID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if students, ok := h.studentConns[conn.FormID]; ok {
				if existing, ok := students[conn.StudentEmail]; ok && existing == conn {
					delete(students, conn.StudentEmail)
					close(conn.Send)
					log.Printf("Student %s disconnected from form %s", conn.StudentEmail, conn.FormID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			students := h.studentConns[msg.FormID]
			if msg.ToStudent != "" {
				if conn, ok := students[msg.ToStudent]; ok {
					select {
					case conn.Send <- data:
					default:
						// drop when the buffer is full
					}
				}
			} else {
				for _, conn := range students {
					select {
					case conn.Send <- data:
					default:
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToForm sends a message to every student on a form (implements service.Broadcaster)
func (h *Hub) BroadcastToForm(formID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		FormID: formID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToStudent sends a message to one student (implements service.Broadcaster)
func (h *Hub) BroadcastToStudent(formID, studentEmail string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		FormID:    formID,
		ToStudent: studentEmail,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
