package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-runner-service/internal/app"
	"quiz-runner-service/internal/domain"
	"quiz-runner-service/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	results := memory.NewResultStore()
	server := newTestServer(t, results)
	defer server.Close()

	conn := dial(t, server, "sess-1")
	defer conn.Close()

	send(t, conn, "join", map[string]any{
		"firstName": "Alice",
		"lastName":  "Ozdemir",
		"email":     "alice@example.com",
	})

	typ, _ := readNext(t, conn)
	if typ != "joined" {
		t.Fatalf("expected joined, got %s", typ)
	}
	typ, payload := readNext(t, conn)
	if typ != "question" {
		t.Fatalf("expected question, got %s", typ)
	}
	if payload["index"].(float64) != 0 || payload["total"].(float64) != 2 {
		t.Fatalf("unexpected question payload: %v", payload)
	}

	// Question 1: answer correctly, advance.
	send(t, conn, "answer", map[string]any{"optionIndex": 1})
	if typ, _ := readNext(t, conn); typ != "selected" {
		t.Fatalf("expected selected, got %s", typ)
	}
	send(t, conn, "advance", nil)
	typ, payload = readNext(t, conn)
	if typ != "question" || payload["index"].(float64) != 1 {
		t.Fatalf("expected second question, got %s %v", typ, payload)
	}

	// Question 2: answer wrong, advance to finish.
	send(t, conn, "answer", map[string]any{"optionIndex": 0})
	if typ, _ := readNext(t, conn); typ != "selected" {
		t.Fatalf("expected selected, got %s", typ)
	}
	send(t, conn, "advance", nil)

	typ, payload = readNext(t, conn)
	if typ != "result" {
		t.Fatalf("expected result, got %s", typ)
	}
	if payload["total"].(float64) != 2 || payload["correct"].(float64) != 1 ||
		payload["wrong"].(float64) != 1 || payload["score"].(float64) != 50 {
		t.Fatalf("unexpected result payload: %v", payload)
	}

	stored, ok := results.Get("content-1", "alice@example.com")
	if !ok || stored.Score != 50 {
		t.Fatalf("expected persisted result, got %+v (ok=%v)", stored, ok)
	}
}

func TestWebSocketAdvanceRequiresAnswer(t *testing.T) {
	server := newTestServer(t, memory.NewResultStore())
	defer server.Close()

	conn := dial(t, server, "sess-1")
	defer conn.Close()

	send(t, conn, "join", map[string]any{
		"firstName": "Bob", "lastName": "Aksoy", "email": "bob@example.com",
	})
	readNext(t, conn) // joined
	readNext(t, conn) // question

	send(t, conn, "advance", nil)
	typ, payload := readNext(t, conn)
	if typ != "error" {
		t.Fatalf("expected error on unanswered advance, got %s", typ)
	}
	if payload["message"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	server := newTestServer(t, memory.NewResultStore())
	defer server.Close()

	conn := dial(t, server, "sess-unknown")
	defer conn.Close()

	send(t, conn, "join", map[string]any{
		"firstName": "Eve", "lastName": "Kaya", "email": "eve@example.com",
	})
	typ, _ := readNext(t, conn)
	if typ != "error" {
		t.Fatalf("expected error for unknown session, got %s", typ)
	}
}

func newTestServer(t *testing.T, results *memory.ResultStore) *httptest.Server {
	t.Helper()
	catalog := memory.NewStaticCatalog(map[string][]domain.Question{
		"content-1": {
			{
				ID:            "q1",
				Prompt:        "Which vitamin does sunlight help produce?",
				Options:       []string{"Vitamin A", "Vitamin D", "Vitamin C", "Vitamin K"},
				CorrectOption: 1,
			},
			{
				ID:            "q2",
				Prompt:        "How many chambers does the human heart have?",
				Options:       []string{"Two", "Four", "Three", "Five"},
				CorrectOption: 1,
			},
		},
	})
	directory := memory.NewSessionDirectory(map[string]domain.SessionInfo{
		"sess-1": {ID: "sess-1", Name: "Morning group", ContentID: "content-1"},
	})
	service := app.NewQuizService(catalog, results, directory, memory.NewStudentStore())
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	payload := map[string]any{}
	if len(msg.Payload) > 0 {
		_ = json.Unmarshal(msg.Payload, &payload)
	}
	return msg.Type, payload
}
