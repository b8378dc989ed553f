package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/board"
	"github.com/CrowderSoup/minijira/handlers"
	"github.com/CrowderSoup/minijira/services"
	"github.com/CrowderSoup/minijira/store"
)

type boardFixture struct {
	fake   *fakeAPI
	store  *store.Store
	kanban *board.Kanban
	server *httptest.Server
}

func newBoardFixture(t *testing.T, tickets ...api.Ticket) *boardFixture {
	t.Helper()
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	hub := services.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	fake := &fakeAPI{tickets: tickets}
	st := store.New()
	kanban := board.NewKanban(st, fake, services.NewToaster(hub, logger), logger)
	require.NoError(t, kanban.Load(context.Background()))

	h := handlers.NewBoardHandler(kanban, hub, func(*http.Request) bool { return true }, logger)
	hub.HandleMessages(h.HandleSocketMessage)
	unsubscribe := kanban.Subscribe(h.PublishSnapshot)

	router := mux.NewRouter()
	router.HandleFunc("/api/board", h.GetBoard).Methods("GET")
	router.HandleFunc("/api/board/drag/{phase}", h.Drag).Methods("POST")
	router.HandleFunc("/api/ws", h.HandleWebSocket)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		unsubscribe()
		kanban.Close()
		cancel()
		<-hubDone
	})

	return &boardFixture{fake: fake, store: st, kanban: kanban, server: server}
}

func (f *boardFixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func columnIDs(snapshot board.Snapshot) map[api.Status][]string {
	ids := make(map[api.Status][]string, len(snapshot.Columns))
	for _, column := range snapshot.Columns {
		ids[column.Status] = []string{}
		for _, ticket := range column.Tickets {
			ids[column.Status] = append(ids[column.Status], ticket.ID)
		}
	}
	return ids
}

func Test_BoardHandler_Drag_Over_HTTP_Moves_Ticket(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t,
		api.Ticket{ID: "A", Status: api.StatusOpen},
		api.Ticket{ID: "B", Status: api.StatusOpen},
		api.Ticket{ID: "C", Status: api.StatusClosed},
	)

	resp := f.post(t, "/api/board/drag/start", `{"id": "A"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var started board.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	assert.Equal(t, "A", started.ActiveID)

	resp = f.post(t, "/api/board/drag/end", `{"id": "In Progress"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ended struct {
		Result board.DragResult `json:"result"`
		Board  board.Snapshot   `json:"board"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ended))

	assert.Equal(t, board.DragMoved, ended.Result.Outcome)
	assert.Empty(t, ended.Board.ActiveID)
	ids := columnIDs(ended.Board)
	assert.Equal(t, []string{"B"}, ids[api.StatusOpen])
	assert.Equal(t, []string{"A"}, ids[api.StatusInProgress])

	f.kanban.Wait()
	stored, ok := f.store.State().Tickets.Find("A")
	require.True(t, ok)
	assert.Equal(t, api.StatusInProgress, stored.Status)
}

func Test_BoardHandler_Drag_End_Without_Body_Aborts(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t, api.Ticket{ID: "A", Status: api.StatusOpen})
	f.post(t, "/api/board/drag/start", `{"id": "A"}`)

	resp, err := http.Post(f.server.URL+"/api/board/drag/end", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ended struct {
		Result board.DragResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ended))
	assert.Equal(t, board.DragAborted, ended.Result.Outcome)
	assert.Empty(t, f.fake.updated)
}

func Test_BoardHandler_Drag_Rejects_Unknown_Phase(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t)
	resp := f.post(t, "/api/board/drag/fling", `{"id": "A"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// readTypes reads until one message of each type has arrived, in any order,
// and returns the first of each.
func readTypes(t *testing.T, conn *websocket.Conn, types ...string) map[string]json.RawMessage {
	t.Helper()

	found := make(map[string]json.RawMessage, len(types))
	for len(found) < len(types) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var message struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&message))
		for _, want := range types {
			if _, seen := found[want]; !seen && message.Type == want {
				found[want] = message.Data
			}
		}
	}
	return found
}

func Test_BoardHandler_Websocket_Drag_Gesture(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t,
		api.Ticket{ID: "A", Status: api.StatusOpen},
		api.Ticket{ID: "R1", Status: api.StatusResolved},
	)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial board.Snapshot
	require.NoError(t, json.Unmarshal(readTypes(t, conn, services.MessageBoard)[services.MessageBoard], &initial))
	assert.Equal(t, []string{"A"}, columnIDs(initial)[api.StatusOpen])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dragStart", "data": map[string]string{"id": "A"}}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dragOver", "data": map[string]string{"id": "R1"}}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dragEnd", "data": map[string]string{"id": "R1"}}))

	messages := readTypes(t, conn, services.MessageDragResult, services.MessageToast)

	var result board.DragResult
	require.NoError(t, json.Unmarshal(messages[services.MessageDragResult], &result))
	assert.Equal(t, board.DragResult{
		Outcome:  board.DragMoved,
		TicketID: "A",
		From:     api.StatusOpen,
		To:       api.StatusResolved,
		Index:    1,
	}, result)

	var toast services.Toast
	require.NoError(t, json.Unmarshal(messages[services.MessageToast], &toast))
	assert.Equal(t, "Moved ticket to Resolved", toast.Message)
	assert.Equal(t, board.NoticeInfo, toast.Kind)
}

func Test_BoardHandler_Websocket_Answers_Ping(t *testing.T) {
	t.Parallel()

	f := newBoardFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	data := readTypes(t, conn, services.MessagePong)[services.MessagePong]
	assert.Contains(t, string(data), "timestamp")
}
