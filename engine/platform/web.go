package platform

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spaghettifunk/configurator/engine/core"
)

//go:embed web/index.html
var webContent embed.FS

type WebHostConfig struct {
	// Address the HTTP server listens on, e.g. ":8080".
	Listen string
	// How long Share waits for the browser's answer.
	ShareTimeout time.Duration
}

// message is the envelope of every websocket frame in both directions.
type message struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type pointerData struct {
	Button    int        `json:"button"`
	Origin    [3]float32 `json:"origin"`
	Direction [3]float32 `json:"direction"`
	MeshID    string     `json:"meshId"`
}

type valueData struct {
	Value string `json:"value"`
}

type shareResult struct {
	Outcome string `json:"outcome"`
	Error   string `json:"error"`
}

type modelData struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type client struct {
	conn       *websocket.Conn
	writeMutex sync.Mutex
}

func (c *client) send(data []byte) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

/**
 * @brief A host serving the browser viewer. Browser input arrives over a
 * websocket and is posted to the event system; state, print, share, alert and
 * reload requests go back over the same socket to every connected client.
 */
type WebHost struct {
	config   WebHostConfig
	events   *core.EventSystem
	input    *core.Input
	upgrader websocket.Upgrader

	server   *http.Server
	listener net.Listener

	clientsMutex sync.Mutex
	clients      map[*client]bool

	stateMutex    sync.RWMutex
	state         State
	stateSet      bool
	model         []byte
	modelName     string
	modelRevision int

	sharesMutex sync.Mutex
	shares      map[string]chan shareResult
}

func NewWebHost(config WebHostConfig, events *core.EventSystem, input *core.Input) *WebHost {
	if config.ShareTimeout <= 0 {
		config.ShareTimeout = 30 * time.Second
	}
	wh := &WebHost{
		config:  config,
		events:  events,
		input:   input,
		clients: make(map[*client]bool),
		shares:  make(map[string]chan shareResult),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the viewer may be embedded in another page
			},
		},
	}
	wh.server = &http.Server{
		Handler:           wh.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return wh
}

// Handler returns the HTTP routes of the host.
func (wh *WebHost) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", wh.serveHome)
	mux.HandleFunc("/model.glb", wh.serveModel)
	mux.HandleFunc("/api/state", wh.serveState)
	mux.HandleFunc("/api/palette", wh.servePalette)
	mux.HandleFunc("/ws", wh.handleWebSocket)
	return mux
}

func (wh *WebHost) Startup(ctx context.Context) error {
	listener, err := net.Listen("tcp", wh.config.Listen)
	if err != nil {
		return fmt.Errorf("web host: %w", err)
	}
	wh.listener = listener
	go func() {
		if err := wh.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.LogError("Web host stopped: %s", err.Error())
		}
	}()
	core.LogInfo("Configurator available on http://%s", listener.Addr().String())
	return nil
}

// Addr returns the address the server listens on, once started.
func (wh *WebHost) Addr() string {
	if wh.listener == nil {
		return wh.config.Listen
	}
	return wh.listener.Addr().String()
}

func (wh *WebHost) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wh.clientsMutex.Lock()
	for c := range wh.clients {
		c.conn.Close()
		delete(wh.clients, c)
	}
	wh.clientsMutex.Unlock()

	if wh.listener == nil {
		return nil
	}
	return wh.server.Shutdown(ctx)
}

// Print asks every viewer to open the print dialog.
func (wh *WebHost) Print(ctx context.Context, doc PrintDocument) error {
	if wh.broadcast(message{Type: "print"}, doc) == 0 {
		core.LogWarn("Print requested with no viewer connected.")
	}
	return nil
}

/**
 * @brief Asks the connected viewers to open the native share sheet and waits
 * for the first answer. Viewers without share support alert the user and
 * answer "unsupported"; without any viewer the share is unsupported too.
 */
func (wh *WebHost) Share(ctx context.Context, payload SharePayload) (ShareOutcome, error) {
	id := core.IdentifierNew()
	result := make(chan shareResult, 1)

	wh.sharesMutex.Lock()
	wh.shares[id] = result
	wh.sharesMutex.Unlock()
	defer func() {
		wh.sharesMutex.Lock()
		delete(wh.shares, id)
		wh.sharesMutex.Unlock()
	}()

	if wh.broadcast(message{Type: "share", ID: id}, payload) == 0 {
		core.LogWarn("Share requested with no viewer connected.")
		return ShareUnsupported, nil
	}

	timer := time.NewTimer(wh.config.ShareTimeout)
	defer timer.Stop()

	select {
	case r := <-result:
		switch r.Outcome {
		case "completed":
			return ShareCompleted, nil
		case "unsupported":
			return ShareUnsupported, nil
		default:
			return ShareCompleted, fmt.Errorf("share failed: %s", r.Error)
		}
	case <-timer.C:
		return ShareCompleted, core.ErrShareTimeout
	case <-ctx.Done():
		return ShareCompleted, ctx.Err()
	}
}

// Reset reloads every viewer.
func (wh *WebHost) Reset(ctx context.Context) error {
	wh.broadcast(message{Type: "reload"}, nil)
	return nil
}

// Alert shows a message to every viewer.
func (wh *WebHost) Alert(text string) {
	wh.broadcast(message{Type: "alert"}, valueData{Value: text})
}

func (wh *WebHost) PublishState(state State) {
	wh.stateMutex.Lock()
	wh.state = state
	wh.stateSet = true
	wh.stateMutex.Unlock()

	wh.broadcast(message{Type: "state"}, state)
}

func (wh *WebHost) PublishModel(name string, data []byte) {
	wh.stateMutex.Lock()
	wh.model = data
	wh.modelName = name
	wh.modelRevision++
	info := wh.modelInfo()
	wh.stateMutex.Unlock()

	wh.broadcast(message{Type: "model"}, info)
}

// modelInfo must be called with stateMutex held.
func (wh *WebHost) modelInfo() modelData {
	return modelData{Name: wh.modelName, URL: "/model.glb?rev=" + strconv.Itoa(wh.modelRevision)}
}

// broadcast sends msg with data to all clients and returns how many got it.
func (wh *WebHost) broadcast(msg message, data interface{}) int {
	frame, err := encode(msg, data)
	if err != nil {
		core.LogError("Encoding %s message: %s", msg.Type, err.Error())
		return 0
	}

	wh.clientsMutex.Lock()
	targets := make([]*client, 0, len(wh.clients))
	for c := range wh.clients {
		targets = append(targets, c)
	}
	wh.clientsMutex.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.send(frame); err != nil {
			core.LogWarn("WebSocket write error: %s", err.Error())
			wh.dropClient(c)
			continue
		}
		sent++
	}
	return sent
}

func encode(msg message, data interface{}) ([]byte, error) {
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}

func (wh *WebHost) dropClient(c *client) {
	wh.clientsMutex.Lock()
	defer wh.clientsMutex.Unlock()
	if wh.clients[c] {
		delete(wh.clients, c)
		c.conn.Close()
	}
}

func (wh *WebHost) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.LogError("WebSocket upgrade error: %s", err.Error())
		return
	}
	c := &client{conn: conn}

	wh.clientsMutex.Lock()
	wh.clients[c] = true
	wh.clientsMutex.Unlock()

	core.LogDebug("Viewer connected from %s.", r.RemoteAddr)

	// Bring the viewer up to date.
	wh.stateMutex.RLock()
	var greeting [][]byte
	if wh.model != nil {
		if frame, err := encode(message{Type: "model"}, wh.modelInfo()); err == nil {
			greeting = append(greeting, frame)
		}
	}
	if wh.stateSet {
		if frame, err := encode(message{Type: "state"}, wh.state); err == nil {
			greeting = append(greeting, frame)
		}
	}
	wh.stateMutex.RUnlock()
	for _, frame := range greeting {
		if err := c.send(frame); err != nil {
			wh.dropClient(c)
			return
		}
	}

	defer func() {
		wh.dropClient(c)
		core.LogDebug("Viewer %s disconnected.", r.RemoteAddr)
	}()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := wh.dispatch(msg); err != nil {
			core.LogWarn("Viewer message '%s': %s", msg.Type, err.Error())
		}
	}
}

// dispatch turns a viewer message into input or events.
func (wh *WebHost) dispatch(msg message) error {
	post := func(code core.EventCode, data interface{}) error {
		return wh.events.Post(core.EventContext{Type: code, Sender: wh, Data: data})
	}

	switch msg.Type {
	case "pointer_down", "pointer_move":
		var p pointerData
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return err
		}
		pe := &core.PointerEvent{
			Button:    core.Button(p.Button),
			Origin:    p.Origin,
			Direction: p.Direction,
			MeshID:    p.MeshID,
		}
		if msg.Type == "pointer_down" {
			return wh.input.ProcessPointerDown(pe)
		}
		return wh.input.ProcessPointerMove(pe)
	case "pointer_up":
		var p pointerData
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return err
		}
		wh.input.ProcessPointerUp(core.Button(p.Button))
		return nil
	case "pointer_out":
		return wh.input.ProcessPointerOut()
	case "colour", "swatch":
		var v valueData
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return err
		}
		return post(core.EVENT_CODE_COLOUR_CHANGED, &core.ColourEvent{Value: v.Value, Swatch: msg.Type == "swatch"})
	case "apply":
		return post(core.EVENT_CODE_APPLY_CHANGES, nil)
	case "print":
		return post(core.EVENT_CODE_PRINT, nil)
	case "share":
		return post(core.EVENT_CODE_SHARE, nil)
	case "reset":
		return post(core.EVENT_CODE_RESET, nil)
	case "share_result":
		var r shareResult
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			return err
		}
		wh.sharesMutex.Lock()
		ch, ok := wh.shares[msg.ID]
		wh.sharesMutex.Unlock()
		if !ok {
			return fmt.Errorf("no pending share %q", msg.ID)
		}
		select {
		case ch <- r:
		default:
			// another viewer answered first
		}
		return nil
	default:
		return fmt.Errorf("unknown message type")
	}
}

func (wh *WebHost) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := webContent.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (wh *WebHost) serveModel(w http.ResponseWriter, r *http.Request) {
	wh.stateMutex.RLock()
	data := wh.model
	wh.stateMutex.RUnlock()
	if data == nil {
		http.Error(w, "model not loaded yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (wh *WebHost) serveState(w http.ResponseWriter, r *http.Request) {
	wh.stateMutex.RLock()
	state := wh.state
	wh.stateMutex.RUnlock()
	writeJSON(w, state)
}

func (wh *WebHost) servePalette(w http.ResponseWriter, r *http.Request) {
	wh.stateMutex.RLock()
	palette := wh.state.Palette
	wh.stateMutex.RUnlock()
	if palette == nil {
		http.Error(w, "no palette", http.StatusNotFound)
		return
	}
	writeJSON(w, palette)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.LogError("Writing response: %s", err.Error())
	}
}
