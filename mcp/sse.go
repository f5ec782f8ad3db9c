package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/vacuumpartshub/scrape"
	"github.com/foomo/vacuumpartshub/service"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const EventCatalogChanged = "catalog_changed"

var errClientGone = errors.New("client disconnected")

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time

	// mu serializes writes; closed is set before Done is closed so no write
	// happens after the handler returned.
	mu     sync.Mutex
	closed bool
}

// MCPSSEServer wraps the MCP server with SSE capabilities
type MCPSSEServer struct {
	logger       *zap.Logger
	mcpServer    *server.MCPServer
	service      service.Service
	httpClient   *http.Client
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
	quit         chan struct{}
	closeOnce    sync.Once
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewMCPSSEServer creates a new MCP SSE server and starts its broadcast loop.
// Call Close to stop it.
func NewMCPSSEServer(logger *zap.Logger, mcpServer *server.MCPServer, serviceInstance service.Service, httpClient *http.Client, config *SSEServerConfig) *MCPSSEServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	sseServer := &MCPSSEServer{
		logger:     logger,
		mcpServer:  mcpServer,
		service:    serviceInstance,
		httpClient: httpClient,
		config:     config,
		clients:    make(map[string]*SSEClient),
		broadcast:  make(chan SSEEvent, config.BufferSize),
		quit:       make(chan struct{}),
	}

	go sseServer.broadcastLoop()

	return sseServer
}

// Close stops the broadcast loop and disconnects all clients.
func (s *MCPSSEServer) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		for _, client := range s.snapshot() {
			s.removeClient(client.ID)
		}
	})
}

func (s *MCPSSEServer) broadcastLoop() {
	for {
		select {
		case <-s.quit:
			return
		case event := <-s.broadcast:
			for _, client := range s.snapshot() {
				if err := s.sendEventToClient(client, event); err != nil {
					if !errors.Is(err, errClientGone) {
						s.logger.Error("failed to send event to client", zap.String("clientID", client.ID), zap.Error(err))
					}
					s.removeClient(client.ID)
				}
			}
		}
	}
}

func (s *MCPSSEServer) snapshot() []*SSEClient {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	clients := make([]*SSEClient, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	return clients
}

// sendEventToClient sends an SSE event to a specific client
func (s *MCPSSEServer) sendEventToClient(client *SSEClient, event SSEEvent) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.closed {
		return errClientGone
	}
	if err := writeEvent(client.Writer, client.Flusher, event); err != nil {
		return err
	}
	client.LastSeen = time.Now()
	return nil
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func newEvent(name string, data any) SSEEvent {
	now := time.Now()
	return SSEEvent{
		ID:        fmt.Sprintf("%s_%d", name, now.UnixNano()),
		Event:     name,
		Data:      data,
		Timestamp: now,
	}
}

// addClient adds a new SSE client
func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := &SSEClient{
		ID:       uuid.NewString(),
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	s.clientsMutex.Lock()
	s.clients[client.ID] = client
	s.clientsMutex.Unlock()

	connectEvent := newEvent("connected", map[string]string{"clientID": client.ID, "message": "Connected to VacuumPartsHub SSE server"})
	if err := s.sendEventToClient(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		s.removeClient(client.ID)
		return nil
	}

	s.logger.Info("SSE client connected", zap.String("clientID", client.ID))
	return client
}

// removeClient removes a client from the server
func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	client, exists := s.clients[clientID]
	delete(s.clients, clientID)
	s.clientsMutex.Unlock()
	if !exists {
		return
	}

	client.mu.Lock()
	client.closed = true
	close(client.Done)
	client.mu.Unlock()
	s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
}

// broadcastEvent sends an event to all connected clients
func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

// NotifyCatalogChanged tells every connected client that a data file changed.
func (s *MCPSSEServer) NotifyCatalogChanged(file string) {
	s.broadcastEvent(newEvent(EventCatalogChanged, map[string]string{"file": file}))
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// HandleSSE handles SSE client connections
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setStreamHeaders(w)
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	client := s.addClient(w)
	if client == nil {
		return
	}

	ctx := r.Context()
	go func() {
		ticker := time.NewTicker(s.config.KeepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.removeClient(client.ID)
				return
			case <-client.Done:
				return
			case <-ticker.C:
				keepalive := newEvent("keepalive", map[string]any{"timestamp": time.Now()})
				if err := s.sendEventToClient(client, keepalive); err != nil {
					s.removeClient(client.ID)
					return
				}
			}
		}
	}()

	<-client.Done
}

// HandleScrapeSSE handles scrape requests via SSE
func (s *MCPSSEServer) HandleScrapeSSE(w http.ResponseWriter, r *http.Request) {
	var request ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.URL == "" || request.Selector == "" {
		http.Error(w, "url and selector are required", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setStreamHeaders(w)

	s.stream(w, flusher, "scrape", map[string]string{"url": request.URL, "selector": request.Selector}, func() (any, error) {
		summary, markdown, err := scrape.Scrape(r.Context(), s.httpClient, request.URL, request.Selector)
		if err != nil {
			return nil, err
		}
		return ScrapeResponse{Summary: summary, Markdown: string(markdown)}, nil
	})
}

// HandleGetDocumentSSE handles getDocument requests via SSE
func (s *MCPSSEServer) HandleGetDocumentSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "Document service not available", http.StatusServiceUnavailable)
		return
	}

	var request GetDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setStreamHeaders(w)

	s.stream(w, flusher, "document", map[string]string{"path": request.Path}, func() (any, error) {
		document, err := s.service.GetDocument(r.Context(), request.Path)
		if err != nil {
			return nil, err
		}
		return GetDocumentResponse{Document: document}, nil
	})
}

// stream writes <name>_start, then <name>_result and <name>_complete or
// <name>_error for a single request.
func (s *MCPSSEServer) stream(w http.ResponseWriter, flusher http.Flusher, name string, start any, fn func() (any, error)) {
	if err := writeEvent(w, flusher, newEvent(name+"_start", start)); err != nil {
		s.logger.Debug("failed to write start event", zap.String("stream", name), zap.Error(err))
		return
	}

	result, err := fn()
	if err != nil {
		_ = writeEvent(w, flusher, newEvent(name+"_error", map[string]string{"error": err.Error()}))
		return
	}
	if err := writeEvent(w, flusher, newEvent(name+"_result", result)); err != nil {
		s.logger.Debug("failed to write result event", zap.String("stream", name), zap.Error(err))
		return
	}
	_ = writeEvent(w, flusher, newEvent(name+"_complete", map[string]string{"status": "completed"}))
}

// GetConnectedClients returns information about connected clients
func (s *MCPSSEServer) GetConnectedClients() []map[string]any {
	clients := s.snapshot()
	ret := make([]map[string]any, 0, len(clients))
	for _, client := range clients {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		ret = append(ret, map[string]any{
			"id":        client.ID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return ret
}

// GetStats returns server statistics
func (s *MCPSSEServer) GetStats() map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]any{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}
