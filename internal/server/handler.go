package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"sysmon/internal/logger"
	"sysmon/internal/monitor"
	"sysmon/internal/server/middleware"
	"sysmon/internal/storage/sqlite"
)

var errInvalidBody = errors.New("invalid request body")

type MetricsHandler struct {
	store  *SnapshotStore
	hub    *Hub
	agents *sqlite.AgentRepository
	valid  *validator.Validate
	log    logger.Logger
}

func NewMetricsHandler(store *SnapshotStore, hub *Hub, agents *sqlite.AgentRepository, log logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		store:  store,
		hub:    hub,
		agents: agents,
		valid:  newValidator(),
		log:    log,
	}
}

// Ingest accepts one snapshot per request. The previous snapshot for the
// same agent is overwritten; nothing is persisted.
func (h *MetricsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var snap monitor.Snapshot
	if err := decodeStrict(r, &snap); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.valid.Struct(snap); err != nil {
		JSONValidationError(w, validationErrors(snap, err))
		return
	}

	agentID, ok := middleware.GetAgentID(r.Context())
	if !ok {
		agentID = r.Header.Get("X-Agent-ID")
	}
	if agentID == "" {
		agentID = "unknown"
	}
	hostname := r.Header.Get("X-Agent-Host")

	stored := h.store.Set(agentID, hostname, snap)
	h.hub.Broadcast(stored)

	if h.agents != nil {
		if err := h.agents.Touch(r.Context(), agentID, hostname, time.Now().UTC()); err != nil {
			h.log.Error("failed to record agent", "agent_id", agentID, "error", err)
		}
	}

	JSONSuccess(w, http.StatusAccepted, APIResponse{Message: "snapshot received"})
}

// Latest returns the most recent snapshot of one agent (?agent=<id>) or of
// every agent when no ID is given.
func (h *MetricsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if agentID := r.URL.Query().Get("agent"); agentID != "" {
		stored, ok := h.store.Get(agentID)
		if !ok {
			JSONError(w, http.StatusNotFound, "no snapshot for agent")
			return
		}
		JSONSuccess(w, http.StatusOK, APIResponse{Data: stored})
		return
	}

	JSONSuccess(w, http.StatusOK, APIResponse{Data: h.store.All()})
}

// AgentIndex lists every agent that has ever reported.
func (h *MetricsHandler) AgentIndex(w http.ResponseWriter, r *http.Request) {
	if h.agents == nil {
		JSONSuccess(w, http.StatusOK, APIResponse{Data: []*sqlite.Agent{}})
		return
	}

	agents, err := h.agents.List(r.Context())
	if err != nil {
		h.log.Error("failed to list agents", "error", err)
		JSONError(w, http.StatusInternalServerError, "failed to list agents")
		return
	}
	if agents == nil {
		agents = []*sqlite.Agent{}
	}

	JSONSuccess(w, http.StatusOK, APIResponse{Data: agents})
}

func decodeStrict(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}
