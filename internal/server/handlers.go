package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"envgate/internal/envdef"
	"envgate/internal/store"
)

// envDefResponse is the wire shape for a definition.
type envDefResponse struct {
	EnvID   string         `json:"env_id"`
	Created *bool          `json:"created,omitempty"`
	Payload envdef.Payload `json:"payload,omitempty"`
}

// appEnvRequest asks to bind an (app, env) pair to a definition.
type appEnvRequest struct {
	App   string `json:"app"`
	Env   string `json:"env"`
	EnvID string `json:"env_id"`
}

// appEnvResponse reports a binding.
type appEnvResponse struct {
	App     string         `json:"app"`
	Env     string         `json:"env"`
	EnvID   string         `json:"env_id"`
	Payload envdef.Payload `json:"payload,omitempty"`
}

// handleSaveDefinition stores the request body as a definition payload.
// The body is the raw payload document; ids are derived server-side.
// Saving content that is already stored succeeds with created=false.
func (s *Server) handleSaveDefinition(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	payload, err := envdef.ParsePayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	def, err := envdef.New(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inserted, err := s.store.SaveDefinition(r.Context(), def)
	if err != nil {
		if store.IsShortIDCollision(err) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.log.Error().Err(err).Str("env_id", def.ShortID).Msg("save definition failed")
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, envDefResponse{EnvID: def.ShortID, Created: &inserted})
}

// handleGetDefinition fetches a definition by short id.
func (s *Server) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	envID := chi.URLParam(r, "envID")

	def, err := s.store.GetDefinition(r.Context(), envID)
	if err != nil {
		s.log.Error().Err(err).Str("env_id", envID).Msg("get definition failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if def == nil {
		writeError(w, http.StatusNotFound, "env_id not found")
		return
	}

	writeJSON(w, http.StatusOK, envDefResponse{EnvID: def.ShortID, Payload: def.Payload})
}

// handleBind appends a binding. The referenced definition must exist;
// an unknown env_id is a 404, matching the lookup semantics.
func (s *Server) handleBind(w http.ResponseWriter, r *http.Request) {
	var req appEnvRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.App == "" || req.Env == "" || req.EnvID == "" {
		writeError(w, http.StatusBadRequest, "app, env and env_id are required")
		return
	}

	if _, err := s.store.Bind(r.Context(), req.App, req.Env, req.EnvID); err != nil {
		if store.IsReferentialViolation(err) {
			writeError(w, http.StatusNotFound, "env_id not found")
			return
		}
		s.log.Error().Err(err).Str("app", req.App).Str("env", req.Env).Msg("bind failed")
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	writeJSON(w, http.StatusCreated, appEnvResponse{App: req.App, Env: req.Env, EnvID: req.EnvID})
}

// handleCurrentBinding answers "what is currently bound" for one pair.
func (s *Server) handleCurrentBinding(w http.ResponseWriter, r *http.Request) {
	app := r.URL.Query().Get("app")
	env := r.URL.Query().Get("env")
	if app == "" || env == "" {
		writeError(w, http.StatusBadRequest, "app and env query parameters are required")
		return
	}

	binding, err := s.store.CurrentBinding(r.Context(), app, env)
	if err != nil {
		s.log.Error().Err(err).Str("app", app).Str("env", env).Msg("current binding failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if binding == nil {
		writeError(w, http.StatusNotFound, "binding not found")
		return
	}

	writeJSON(w, http.StatusOK, appEnvResponse{
		App:     binding.App,
		Env:     binding.Env,
		EnvID:   binding.Definition.ShortID,
		Payload: binding.Definition.Payload,
	})
}

// handleListBindings returns the current binding for every known pair,
// sorted by app then env for stable output.
func (s *Server) handleListBindings(w http.ResponseWriter, r *http.Request) {
	current, err := s.store.ListCurrentBindings(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list bindings failed")
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	list := make([]appEnvResponse, 0, len(current))
	for key, envID := range current {
		list = append(list, appEnvResponse{App: key.App, Env: key.Env, EnvID: envID})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].App != list[j].App {
			return list[i].App < list[j].App
		}
		return list[i].Env < list[j].Env
	})

	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
