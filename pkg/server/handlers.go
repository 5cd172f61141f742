package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/placement"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/scene"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: apperr.UserMessage(err), Code: string(apperr.GetCode(err))})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) > MaxBodySize {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "request body exceeds %d bytes", MaxBodySize)
	}
	return data, nil
}

func ringIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "invalid ring index %q", raw)
	}
	return i, nil
}

// apply submits cmds in order and waits for the scene. A missing template
// does not fail the request: the edits are kept and the scene follows once
// a template is loaded.
func (s *Server) apply(ctx context.Context, cmds ...pipeline.Command) error {
	for _, cmd := range cmds {
		if _, err := s.studio.Submit(ctx, cmd); err != nil {
			return err
		}
	}
	if err := s.studio.Sync(ctx); err != nil && !apperr.Is(err, apperr.ErrCodeTemplateUnavailable) {
		return err
	}
	return nil
}

func (s *Server) respondRings(w http.ResponseWriter, status int) {
	writeJSON(w, status, ring.ToSnapshot(s.studio.Rings()))
}

// =============================================================================
// Rings
// =============================================================================

func (s *Server) getRings(w http.ResponseWriter, r *http.Request) {
	s.respondRings(w, http.StatusOK)
}

func (s *Server) putRings(w http.ResponseWriter, r *http.Request) {
	doc, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.apply(r.Context(), pipeline.ImportSnapshot{Doc: doc}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondRings(w, http.StatusOK)
}

func (s *Server) addRing(w http.ResponseWriter, r *http.Request) {
	if err := s.apply(r.Context(), pipeline.AddRing{}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondRings(w, http.StatusCreated)
}

func (s *Server) deleteRing(w http.ResponseWriter, r *http.Request) {
	i, err := ringIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.apply(r.Context(), pipeline.DeleteRing{Ring: i}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondRings(w, http.StatusOK)
}

type ringPatch struct {
	Layers       *int     `json:"layers"`
	YOffset      *float64 `json:"yOffset"`
	ResetYOffset bool     `json:"resetYOffset"`
	OriginModule *int     `json:"originModule"`
	Locked       *bool    `json:"locked"`
	Visible      *bool    `json:"visible"`
}

func (p ringPatch) commands(i int) []pipeline.Command {
	var cmds []pipeline.Command
	if p.Layers != nil {
		cmds = append(cmds, pipeline.SetLayers{Ring: i, Layers: *p.Layers})
	}
	if p.YOffset != nil {
		cmds = append(cmds, pipeline.SetYOffset{Ring: i, YOffset: *p.YOffset})
	}
	if p.ResetYOffset {
		cmds = append(cmds, pipeline.ResetYOffset{Ring: i})
	}
	if p.OriginModule != nil {
		cmds = append(cmds, pipeline.SetOriginModule{Ring: i, Origin: *p.OriginModule})
	}
	if p.Locked != nil {
		cmds = append(cmds, pipeline.SetLocked{Ring: i, Locked: *p.Locked})
	}
	if p.Visible != nil {
		cmds = append(cmds, pipeline.SetVisible{Ring: i, Visible: *p.Visible})
	}
	return cmds
}

func (s *Server) patchRing(w http.ResponseWriter, r *http.Request) {
	i, err := ringIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body ringPatch
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	cmds := body.commands(i)
	if len(cmds) == 0 {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "patch changes nothing"))
		return
	}
	if err := s.apply(r.Context(), cmds...); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondRings(w, http.StatusOK)
}

type paramRequest struct {
	Param  string   `json:"param"`
	Value  *float64 `json:"value"`
	Toggle bool     `json:"toggle"`
}

func (s *Server) postParam(w http.ResponseWriter, r *http.Request) {
	i, err := ringIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body paramRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := ring.ParseParam(body.Param)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "%v", err))
		return
	}

	var cmds []pipeline.Command
	if body.Toggle {
		cmds = append(cmds, pipeline.ToggleFixed{Ring: i, Param: p})
	}
	if body.Value != nil {
		cmds = append(cmds, pipeline.SetParam{Ring: i, Param: p, Value: *body.Value})
	}
	if len(cmds) == 0 {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "request needs a value or toggle"))
		return
	}
	if err := s.apply(r.Context(), cmds...); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondRings(w, http.StatusOK)
}

// =============================================================================
// Instances and paint
// =============================================================================

func (s *Server) getInstances(w http.ResponseWriter, r *http.Request) {
	insts := s.studio.Instances()
	if raw := r.URL.Query().Get("ring"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "invalid ring %q", raw))
			return
		}
		filtered := make([]placement.Instance, 0, len(insts))
		for _, inst := range insts {
			if inst.Key.Ring == i {
				filtered = append(filtered, inst)
			}
		}
		insts = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"generation": s.studio.Generation(),
		"instances":  insts,
	})
}

type paintRequest struct {
	Color string      `json:"color"`
	Keys  []paint.Key `json:"keys"`
}

func (s *Server) postPaint(w http.ResponseWriter, r *http.Request) {
	var body paintRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	col, err := paint.ParseHex(body.Color)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid color %q", body.Color))
		return
	}
	if err := s.apply(r.Context(), pipeline.Paint{Color: col, Keys: body.Keys}); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"painted": s.studio.Colors().Painted()})
}

// =============================================================================
// Template, plan and export
// =============================================================================

func (s *Server) putTemplate(w http.ResponseWriter, r *http.Request) {
	buf, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.glb"
	}
	if err := s.apply(r.Context(), pipeline.LoadTemplate{Source: name, Buffer: buf}); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    name,
		"instances": len(s.studio.Instances()),
	})
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	dot := scene.PlanDOT(s.studio.Rings())
	if r.URL.Query().Get("format") == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = io.WriteString(w, dot)
		return
	}
	svg, err := scene.RenderPlanSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "render plan"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

type exportRequest struct {
	Name string `json:"name"`
}

type exportResponse struct {
	Name       string   `json:"name,omitempty"`
	Size       int      `json:"size"`
	Primitives int      `json:"primitives"`
	Customized int      `json:"customized"`
	Warnings   []string `json:"warnings,omitempty"`
	Cached     bool     `json:"cached"`
}

func (s *Server) postExport(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.studio.Export(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Name == "" {
		w.Header().Set("Content-Type", "model/gltf-binary")
		_, _ = w.Write(res.Buffer)
		return
	}
	w.Header().Set("Location", "/assets/"+res.Name)
	writeJSON(w, http.StatusCreated, exportResponse{
		Name:       res.Name,
		Size:       len(res.Buffer),
		Primitives: res.Primitives,
		Customized: res.Customized,
		Warnings:   res.Warnings,
		Cached:     res.CacheHit,
	})
}

// =============================================================================
// Assets
// =============================================================================

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		s.writeError(w, r, apperr.New(apperr.ErrCodeNotFound, "no asset store configured"))
		return false
	}
	return true
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	assets, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	buf, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	_, _ = w.Write(buf)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
