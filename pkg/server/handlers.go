package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-tplform/pkg/document"
	"github.com/goliatone/go-tplform/pkg/export"
	"github.com/goliatone/go-tplform/pkg/render"
	"github.com/goliatone/go-tplform/pkg/session"
)

type workspaceCtxKey struct{}

// withWorkspace attaches the caller's workspace, creating one on first visit.
func (s *Server) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := s.sessions.GetString(ctx, workspaceKey)

		ws, ok := s.workspaces.Get(id)
		if !ok {
			newID, created, err := s.workspaces.Create()
			if err != nil {
				s.logger.Error("create workspace failed", "error", err)
				http.Error(w, "workspace unavailable", http.StatusInternalServerError)
				return
			}
			s.sessions.Put(ctx, workspaceKey, newID)
			ws = created
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, workspaceCtxKey{}, ws)))
	})
}

func workspaceFrom(r *http.Request) *workspace {
	ws, _ := r.Context().Value(workspaceCtxKey{}).(*workspace)
	return ws
}

func (s *Server) showPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	snap := ws.ctrl.Session()

	fields := make([]map[string]string, 0, snap.Placeholders().Len())
	for _, name := range snap.Placeholders() {
		fields = append(fields, map[string]string{"name": name, "value": snap.Value(name)})
	}

	data := map[string]any{
		"loaded": snap.Loaded(),
		"source": snap.Source(),
		"fields": fields,
	}
	if result, ok := snap.Result(); ok {
		data["rendered"] = true
		data["display"] = result.Display
		data["raw"] = result.Raw
	}
	if notice, ok := ws.notices.Take(); ok {
		data["notice"] = notice.Err.Error()
	}

	page, err := s.page.Execute(data)
	if err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

// uploadTemplate accepts a multipart "template" file or a pasted "content"
// field. Load failures surface as a notice on the next page view.
func (s *Server) uploadTemplate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	var src document.Source
	file, header, err := r.FormFile("template")
	switch {
	case err == nil:
		defer file.Close()
		src = document.SourceFromReader(header.Filename, file)
	case errors.Is(err, http.ErrMissingFile):
		src = document.SourceFromReader(r.FormValue("name"), strings.NewReader(r.FormValue("content")))
	default:
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	_, _ = workspaceFrom(r).ctrl.Load(r.Context(), src)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ws := workspaceFrom(r)

	values := make(map[string]string)
	for _, name := range ws.ctrl.Session().Placeholders() {
		if _, ok := r.PostForm[name]; ok {
			values[name] = r.PostForm.Get(name)
		}
	}
	ws.ctrl.Merge(values)
	_, _ = ws.ctrl.Render(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	export.DownloadHandler(func(ctx context.Context) (string, error) {
		var content string
		err := ws.ctrl.Export(ctx, export.ExporterFunc(func(_ context.Context, raw string) error {
			content = raw
			return nil
		}))
		return content, err
	}, session.ErrNothingToExport).ServeHTTP(w, r)
}

type resultView struct {
	Raw         string `json:"raw"`
	Display     string `json:"display"`
	Dialect     string `json:"dialect"`
	Formatted   bool   `json:"formatted"`
	FormatError string `json:"format_error,omitempty"`
}

type sessionView struct {
	Generation   uint64            `json:"generation"`
	Loaded       bool              `json:"loaded"`
	Source       string            `json:"source,omitempty"`
	Placeholders []string          `json:"placeholders"`
	Values       map[string]string `json:"values"`
	Result       *resultView       `json:"result,omitempty"`
	Ignored      []string          `json:"ignored,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func viewOf(snap session.Session) sessionView {
	view := sessionView{
		Generation:   snap.Generation(),
		Loaded:       snap.Loaded(),
		Source:       snap.Source(),
		Placeholders: []string(snap.Placeholders()),
		Values:       snap.Form().Values(),
	}
	if view.Placeholders == nil {
		view.Placeholders = []string{}
	}
	if view.Values == nil {
		view.Values = map[string]string{}
	}
	if result, ok := snap.Result(); ok {
		view.Result = resultViewOf(result)
	}
	return view
}

func resultViewOf(result render.Result) *resultView {
	rv := &resultView{
		Raw:       result.Raw,
		Display:   result.Display,
		Dialect:   string(result.Dialect),
		Formatted: result.Formatted,
	}
	if result.FormatErr != nil {
		rv.FormatError = result.FormatErr.Error()
	}
	return rv
}

func (s *Server) apiSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(workspaceFrom(r).ctrl.Session()))
}

// apiUpload takes the request body as the template text. The optional name
// query parameter labels it.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	body := http.MaxBytesReader(w, r.Body, s.maxUpload)
	src := document.SourceFromReader(r.URL.Query().Get("name"), body)

	snap, err := ws.ctrl.Load(r.Context(), src)
	if err != nil {
		view := viewOf(snap)
		view.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, view)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(snap))
}

type renderRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) apiRender(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	var req renderRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUpload)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, sessionView{Error: "invalid JSON body"})
			return
		}
	}

	ignored := ws.ctrl.Merge(req.Values)
	_, err := ws.ctrl.Render(r.Context())

	view := viewOf(ws.ctrl.Session())
	view.Ignored = ignored
	status := http.StatusOK
	switch {
	case errors.Is(err, session.ErrNoTemplate):
		status = http.StatusConflict
	case err != nil:
		status = http.StatusUnprocessableEntity
	}
	if err != nil {
		view.Error = err.Error()
	}
	writeJSON(w, status, view)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
