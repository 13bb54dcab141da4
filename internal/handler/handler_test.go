package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/middleware"
	"infinitism/internal/repository/memory"
	"infinitism/internal/service/export"
	serviceMindmap "infinitism/internal/service/mindmap"
	"infinitism/internal/service/source"
	"infinitism/internal/service/view"
)

type stubTopics struct{}

func (s stubTopics) Extract(ctx context.Context, content string) mindmap.Extraction {
	return s.ExtractWithModel(ctx, content, "")
}

func (stubTopics) ExtractWithModel(_ context.Context, _ string, _ string) mindmap.Extraction {
	return mindmap.Extraction{
		Topics: mindmap.TopicSet{
			Title: "Cells",
			MainTopics: []mindmap.MainTopic{
				{Topic: "Membrane", Subtopics: []string{"Lipids", "Proteins"}},
				{Topic: "Nucleus", Subtopics: []string{"DNA"}},
			},
		},
		Source: mindmap.SourceFallback,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newTestHandler(t))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mindmaps := serviceMindmap.NewService(
		memory.NewMindmapRepository(logger),
		stubTopics{},
		serviceMindmap.NewBuilder([]string{"#3B82F6", "#10B981"}),
		serviceMindmap.NewGenerationGate(2),
		logger,
	)
	mux := NewRouter(Deps{
		Mindmaps:  mindmaps,
		Sources:   source.NewExtractor(source.NewConverterRegistry(), 1<<20, logger),
		Exporter:  export.NewExporter(mindmaps, 1, logger),
		Views:     view.NewRegistry(mindmaps, time.Hour, logger),
		MaxUpload: 1 << 20,
		Logger:    logger,
	})

	return middleware.AuthMiddleware(nil, "local", logger)(mux)
}

func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func do(t *testing.T, method, target, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := noRedirect().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename, contentType string, data []byte) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return mw.FormDataContentType(), &buf
}

type generated struct {
	ID    string        `json:"id"`
	Data  mindmap.Data  `json:"data"`
	Stats mindmap.Stats `json:"stats"`
}

func generate(t *testing.T, srv *httptest.Server) generated {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/api/mindmaps", "application/json", strings.NewReader(`{"text":"cells have membranes"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}
	var g generated
	decode(t, resp, &g)
	return g
}

func TestGenerateAndRead(t *testing.T) {
	srv := newTestServer(t)
	g := generate(t, srv)

	if g.ID == "" || g.Data.Title != "Cells" {
		t.Fatalf("generated = %+v", g)
	}
	if g.Stats != (mindmap.Stats{NodeCount: 6, Depth: 2}) {
		t.Errorf("stats = %+v", g.Stats)
	}

	var got generated
	decode(t, do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID, "", nil), &got)
	if got.ID != g.ID || got.Stats.NodeCount != 6 {
		t.Errorf("get = %+v", got)
	}

	var list []mindmap.Summary
	decode(t, do(t, http.MethodGet, srv.URL+"/api/mindmaps", "", nil), &list)
	if len(list) != 1 || list[0].Title != "Cells" {
		t.Errorf("list = %+v", list)
	}

	var stats mindmap.Stats
	decode(t, do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID+"/stats", "", nil), &stats)
	if stats.Depth != 2 {
		t.Errorf("stats = %+v", stats)
	}

	var l layoutResponse
	decode(t, do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID+"/layout", "", nil), &l)
	if len(l.Nodes) != 6 || len(l.Links) != 5 || l.Nodes[0].ID != "root" {
		t.Errorf("layout nodes=%d links=%d", len(l.Nodes), len(l.Links))
	}
	if l.ViewBox[0] != -200 || l.ViewBox[2] != 1400 {
		t.Errorf("view box = %v", l.ViewBox)
	}

	resp := do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID+"/outline?ids=true", "", nil)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "├── Membrane [main-0]") {
		t.Errorf("outline = %q", body)
	}
}

func TestGenerateRejects(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       func() (string, io.Reader)
		wantStatus int
		wantDetail string
	}{
		{
			name:       "blank text",
			body:       func() (string, io.Reader) { return "application/json", strings.NewReader(`{"text":"   "}`) },
			wantStatus: http.StatusBadRequest,
			wantDetail: "Please provide some text",
		},
		{
			name:       "malformed json",
			body:       func() (string, io.Reader) { return "application/json", strings.NewReader(`{"text":`) },
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid request body",
		},
		{
			name: "unsupported upload",
			body: func() (string, io.Reader) {
				return multipartBody(t, nil, "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
			},
			wantStatus: http.StatusUnsupportedMediaType,
			wantDetail: "Unsupported file type",
		},
		{
			name: "empty upload",
			body: func() (string, io.Reader) {
				return multipartBody(t, nil, "notes.txt", "text/plain", []byte("  \n "))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "Failed to extract text from text file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, body := tt.body()
			resp := do(t, http.MethodPost, srv.URL+"/api/mindmaps", ct, body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := resp.Header.Get("Content-Type"); got != "application/problem+json" {
				t.Errorf("content type = %q", got)
			}
			var problem map[string]any
			decode(t, resp, &problem)
			if detail, _ := problem["detail"].(string); !strings.Contains(detail, tt.wantDetail) {
				t.Errorf("detail = %q, want %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestGenerateFromUpload(t *testing.T) {
	srv := newTestServer(t)

	ct, body := multipartBody(t, map[string]string{"text": "ignored"}, "notes.txt", "text/plain", []byte("Mitochondria produce energy"))
	resp := do(t, http.MethodPost, srv.URL+"/api/mindmaps", ct, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	ct, body = multipartBody(t, map[string]string{"text": "just text"}, "", "", nil)
	if resp := do(t, http.MethodPost, srv.URL+"/api/mindmaps", ct, body); resp.StatusCode != http.StatusCreated {
		t.Errorf("text field status = %d", resp.StatusCode)
	}
}

func TestExtractSource(t *testing.T) {
	srv := newTestServer(t)

	ct, body := multipartBody(t, nil, "notes.txt", "text/plain", []byte("one two three"))
	resp := do(t, http.MethodPost, srv.URL+"/api/sources", ct, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var src source.Source
	decode(t, resp, &src)
	if src.WordCount != 3 || src.Filename != "notes.txt" || src.MIMEType != source.MIMEText {
		t.Errorf("source = %+v", src)
	}

	if resp := do(t, http.MethodPost, srv.URL+"/api/sources", "application/json", strings.NewReader(`{}`)); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d", resp.StatusCode)
	}
}

func twoFileBody(t *testing.T) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.txt", "b.txt"} {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("cells divide"))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return mw.FormDataContentType(), &buf
}

func TestUploadRejectsMultipleFiles(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/sources", "/api/mindmaps"} {
		t.Run(path, func(t *testing.T) {
			ct, body := twoFileBody(t)
			resp := do(t, http.MethodPost, srv.URL+path, ct, body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d", resp.StatusCode)
			}
		})
	}
}

func TestUpdateNodeText(t *testing.T) {
	srv := newTestServer(t)
	g := generate(t, srv)
	base := srv.URL + "/api/mindmaps/" + g.ID + "/nodes/"

	tests := []struct {
		name       string
		node       string
		body       string
		wantStatus int
	}{
		{name: "missing text", node: "main-0", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "null text", node: "main-0", body: `{"text":null}`, wantStatus: http.StatusBadRequest},
		{name: "unknown node", node: "sub-9-9", body: `{"text":"x"}`, wantStatus: http.StatusNotFound},
		{name: "ok", node: "sub-0-1", body: `{"text":"Channels"}`, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPatch, base+tt.node, "application/json", strings.NewReader(tt.body))
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	var got generated
	decode(t, do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID, "", nil), &got)
	if n, ok := got.Data.FindNode("sub-0-1"); !ok || n.Text != "Channels" {
		t.Errorf("node = %+v", n)
	}
}

func TestRenderAndExport(t *testing.T) {
	srv := newTestServer(t)
	g := generate(t, srv)
	base := srv.URL + "/api/mindmaps/" + g.ID

	tests := []struct {
		path        string
		contentType string
		disposition string
		prefix      string
	}{
		{path: "/render.svg", contentType: "image/svg+xml", prefix: "<?xml"},
		{path: "/render.png", contentType: "image/png", prefix: "\x89PNG"},
		{path: "/export.pdf", contentType: "application/pdf", disposition: `attachment; filename="Cells_mindmap.pdf"`, prefix: "%PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := do(t, http.MethodGet, base+tt.path, "", nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("content type = %q", got)
			}
			if got := resp.Header.Get("Content-Disposition"); got != tt.disposition {
				t.Errorf("disposition = %q", got)
			}
			body, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(body, []byte(tt.prefix)) {
				t.Errorf("body starts with %q", body[:min(len(body), 8)])
			}
		})
	}

	if resp := do(t, http.MethodGet, srv.URL+"/api/mindmaps/missing/export.pdf", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing export status = %d", resp.StatusCode)
	}
}

type viewState struct {
	ID            string             `json:"id"`
	Mode          string             `json:"mode"`
	EditingNodeID string             `json:"editing_node_id"`
	Draft         string             `json:"draft"`
	SidebarOpen   bool               `json:"sidebar_open"`
	Viewport      view.ViewportState `json:"viewport"`
	Stats         mindmap.Stats      `json:"stats"`
}

func TestViewSession(t *testing.T) {
	srv := newTestServer(t)
	g := generate(t, srv)

	resp := do(t, http.MethodPost, srv.URL+"/api/mindmaps/"+g.ID+"/views", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open status = %d", resp.StatusCode)
	}
	var state viewState
	decode(t, resp, &state)
	if state.Mode != "viewing" || !state.SidebarOpen || state.Stats.NodeCount != 6 {
		t.Fatalf("opened = %+v", state)
	}

	actions := srv.URL + "/api/views/" + state.ID + "/actions"
	steps := []struct {
		body       string
		wantStatus int
		check      func(viewState) bool
	}{
		{`{"action":"begin_edit","node_id":"main-0"}`, http.StatusOK, func(s viewState) bool {
			return s.Mode == "editing" && s.Draft == "Membrane" && s.EditingNodeID == "main-0"
		}},
		{`{"action":"begin_edit","node_id":"main-1"}`, http.StatusConflict, nil},
		{`{"action":"confirm_edit","text":"Walls"}`, http.StatusOK, func(s viewState) bool { return s.Mode == "viewing" }},
		{`{"action":"cancel_edit"}`, http.StatusConflict, nil},
		{`{"action":"begin_edit","node_id":"root"}`, http.StatusBadRequest, nil},
		{`{"action":"begin_edit","node_id":"main-1"}`, http.StatusOK, func(s viewState) bool { return s.Mode == "editing" }},
		{`{"action":"confirm_edit","text":""}`, http.StatusOK, func(s viewState) bool { return s.Mode == "viewing" }},
		{`{"action":"zoom_in"}`, http.StatusOK, func(s viewState) bool { return s.Viewport.Scale > 1 }},
		{`{"action":"reset"}`, http.StatusOK, func(s viewState) bool { return s.Viewport.Scale == 1 }},
		{`{"action":"toggle_sidebar"}`, http.StatusOK, func(s viewState) bool { return !s.SidebarOpen }},
		{`{"action":"zoom","factor":0}`, http.StatusBadRequest, nil},
		{`{"action":"fly"}`, http.StatusBadRequest, nil},
	}
	for _, step := range steps {
		resp := do(t, http.MethodPost, actions, "application/json", strings.NewReader(step.body))
		if resp.StatusCode != step.wantStatus {
			t.Errorf("%s: status = %d, want %d", step.body, resp.StatusCode, step.wantStatus)
			continue
		}
		if step.check != nil {
			var s viewState
			decode(t, resp, &s)
			if !step.check(s) {
				t.Errorf("%s: state = %+v", step.body, s)
			}
		}
	}

	var got generated
	decode(t, do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID, "", nil), &got)
	if n, _ := got.Data.FindNode("main-0"); n == nil || n.Text != "Walls" {
		t.Errorf("confirmed text not stored: %+v", n)
	}
	if n, _ := got.Data.FindNode("main-1"); n == nil || n.Text != "" {
		t.Errorf("empty label not stored: %+v", n)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/api/views/"+state.ID, "", nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("close status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/views/"+state.ID, "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("closed session status = %d", resp.StatusCode)
	}
}

func TestDeleteClosesViews(t *testing.T) {
	srv := newTestServer(t)
	g := generate(t, srv)

	var state viewState
	decode(t, do(t, http.MethodPost, srv.URL+"/api/mindmaps/"+g.ID+"/views", "application/json",
		strings.NewReader(`{"wrapper_width":800,"wrapper_height":600}`)), &state)
	if state.Viewport.WrapperWidth != 800 {
		t.Errorf("wrapper = %+v", state.Viewport)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/api/mindmaps/"+g.ID, "", nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/mindmaps/"+g.ID, "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/views/"+state.ID, "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("view after delete status = %d", resp.StatusCode)
	}
}

func TestPages(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/viewer/nope", "", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("missing viewer status = %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil || loc.Path != "/generator" || loc.Query().Get("notice") != MissingMindmapNotice {
		t.Errorf("redirect = %q", resp.Header.Get("Location"))
	}

	resp = do(t, http.MethodGet, srv.URL+loc.String(), "", nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), MissingMindmapNotice) {
		t.Errorf("generator page status=%d notice missing", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/generator", "application/x-www-form-urlencoded",
		strings.NewReader(url.Values{"text": {"cells"}}.Encode()))
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/viewer/") {
		t.Fatalf("generate page status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = do(t, http.MethodGet, srv.URL+resp.Header.Get("Location"), "", nil)
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<svg") || !strings.Contains(string(body), "Membrane") {
		t.Errorf("viewer page status=%d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/generator", "application/x-www-form-urlencoded",
		strings.NewReader(url.Values{"text": {"  "}}.Encode()))
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "Please provide some text") {
		t.Errorf("blank generate page status=%d", resp.StatusCode)
	}
}

func TestPagesOversizedUpload(t *testing.T) {
	h := newTestHandler(t)

	ct, body := multipartBody(t, nil, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 3<<20))
	req := httptest.NewRequest(http.MethodPost, "/generator", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too large") {
		t.Errorf("notice missing from page")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	decode(t, do(t, http.MethodGet, srv.URL+"/health", "", nil), &body)
	if body["status"] != "ok" {
		t.Errorf("health = %v", body)
	}
}
