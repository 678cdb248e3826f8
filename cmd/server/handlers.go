package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ruh-integration-pages/internal/app"
	"ruh-integration-pages/internal/ioformats"
	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/parser"
	"ruh-integration-pages/internal/payload"
	"ruh-integration-pages/internal/pipeline"
	"ruh-integration-pages/internal/preview"
	"ruh-integration-pages/internal/store"
)

const maxBody = 4 << 20

type parseReq struct {
	Name     string `json:"name"`
	Logo     string `json:"logo"`
	Document string `json:"document"`
	Markdown bool   `json:"markdown"`
}

type parseResp struct {
	Payload  models.PublishPayload `json:"payload"`
	Stats    parser.Stats          `json:"stats"`
	Valid    bool                  `json:"valid"`
	Problems string                `json:"problems,omitempty"`
	Markdown string                `json:"markdown,omitempty"`
}

type classifyReq struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type classifyResp struct {
	Categories []int          `json:"categories"`
	Tags       []int          `json:"tags"`
	Scores     map[string]any `json:"scores,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func newMux(a *app.App, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	conv := preview.NewConverter()

	// one pipeline run at a time; the connector list has a single writer
	var running sync.Mutex

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		st, err := a.Pipeline.Status(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	// POST /parse  {"name": "...", "logo": "...", "document": "[Title]\n..."}
	mux.HandleFunc("POST /parse", func(w http.ResponseWriter, r *http.Request) {
		var req parseReq
		if err := decode(r, &req); err != nil || req.Name == "" || req.Document == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		p := a.Pipeline.BuildPayload(req.Name, req.Logo, req.Document)
		resp := parseResp{Payload: p, Valid: true}
		if st, err := parser.ContentStats(p.Content); err == nil {
			resp.Stats = st
		}
		if err := payload.Validate(p); err != nil {
			resp.Valid = false
			resp.Problems = err.Error()
		}
		if req.Markdown {
			md, err := conv.Page(p)
			if err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}
			resp.Markdown = md
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// POST /classify  {"name": "...", "content": "..."}
	mux.HandleFunc("POST /classify", func(w http.ResponseWriter, r *http.Request) {
		var req classifyReq
		if err := decode(r, &req); err != nil || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		res := a.Classifier.Classify(req.Name, req.Content)
		resp := classifyResp{Categories: res.Categories, Tags: res.Tags}
		if res.Err != nil {
			resp.Error = res.Err.Error()
		} else if cats, tags, err := a.Classifier.Explain(req.Name, req.Content); err == nil {
			resp.Scores = map[string]any{"categories": cats, "tags": tags}
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// POST /next  runs one pipeline item
	mux.HandleFunc("POST /next", func(w http.ResponseWriter, r *http.Request) {
		if !running.TryLock() {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a page is already being generated"})
			return
		}
		defer running.Unlock()

		out, err := a.Pipeline.Next(r.Context())
		switch {
		case errors.Is(err, pipeline.ErrNoPending):
			writeJSON(w, http.StatusOK, map[string]string{"status": "all connectors have been published"})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		case !out.Success:
			writeJSON(w, http.StatusBadGateway, out)
		default:
			writeJSON(w, http.StatusOK, out)
		}
	})

	// POST /connectors/upload (multipart file=...) -> status of the uploaded list
	mux.HandleFunc("POST /connectors/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart parse error"})
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file part 'file' required"})
			return
		}
		defer f.Close()

		// copy to a temp file with the upload's extension to reuse the format readers
		tmp, err := os.CreateTemp("", "connectors-*"+filepath.Ext(hdr.Filename))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "temp file error"})
			return
		}
		defer os.Remove(tmp.Name())
		if _, err := io.Copy(tmp, f); err != nil {
			tmp.Close()
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "copy error"})
			return
		}
		tmp.Close()

		list, err := ioformats.ReadConnectors(tmp.Name())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, store.Summarize(list))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
