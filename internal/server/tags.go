package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/tagging"
)

type tagsRequest struct {
	Text string `json:"text"`
}

// recordJSON is a [tagging.TagRecord] plus its rendered tooltip.
type recordJSON struct {
	tagging.TagRecord
	Tooltip string `json:"tooltip"`
}

type tagsResponse struct {
	Records []recordJSON `json:"records"`
}

type entryJSON struct {
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants"`
	Label     string   `json:"label"`
}

type vocabularyResponse struct {
	SourceLanguage string      `json:"source_language"`
	TargetLanguage string      `json:"target_language"`
	Entries        []entryJSON `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newTagsResponse(records []tagging.TagRecord) tagsResponse {
	out := tagsResponse{Records: make([]recordJSON, len(records))}
	for i, r := range records {
		out.Records[i] = recordJSON{TagRecord: r, Tooltip: r.Tooltip()}
	}
	return out
}

func (s *Server) handlePostTags(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req tagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds 64 KiB")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newTagsResponse(s.proc.Process(r.Context(), req.Text)))
}

func (s *Server) handleGetTags(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if len(text) > maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "text exceeds 64 KiB")
		return
	}
	writeJSON(w, http.StatusOK, newTagsResponse(s.proc.Process(r.Context(), text)))
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	v := s.proc.Vocabulary()
	if v == nil {
		observe.Logger(r.Context()).Warn("vocabulary requested before one was loaded")
		writeError(w, http.StatusServiceUnavailable, "no vocabulary loaded")
		return
	}

	entries := v.Entries()
	resp := vocabularyResponse{
		SourceLanguage: v.SourceLanguage().String(),
		TargetLanguage: v.TargetLanguage().String(),
		Entries:        make([]entryJSON, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = entryJSON{
			Canonical: e.Canonical,
			Variants:  e.Variants,
			Label:     v.Translate(e.Canonical),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
