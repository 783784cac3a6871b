package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/AltairaLabs/promptpack-go/internal/guardrail"
	"github.com/AltairaLabs/promptpack-go/internal/parser"
	"github.com/AltairaLabs/promptpack-go/internal/render"
	"github.com/AltairaLabs/promptpack-go/internal/schema"
	"github.com/AltairaLabs/promptpack-go/internal/store"
)

type packRequest struct {
	Pack     json.RawMessage `json:"pack,omitempty"`
	PackPath string          `json:"pack_path,omitempty"`
}

type renderRequest struct {
	packRequest
	Prompt    string         `json:"prompt"`
	Variables map[string]any `json:"variables,omitempty"`
	Model     string         `json:"model,omitempty"`
	Strict    *bool          `json:"strict,omitempty"`
}

type validateRequest struct {
	packRequest
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleLint parses the request body as a pack document and reports
// either the pack's summary or every schema violation found.
func (s *Server) handleLint(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	pack, err := parser.Parse(body)
	if err != nil {
		respondParseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"id":      pack.ID,
		"name":    pack.Name,
		"version": pack.Version,
		"prompts": promptNames(pack),
	})
}

func (s *Server) handleRender(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(c, http.StatusBadRequest, fmt.Errorf("api: missing prompt name"))
		return
	}

	pack, ok := s.loadPack(c, req.packRequest)
	if !ok {
		return
	}

	var opts []render.Option
	if req.Model != "" {
		opts = append(opts, render.WithModel(req.Model))
	}
	r, err := render.New(pack, req.Prompt, opts...)
	if err != nil {
		respondError(c, http.StatusNotFound, err)
		return
	}

	strict := s.config.Render.Strict
	if req.Strict != nil {
		strict = *req.Strict
	}

	started := time.Now()
	var text string
	if strict {
		text, err = r.FormatStrict(req.Variables)
	} else {
		text, err = r.Format(req.Variables)
	}
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	toolNames := make([]string, 0)
	for _, t := range r.Tools() {
		toolNames = append(toolNames, t.Name)
	}

	if s.store != nil {
		_ = s.store.SaveRender(c.Request.Context(), &store.RenderRecord{
			ID:          newID(),
			PackID:      pack.ID,
			PackVersion: pack.Version,
			PromptName:  req.Prompt,
			Model:       req.Model,
			Strict:      strict,
			Variables:   req.Variables,
			OutputChars: utf8.RuneCountInString(text),
			DurationMs:  time.Since(started).Milliseconds(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"prompt":     text,
		"parameters": r.Parameters(),
		"tools":      toolNames,
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(c, http.StatusBadRequest, fmt.Errorf("api: missing prompt name"))
		return
	}

	pack, ok := s.loadPack(c, req.packRequest)
	if !ok {
		return
	}
	prompt, found := pack.Prompt(req.Prompt)
	if !found {
		respondError(c, http.StatusNotFound, fmt.Errorf("api: prompt %q not found", req.Prompt))
		return
	}

	result := guardrail.Run(req.Content, prompt.Validators)

	if s.store != nil {
		violations := make([]store.ViolationRecord, 0, len(result.Violations))
		for _, v := range result.Violations {
			violations = append(violations, store.ViolationRecord{
				ValidatorType:   v.ValidatorType,
				Message:         v.Message,
				FailOnViolation: v.FailOnViolation,
			})
		}
		_ = s.store.SaveValidation(c.Request.Context(), &store.ValidationRecord{
			ID:           newID(),
			PackID:       pack.ID,
			PromptName:   req.Prompt,
			ContentChars: utf8.RuneCountInString(req.Content),
			IsValid:      result.IsValid,
			Blocking:     result.HasBlockingViolations(),
			Violations:   violations,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"is_valid":                result.IsValid,
		"has_blocking_violations": result.HasBlockingViolations(),
		"violations":              result.Violations,
	})
}

// handleListPacks scans the configured packs directory and summarizes
// every pack document found there. Unparseable files are reported, not
// skipped silently.
func (s *Server) handleListPacks(c *gin.Context) {
	dir := s.config.Packs.Dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	type packSummary struct {
		File    string   `json:"file"`
		ID      string   `json:"id,omitempty"`
		Name    string   `json:"name,omitempty"`
		Version string   `json:"version,omitempty"`
		Prompts []string `json:"prompts,omitempty"`
		Error   string   `json:"error,omitempty"`
	}

	summaries := make([]packSummary, 0)
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".json" {
			continue
		}
		summary := packSummary{File: entry.Name()}
		pack, err := parser.ParseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			summary.Error = err.Error()
		} else {
			summary.ID = pack.ID
			summary.Name = pack.Name
			summary.Version = pack.Version
			summary.Prompts = promptNames(pack)
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"packs": summaries})
}

func (s *Server) handleRenderHistory(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusServiceUnavailable, fmt.Errorf("api: history storage not configured"))
		return
	}
	records, err := s.store.ListRenders(c.Request.Context(), historyFilter(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"renders": records})
}

func (s *Server) handleValidationHistory(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusServiceUnavailable, fmt.Errorf("api: history storage not configured"))
		return
	}
	records, err := s.store.ListValidations(c.Request.Context(), historyFilter(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validations": records})
}

// loadPack resolves the pack from an inline document or a file under the
// configured packs directory. On failure it writes the error response
// and returns ok=false.
func (s *Server) loadPack(c *gin.Context, req packRequest) (*schema.Pack, bool) {
	if len(req.Pack) > 0 {
		pack, err := parser.Parse(req.Pack)
		if err != nil {
			respondParseError(c, err)
			return nil, false
		}
		return pack, true
	}

	path := strings.TrimSpace(req.PackPath)
	if path == "" {
		respondError(c, http.StatusBadRequest, fmt.Errorf("api: provide pack or pack_path"))
		return nil, false
	}
	// Serve only documents inside the packs directory.
	if filepath.IsAbs(path) || strings.Contains(path, "..") {
		respondError(c, http.StatusBadRequest, fmt.Errorf("api: invalid pack_path %q", path))
		return nil, false
	}

	pack, err := parser.ParseFile(filepath.Join(s.config.Packs.Dir, path))
	if err != nil {
		respondParseError(c, err)
		return nil, false
	}
	return pack, true
}

func respondParseError(c *gin.Context, err error) {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      perr.Error(),
			"violations": perr.Violations,
		})
		return
	}
	respondError(c, http.StatusNotFound, err)
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func historyFilter(c *gin.Context) store.HistoryFilter {
	filter := store.HistoryFilter{
		PackID:     strings.TrimSpace(c.Query("pack")),
		PromptName: strings.TrimSpace(c.Query("prompt")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	return filter
}

func promptNames(pack *schema.Pack) []string {
	names := make([]string, 0, len(pack.Prompts))
	for name := range pack.Prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}
