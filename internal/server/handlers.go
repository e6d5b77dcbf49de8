package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vantorre/redline/internal/extractor"
	"github.com/vantorre/redline/internal/patch"
)

// errorResponse is the JSON shape of every failure. Failures are always
// structured data; nothing is raised at the client uncaught.
type errorResponse struct {
	Error string `json:"error"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}

// health reports liveness and whether the review capability is usable
func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":              "healthy",
		"bedrock_initialized": s.reviews.Configured(),
		"model":               s.cfg.Bedrock.ModelID,
	})
}

type reviewCodeRequest struct {
	Code     string `json:"code"`
	FilePath string `json:"file_path"`
	Language string `json:"language"`
}

// reviewCode reviews pasted code text. Degraded (fallback) records are a
// 200 like any other review.
func (s *Server) reviewCode(c echo.Context) error {
	var req reviewCodeRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return jsonError(c, http.StatusBadRequest, "code is required")
	}

	rec := s.reviews.ReviewCode(c.Request().Context(), req.Code, req.FilePath, req.Language)
	return c.JSON(http.StatusOK, rec)
}

type reviewFilePathRequest struct {
	FilePath string `json:"file_path"`
}

func (s *Server) reviewFilePath(c echo.Context) error {
	var req reviewFilePathRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.FilePath == "" {
		return jsonError(c, http.StatusBadRequest, "file_path is required")
	}

	rec := s.reviews.ReviewFile(c.Request().Context(), req.FilePath)
	return c.JSON(http.StatusOK, rec)
}

type reviewDirectoryRequest struct {
	DirPath  string `json:"dir_path"`
	MaxFiles int    `json:"max_files"`
}

func (s *Server) reviewDirectory(c echo.Context) error {
	var req reviewDirectoryRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.DirPath == "" {
		return jsonError(c, http.StatusBadRequest, "dir_path is required")
	}

	rec, err := s.reviews.ReviewDirectory(c.Request().Context(), req.DirPath, req.MaxFiles)
	if err != nil {
		return jsonError(c, http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

type reviewMultipleRequest struct {
	FilePaths []string `json:"file_paths"`
}

func (s *Server) reviewMultiple(c echo.Context) error {
	var req reviewMultipleRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if len(req.FilePaths) == 0 {
		return jsonError(c, http.StatusBadRequest, "file_paths is required")
	}

	rec := s.reviews.ReviewFiles(c.Request().Context(), req.FilePaths)
	return c.JSON(http.StatusOK, rec)
}

type reviewGitRequest struct {
	RepoPath string `json:"repo_path"`
	BaseRef  string `json:"base_ref"`
	HeadRef  string `json:"head_ref"`
}

func (s *Server) reviewGit(c echo.Context) error {
	var req reviewGitRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.RepoPath == "" {
		return jsonError(c, http.StatusBadRequest, "repo_path is required")
	}
	if req.BaseRef == "" {
		req.BaseRef = "main"
	}
	if req.HeadRef == "" {
		req.HeadRef = "HEAD"
	}

	rec, err := s.reviews.ReviewRepo(c.Request().Context(), req.RepoPath, req.BaseRef, req.HeadRef)
	if err != nil {
		return jsonError(c, http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

type applyFixRequest struct {
	FilePath     string `json:"file_path"`
	Line         int    `json:"line"`
	Suggestion   string `json:"suggestion"`
	ContextLines int    `json:"context_lines"`
}

type applyFixResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	BackupPath string `json:"backup_path"`
}

// applyFix extracts the fragment from a suggestion and splices it into
// the named file. Patch failures map to specific status codes so clients
// can distinguish a missing file from a bad line number.
func (s *Server) applyFix(c echo.Context) error {
	var req applyFixRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.FilePath == "" {
		return jsonError(c, http.StatusBadRequest, "file_path is required")
	}

	fragment, err := extractor.ExtractSuggestionCode(req.Suggestion)
	if err != nil {
		return jsonError(c, http.StatusUnprocessableEntity, err.Error())
	}

	var opts []patch.Option
	if req.ContextLines > 0 {
		opts = append(opts, patch.WithContextLines(req.ContextLines))
	} else if s.cfg.Review.ContextLines > 0 {
		opts = append(opts, patch.WithContextLines(s.cfg.Review.ContextLines))
	}

	result, err := patch.Apply(req.FilePath, req.Line, fragment, opts...)
	if err != nil {
		var accessErr *patch.FileAccessError
		var rangeErr *patch.OutOfRangeError
		switch {
		case errors.As(err, &accessErr):
			return jsonError(c, http.StatusNotFound, err.Error())
		case errors.As(err, &rangeErr):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, patch.ErrEmptyFragment):
			return jsonError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			return jsonError(c, http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, applyFixResponse{
		Success:    true,
		Message:    result.Message,
		BackupPath: result.BackupPath,
	})
}

// listResults serves recent review runs, preferring the database and
// falling back to the archived JSON files.
func (s *Server) listResults(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return jsonError(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	if s.runs != nil {
		runs, err := s.runs.ListRuns(c.Request().Context(), limit)
		if err == nil {
			return c.JSON(http.StatusOK, map[string]any{"results": runs, "count": len(runs)})
		}
		s.logger.Warn("history listing failed, falling back to file sink", "error", err)
	}

	saved, err := s.store.List(limit)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"results": saved, "count": len(saved)})
}

// listFiles lists reviewable source files under a directory
func (s *Server) listFiles(c echo.Context) error {
	dir := c.QueryParam("dir")
	if dir == "" {
		dir = "."
	}

	files, err := s.scanner.FindSourceFiles(dir, s.cfg.Review.MaxFiles)
	if err != nil {
		return jsonError(c, http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"files": files, "count": len(files)})
}
