package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/sirupsen/logrus"

	"github.com/kiesman99/gridsplit/internal/api"
	"github.com/kiesman99/gridsplit/internal/export"
	"github.com/kiesman99/gridsplit/internal/render"
	"github.com/kiesman99/gridsplit/internal/session"
	"github.com/kiesman99/gridsplit/pkg/grid"
)

// DefaultMaxUpload bounds uploaded image size
const DefaultMaxUpload = 32 << 20

// Options configures a Server
type Options struct {
	Renderer  *render.Renderer
	Store     *session.Store
	MaxUpload int64
	Logger    logrus.FieldLogger
}

// Server implements the ServerInterface from the api package
type Server struct {
	startTime time.Time
	version   string
	renderer  *render.Renderer
	store     *session.Store
	maxUpload int64
	log       logrus.FieldLogger
}

// NewServer creates a new server instance
func NewServer(version string, opts Options) *Server {
	s := &Server{
		startTime: time.Now(),
		version:   version,
		renderer:  opts.Renderer,
		store:     opts.Store,
		maxUpload: opts.MaxUpload,
		log:       opts.Logger,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.renderer == nil {
		s.renderer = render.New(render.Options{Logger: s.log})
	}
	if s.store == nil {
		s.store = session.NewStore()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	return s
}

// Store returns the session store backing the server
func (s *Server) Store() *session.Store {
	return s.store
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())
	sessions := s.store.Len()

	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
		Sessions:  &sessions,
	})
}

// GetRectangles partitions an image size without any upload
func (s *Server) GetRectangles(w http.ResponseWriter, r *http.Request, params api.GetRectanglesParams) {
	if params.Width <= 0 || params.Height <= 0 {
		s.writeValidationErrorResponse(w, r, "size", "width and height must be positive")
		return
	}

	cfg := grid.Config{Rows: params.Rows, Cols: params.Cols}
	if params.RowPositions != nil {
		cfg.RowPositions = *params.RowPositions
	}
	if params.ColPositions != nil {
		cfg.ColPositions = *params.ColPositions
	}
	if err := cfg.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.RectanglesResponse{
		Width:       params.Width,
		Height:      params.Height,
		Grid:        toAPIGrid(cfg),
		Rectangles:  toAPIRectangles(grid.ComputeRectangles(params.Width, params.Height, cfg)),
		RowDividers: nonNil(grid.Dividers(cfg, grid.AxisRow)),
		ColDividers: nonNil(grid.Dividers(cfg, grid.AxisCol)),
	})
}

// SplitImage splits an uploaded image in a single request. The multipart
// form carries the image plus rows, cols, row_positions, col_positions and an
// optional crop "x,y,width,height".
func (s *Server) SplitImage(w http.ResponseWriter, r *http.Request, params api.SplitImageParams) {
	filename, img, err := s.readUpload(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	form := url.Values(r.MultipartForm.Value)
	cfg, err := parseGridForm(form)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if crop, ok, err := parseCropForm(form); err != nil {
		s.handleError(w, r, err)
		return
	} else if ok {
		if img, err = render.Crop(img, crop); err != nil {
			s.handleError(w, r, err)
			return
		}
	}

	base := render.BaseName(filename)
	size := img.Bounds().Size()
	tiles, err := s.renderer.Render(r.Context(), img, grid.ComputeRectangles(size.X, size.Y, cfg), base)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID(r),
		"file":       filename,
		"tiles":      len(tiles),
	}).Info("split image")

	if params.Format != nil && *params.Format == api.Json {
		s.writeJSON(w, http.StatusOK, toSplitResponse(cfg, base, tiles))
		return
	}
	s.writeArchive(w, r, base, tiles)
}

// readUpload decodes the "image" part of a multipart request
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, image.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return "", nil, err
		}
		return "", nil, &render.DecodeError{Op: "read", Err: err}
	}

	file, hdr, err := r.FormFile("image")
	if err != nil {
		return "", nil, &render.DecodeError{Op: "read", Err: fmt.Errorf("multipart field \"image\": %w", err)}
	}
	defer file.Close()

	img, err := render.Decode(file)
	if err != nil {
		return "", nil, err
	}
	return hdr.Filename, img, nil
}

// parseGridForm reads rows, cols and optional positions; missing counts
// default to the 3x3 grid
func parseGridForm(form url.Values) (grid.Config, error) {
	cfg := grid.DefaultConfig()

	fields := []struct {
		name string
		dest *int
	}{{"rows", &cfg.Rows}, {"cols", &cfg.Cols}}
	for _, f := range fields {
		if err := runtime.BindQueryParameter("form", true, false, f.name, form, f.dest); err != nil {
			return cfg, &grid.ConfigError{Field: f.name, Message: err.Error()}
		}
	}

	if err := runtime.BindQueryParameter("form", false, false, "row_positions", form, &cfg.RowPositions); err != nil {
		return cfg, &grid.ConfigError{Field: "row_positions", Message: err.Error()}
	}
	if err := runtime.BindQueryParameter("form", false, false, "col_positions", form, &cfg.ColPositions); err != nil {
		return cfg, &grid.ConfigError{Field: "col_positions", Message: err.Error()}
	}

	return cfg, cfg.Validate()
}

// parseCropForm reads an optional crop rectangle given as "x,y,width,height"
func parseCropForm(form url.Values) (image.Rectangle, bool, error) {
	var parts []int
	if err := runtime.BindQueryParameter("form", false, false, "crop", form, &parts); err != nil {
		return image.Rectangle{}, false, &grid.ConfigError{Field: "crop", Message: err.Error()}
	}
	if parts == nil {
		return image.Rectangle{}, false, nil
	}
	if len(parts) != 4 || parts[2] <= 0 || parts[3] <= 0 {
		return image.Rectangle{}, false, &grid.ConfigError{Field: "crop", Message: "expected x,y,width,height with positive size"}
	}
	return image.Rect(parts[0], parts[1], parts[0]+parts[2], parts[1]+parts[3]), true, nil
}

func (s *Server) writeArchive(w http.ResponseWriter, r *http.Request, base string, tiles []render.Tile) {
	var buf bytes.Buffer
	if err := export.WriteArchive(&buf, tiles); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeAttachment(w, r, "application/zip", export.ArchiveName(base), buf.Bytes())
}

func (s *Server) writeAttachment(w http.ResponseWriter, r *http.Request, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Request-ID", requestID(r))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).Warn("error writing response")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("error encoding response")
	}
}

// handleError maps domain errors onto API error responses
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr    *grid.ConfigError
		decodeErr *render.DecodeError
		renderErr *render.RenderError
		sizeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &cfgErr):
		s.writeValidationErrorResponse(w, r, cfgErr.Field, cfgErr.Error())
	case errors.As(err, &decodeErr):
		s.writeErrorResponse(w, r, http.StatusBadRequest, api.INVALIDIMAGE, decodeErr.Error(), nil)
	case errors.As(err, &renderErr):
		s.writeErrorResponse(w, r, http.StatusUnprocessableEntity, api.RENDERERROR, renderErr.Error(), map[string]interface{}{
			"row": renderErr.Row + 1,
			"col": renderErr.Col + 1,
		})
	case errors.As(err, &sizeErr):
		s.writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, api.INVALIDREQUEST,
			fmt.Sprintf("upload exceeds %d bytes", sizeErr.Limit), nil)
	case errors.Is(err, session.ErrSplitInProgress):
		s.writeErrorResponse(w, r, http.StatusConflict, api.SPLITINPROGRESS, err.Error(), nil)
	case errors.Is(err, grid.ErrDragActive), errors.Is(err, grid.ErrNotDragging):
		s.writeErrorResponse(w, r, http.StatusConflict, api.INVALIDREQUEST, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, r, http.StatusGatewayTimeout, api.INTERNALERROR,
			"Request timed out", nil)
	default:
		s.log.WithError(err).WithField("request_id", requestID(r)).Error("request failed")
		s.writeErrorResponse(w, r, http.StatusInternalServerError, api.INTERNALERROR,
			"Internal server error", nil)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, code api.ErrorCode, message string, details map[string]interface{}) {
	id := requestID(r)
	response := api.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestId: &id,
	}
	if details != nil {
		response.Details = &details
	}
	s.writeJSON(w, statusCode, response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, r *http.Request, field, message string) {
	s.writeErrorResponse(w, r, http.StatusBadRequest, api.VALIDATIONERROR, message, map[string]interface{}{
		"field": field,
	})
}

// ParamErrorHandler reports parameter binding failures as validation errors
func (s *Server) ParamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var paramErr *api.InvalidParamFormatError
	if errors.As(err, &paramErr) {
		s.writeValidationErrorResponse(w, r, paramErr.ParamName, err.Error())
		return
	}
	s.writeErrorResponse(w, r, http.StatusBadRequest, api.INVALIDREQUEST, err.Error(), nil)
}

// requestID returns the id assigned by the RequestID middleware, or a
// time-based one when the middleware is absent
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}

var _ api.ServerInterface = (*Server)(nil)
