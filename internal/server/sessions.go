package server

import (
	"encoding/json"
	"image"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kiesman99/gridsplit/internal/api"
	"github.com/kiesman99/gridsplit/internal/render"
	"github.com/kiesman99/gridsplit/internal/session"
	"github.com/kiesman99/gridsplit/pkg/grid"
)

// CreateSession uploads an image and starts editing it with a 3x3 grid
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	filename, img, err := s.readUpload(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sess := s.store.Create(filename, img)
	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"file":    filename,
		"size":    img.Bounds().Size().String(),
	}).Info("session created")

	s.writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// GetSession returns the session state and its current rectangles
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// DeleteSession discards a session and everything it holds
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	if !s.store.Delete(sessionId.String()) {
		s.writeNotFound(w, r, sessionId)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateGrid changes row and/or column counts. Counts are clamped to the
// supported range and reset the custom dividers of their axis.
func (s *Server) UpdateGrid(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	var req api.UpdateGridJSONRequestBody
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Rows == nil && req.Cols == nil {
		s.writeValidationErrorResponse(w, r, "request", "rows or cols is required")
		return
	}

	if req.Rows != nil {
		sess.SetCount(grid.AxisRow, *req.Rows)
	}
	if req.Cols != nil {
		sess.SetCount(grid.AxisCol, *req.Cols)
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// CropSession replaces the session image by a part of it
func (s *Server) CropSession(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	var req api.CropSessionJSONRequestBody
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		s.writeValidationErrorResponse(w, r, "crop", "width and height must be positive")
		return
	}

	if err := sess.Crop(image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height)); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// DragDivider feeds one pointer event into the session's drag state machine
func (s *Server) DragDivider(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	var req api.DragDividerJSONRequestBody
	if !s.decodeBody(w, r, &req) {
		return
	}

	var err error
	switch req.Phase {
	case api.Start:
		if req.Axis == nil || req.Index == nil {
			s.writeValidationErrorResponse(w, r, "request", "axis and index are required to start a drag")
			return
		}
		axis, perr := grid.ParseAxis(string(*req.Axis))
		if perr != nil {
			s.writeValidationErrorResponse(w, r, "axis", perr.Error())
			return
		}
		if err = sess.BeginDrag(axis, *req.Index); err == nil && req.Percent != nil {
			_, err = sess.Drag(*req.Percent)
		}
	case api.Move:
		if req.Percent == nil {
			s.writeValidationErrorResponse(w, r, "percent", "percent is required to move a divider")
			return
		}
		_, err = sess.Drag(*req.Percent)
	case api.End:
		if req.Percent != nil {
			_, err = sess.Drag(*req.Percent)
		}
		sess.EndDrag()
	default:
		s.writeValidationErrorResponse(w, r, "phase", "phase must be start, move or end")
		return
	}

	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// GetOverlay renders the session image with its divider lines
func (s *Server) GetOverlay(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	data, err := render.Overlay(sess.Source(), sess.Config())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.MIMEType)
	w.Header().Set("X-Request-ID", requestID(r))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).Warn("error writing overlay")
	}
}

// SplitSession renders the tiles of the current grid
func (s *Server) SplitSession(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	tiles, err := sess.Split(r.Context(), s.renderer)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"tiles":   len(tiles),
	}).Info("session split")
	s.writeJSON(w, http.StatusOK, toSplitResponse(sess.Config(), sess.BaseName, tiles))
}

// ResetTiles discards the tiles of the last split
func (s *Server) ResetTiles(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}
	sess.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// DownloadTile returns one tile of the last split by its 0-based index
func (s *Server) DownloadTile(w http.ResponseWriter, r *http.Request, sessionId api.SessionId, index int) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	tiles := sess.Tiles()
	if index < 0 || index >= len(tiles) {
		s.writeErrorResponse(w, r, http.StatusNotFound, api.NOTFOUND, "tile not found; split the image first", map[string]interface{}{
			"index": index,
			"tiles": len(tiles),
		})
		return
	}
	t := tiles[index]
	s.writeAttachment(w, r, render.MIMEType, t.Filename, t.Data)
}

// DownloadArchive returns every tile of the last split as one zip file
func (s *Server) DownloadArchive(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	sess, ok := s.lookup(w, r, sessionId)
	if !ok {
		return
	}

	tiles := sess.Tiles()
	if len(tiles) == 0 {
		s.writeErrorResponse(w, r, http.StatusNotFound, api.NOTFOUND, "no tiles; split the image first", nil)
		return
	}
	s.writeArchive(w, r, sess.BaseName, tiles)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id api.SessionId) (*session.Session, bool) {
	sess, ok := s.store.Get(id.String())
	if !ok {
		s.writeNotFound(w, r, id)
	}
	return sess, ok
}

func (s *Server) writeNotFound(w http.ResponseWriter, r *http.Request, id api.SessionId) {
	s.writeErrorResponse(w, r, http.StatusNotFound, api.NOTFOUND, "session not found", map[string]interface{}{
		"session_id": id.String(),
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeErrorResponse(w, r, http.StatusBadRequest, api.INVALIDJSON, "Invalid JSON in request body", nil)
		return false
	}
	return true
}

