package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Service health
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// Partition an image size without uploading it
	// (GET /grid/rectangles)
	GetRectangles(w http.ResponseWriter, r *http.Request, params GetRectanglesParams)
	// Split an uploaded image in one request
	// (POST /split)
	SplitImage(w http.ResponseWriter, r *http.Request, params SplitImageParams)
	// Upload an image and start an editing session
	// (POST /sessions)
	CreateSession(w http.ResponseWriter, r *http.Request)
	// Discard a session
	// (DELETE /sessions/{sessionId})
	DeleteSession(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Session state and current rectangles
	// (GET /sessions/{sessionId})
	GetSession(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Download all tiles as a zip archive
	// (GET /sessions/{sessionId}/archive)
	DownloadArchive(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Crop the session image
	// (POST /sessions/{sessionId}/crop)
	CropSession(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Drag a divider
	// (POST /sessions/{sessionId}/drag)
	DragDivider(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Change row or column counts
	// (PUT /sessions/{sessionId}/grid)
	UpdateGrid(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Image with divider lines drawn on it
	// (GET /sessions/{sessionId}/overlay)
	GetOverlay(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Split the session image into tiles
	// (POST /sessions/{sessionId}/split)
	SplitSession(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Discard the tiles of the last split
	// (DELETE /sessions/{sessionId}/tiles)
	ResetTiles(w http.ResponseWriter, r *http.Request, sessionId SessionId)
	// Download one tile
	// (GET /sessions/{sessionId}/tiles/{index})
	DownloadTile(w http.ResponseWriter, r *http.Request, sessionId SessionId, index int)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	handler := http.Handler(h)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) sessionID(w http.ResponseWriter, r *http.Request) (SessionId, bool) {
	var sessionId SessionId
	err := runtime.BindStyledParameterWithOptions("simple", "sessionId", chi.URLParam(r, "sessionId"), &sessionId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "sessionId", Err: err})
		return sessionId, false
	}
	return sessionId, true
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHealth(w, r)
	})
}

// GetRectangles operation middleware
func (siw *ServerInterfaceWrapper) GetRectangles(w http.ResponseWriter, r *http.Request) {
	var err error
	var params GetRectanglesParams
	query := r.URL.Query()

	required := []struct {
		name string
		dest *int
	}{
		{"width", &params.Width},
		{"height", &params.Height},
		{"rows", &params.Rows},
		{"cols", &params.Cols},
	}
	for _, p := range required {
		err = runtime.BindQueryParameter("form", true, true, p.name, query, p.dest)
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: p.name, Err: err})
			return
		}
	}

	err = runtime.BindQueryParameter("form", false, false, "row_positions", query, &params.RowPositions)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "row_positions", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", false, false, "col_positions", query, &params.ColPositions)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "col_positions", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetRectangles(w, r, params)
	})
}

// SplitImage operation middleware
func (siw *ServerInterfaceWrapper) SplitImage(w http.ResponseWriter, r *http.Request) {
	var params SplitImageParams

	err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "format", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SplitImage(w, r, params)
	})
}

// CreateSession operation middleware
func (siw *ServerInterfaceWrapper) CreateSession(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateSession(w, r)
	})
}

// sessionOp wraps the operations whose only parameter is the session id
func (siw *ServerInterfaceWrapper) sessionOp(op func(w http.ResponseWriter, r *http.Request, sessionId SessionId)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionId, ok := siw.sessionID(w, r)
		if !ok {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			op(w, r, sessionId)
		})
	}
}

// DownloadTile operation middleware
func (siw *ServerInterfaceWrapper) DownloadTile(w http.ResponseWriter, r *http.Request) {
	sessionId, ok := siw.sessionID(w, r)
	if !ok {
		return
	}

	var index int
	err := runtime.BindStyledParameterWithOptions("simple", "index", chi.URLParam(r, "index"), &index, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "index", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DownloadTile(w, r, sessionId, index)
	})
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Get(base+"/health", wrapper.GetHealth)
		r.Get(base+"/grid/rectangles", wrapper.GetRectangles)
		r.Post(base+"/split", wrapper.SplitImage)
		r.Post(base+"/sessions", wrapper.CreateSession)
		r.Delete(base+"/sessions/{sessionId}", wrapper.sessionOp(si.DeleteSession))
		r.Get(base+"/sessions/{sessionId}", wrapper.sessionOp(si.GetSession))
		r.Get(base+"/sessions/{sessionId}/archive", wrapper.sessionOp(si.DownloadArchive))
		r.Post(base+"/sessions/{sessionId}/crop", wrapper.sessionOp(si.CropSession))
		r.Post(base+"/sessions/{sessionId}/drag", wrapper.sessionOp(si.DragDivider))
		r.Put(base+"/sessions/{sessionId}/grid", wrapper.sessionOp(si.UpdateGrid))
		r.Get(base+"/sessions/{sessionId}/overlay", wrapper.sessionOp(si.GetOverlay))
		r.Post(base+"/sessions/{sessionId}/split", wrapper.sessionOp(si.SplitSession))
		r.Delete(base+"/sessions/{sessionId}/tiles", wrapper.sessionOp(si.ResetTiles))
		r.Get(base+"/sessions/{sessionId}/tiles/{index}", wrapper.DownloadTile)
	})

	return r
}
