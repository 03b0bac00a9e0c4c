// Package api holds the HTTP contract of the gridsplit server: request and
// response types, the ServerInterface and its chi router bindings.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for Axis.
const (
	Col Axis = "col"
	Row Axis = "row"
)

// Defines values for DragPhase.
const (
	End   DragPhase = "end"
	Move  DragPhase = "move"
	Start DragPhase = "start"
)

// Defines values for SplitImageParamsFormat.
const (
	Json SplitImageParamsFormat = "json"
	Zip  SplitImageParamsFormat = "zip"
)

// Defines values for ErrorCode.
const (
	INTERNALERROR   ErrorCode = "INTERNAL_ERROR"
	INVALIDIMAGE    ErrorCode = "INVALID_IMAGE"
	INVALIDJSON     ErrorCode = "INVALID_JSON"
	INVALIDREQUEST  ErrorCode = "INVALID_REQUEST"
	NOTFOUND        ErrorCode = "NOT_FOUND"
	RENDERERROR     ErrorCode = "RENDER_ERROR"
	SPLITINPROGRESS ErrorCode = "SPLIT_IN_PROGRESS"
	VALIDATIONERROR ErrorCode = "VALIDATION_ERROR"
)

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Sessions  *int                 `json:"sessions,omitempty"`
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    *int                 `json:"uptime,omitempty"`
	Version   *string              `json:"version,omitempty"`
}

// Axis selects rows or columns.
type Axis string

// DragPhase is the pointer event of a divider drag.
type DragPhase string

// ErrorCode defines model for ErrorResponse.Error.
type ErrorCode string

// GridConfig defines model for GridConfig.
type GridConfig struct {
	ColPositions *[]float64 `json:"col_positions,omitempty"`
	Cols         int        `json:"cols"`
	RowPositions *[]float64 `json:"row_positions,omitempty"`
	Rows         int        `json:"rows"`
}

// PixelRect is a rectangle in whole pixels.
type PixelRect struct {
	Height int `json:"height"`
	Width  int `json:"width"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// Rectangle defines model for Rectangle.
type Rectangle struct {
	Col    int       `json:"col"`
	Height float64   `json:"height"`
	Pixels PixelRect `json:"pixels"`
	Row    int       `json:"row"`
	Width  float64   `json:"width"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
}

// RectanglesResponse defines model for RectanglesResponse.
type RectanglesResponse struct {
	ColDividers []float64   `json:"col_dividers"`
	Grid        GridConfig  `json:"grid"`
	Height      int         `json:"height"`
	Rectangles  []Rectangle `json:"rectangles"`
	RowDividers []float64   `json:"row_dividers"`
	Width       int         `json:"width"`
}

// DragTarget identifies the divider being dragged.
type DragTarget struct {
	Axis  Axis `json:"axis"`
	Index int  `json:"index"`
}

// SessionResponse defines model for SessionResponse.
type SessionResponse struct {
	BaseName    string             `json:"base_name"`
	ColDividers []float64          `json:"col_dividers"`
	Created     time.Time          `json:"created"`
	Dragging    *DragTarget        `json:"dragging,omitempty"`
	Filename    string             `json:"filename"`
	Grid        GridConfig         `json:"grid"`
	Height      int                `json:"height"`
	Id          openapi_types.UUID `json:"id"`
	Rectangles  []Rectangle        `json:"rectangles"`
	RowDividers []float64          `json:"row_dividers"`
	Splitting   bool               `json:"splitting"`
	TileCount   int                `json:"tile_count"`
	Width       int                `json:"width"`
}

// GridUpdateRequest defines model for GridUpdateRequest.
type GridUpdateRequest struct {
	Cols *int `json:"cols,omitempty"`
	Rows *int `json:"rows,omitempty"`
}

// CropRequest defines model for CropRequest.
type CropRequest struct {
	Height int `json:"height"`
	Width  int `json:"width"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// DragRequest defines model for DragRequest.
type DragRequest struct {
	Axis    *Axis     `json:"axis,omitempty"`
	Index   *int      `json:"index,omitempty"`
	Percent *float64  `json:"percent,omitempty"`
	Phase   DragPhase `json:"phase"`
}

// Tile defines model for Tile.
type Tile struct {
	Col      int    `json:"col"`
	Filename string `json:"filename"`
	Height   int    `json:"height"`
	Id       string `json:"id"`
	Preview  string `json:"preview"`
	Row      int    `json:"row"`
	Size     int    `json:"size"`
	Width    int    `json:"width"`
}

// SplitResponse defines model for SplitResponse.
type SplitResponse struct {
	Archive string `json:"archive"`
	Cols    int    `json:"cols"`
	Rows    int    `json:"rows"`
	Tiles   []Tile `json:"tiles"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Details   *map[string]interface{} `json:"details,omitempty"`
	Error     ErrorCode               `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
}

// SessionId defines model for SessionId.
type SessionId = openapi_types.UUID

// GetRectanglesParams defines parameters for GetRectangles.
type GetRectanglesParams struct {
	Width        int        `form:"width" json:"width"`
	Height       int        `form:"height" json:"height"`
	Rows         int        `form:"rows" json:"rows"`
	Cols         int        `form:"cols" json:"cols"`
	RowPositions *[]float64 `form:"row_positions,omitempty" json:"row_positions,omitempty"`
	ColPositions *[]float64 `form:"col_positions,omitempty" json:"col_positions,omitempty"`
}

// SplitImageParamsFormat defines parameters for SplitImage.
type SplitImageParamsFormat string

// SplitImageParams defines parameters for SplitImage.
type SplitImageParams struct {
	Format *SplitImageParamsFormat `form:"format,omitempty" json:"format,omitempty"`
}

// UpdateGridJSONRequestBody defines body for UpdateGrid for application/json ContentType.
type UpdateGridJSONRequestBody = GridUpdateRequest

// CropSessionJSONRequestBody defines body for CropSession for application/json ContentType.
type CropSessionJSONRequestBody = CropRequest

// DragDividerJSONRequestBody defines body for DragDivider for application/json ContentType.
type DragDividerJSONRequestBody = DragRequest
