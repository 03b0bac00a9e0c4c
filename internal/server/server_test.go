package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/kiesman99/gridsplit/internal/api"
	"github.com/kiesman99/gridsplit/internal/render"
)

// Test server setup
func setupTestServer() *httptest.Server {
	logger, _ := test.NewNullLogger()

	apiServer := NewServer("2.0.0-test", Options{
		Renderer: render.New(render.Options{Workers: 2, Logger: logger}),
		Logger:   logger,
	})

	return httptest.NewServer(NewRouter(apiServer, RouterOptions{Timeout: 30 * time.Second}))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds an upload with an "image" part and extra form fields
func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", status, resp.StatusCode, string(body))
	}
}

func expectErrorCode(t *testing.T, resp *http.Response, code api.ErrorCode) {
	t.Helper()
	var errorResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errorResp.Error != code {
		t.Errorf("Expected error code %s, got %s (%s)", code, errorResp.Error, errorResp.Message)
	}
	if errorResp.RequestId == nil || *errorResp.RequestId == "" {
		t.Error("Expected request_id in error response")
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var healthResp api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if healthResp.Status != api.Healthy {
		t.Errorf("Expected status 'healthy', got %s", healthResp.Status)
	}
	if healthResp.Version == nil || *healthResp.Version != "2.0.0-test" {
		t.Errorf("Expected version '2.0.0-test', got %v", healthResp.Version)
	}
	if healthResp.Sessions == nil || *healthResp.Sessions != 0 {
		t.Errorf("Expected 0 sessions, got %v", healthResp.Sessions)
	}
	if time.Since(healthResp.Timestamp) > time.Minute {
		t.Errorf("Timestamp seems too old: %v", healthResp.Timestamp)
	}
}

func TestLegacyHealthRedirect(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("Expected status 301, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/v1/health" {
		t.Errorf("Expected redirect to /api/v1/health, got %s", loc)
	}
}

func TestRectanglesEndpoint(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/grid/rectangles?width=900&height=600&rows=2&cols=3")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var rects api.RectanglesResponse
	if err := json.NewDecoder(resp.Body).Decode(&rects); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(rects.Rectangles) != 6 {
		t.Fatalf("Expected 6 rectangles, got %d", len(rects.Rectangles))
	}
	last := rects.Rectangles[5]
	if last.Row != 1 || last.Col != 2 {
		t.Errorf("Expected last rectangle at row 1 col 2, got row %d col %d", last.Row, last.Col)
	}
	if last.Pixels != (api.PixelRect{X: 600, Y: 300, Width: 300, Height: 300}) {
		t.Errorf("Expected pixels {600 300 300 300}, got %+v", last.Pixels)
	}
	if len(rects.RowDividers) != 1 || rects.RowDividers[0] != 50 {
		t.Errorf("Expected row dividers [50], got %v", rects.RowDividers)
	}
	if len(rects.ColDividers) != 2 {
		t.Errorf("Expected 2 column dividers, got %v", rects.ColDividers)
	}
}

func TestRectanglesEndpoint_CustomPositions(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/grid/rectangles?width=1000&height=500&rows=1&cols=3&col_positions=20,70")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var rects api.RectanglesResponse
	if err := json.NewDecoder(resp.Body).Decode(&rects); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	widths := []float64{200, 500, 300}
	for i, r := range rects.Rectangles {
		if r.Width != widths[i] {
			t.Errorf("Rectangle %d: expected width %v, got %v", i, widths[i], r.Width)
		}
	}
	if len(rects.RowDividers) != 0 {
		t.Errorf("Expected no row dividers, got %v", rects.RowDividers)
	}
}

func TestRectanglesEndpoint_ValidationErrors(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	testCases := []struct {
		name  string
		query string
	}{
		{"Missing width", "height=600&rows=2&cols=2"},
		{"Non numeric rows", "width=900&height=600&rows=abc&cols=2"},
		{"Zero rows", "width=900&height=600&rows=0&cols=2"},
		{"Too many cols", "width=900&height=600&rows=2&cols=21"},
		{"Zero width", "width=0&height=600&rows=2&cols=2"},
		{"Position out of range", "width=900&height=600&rows=2&cols=2&row_positions=120"},
		{"Descending positions", "width=900&height=600&rows=1&cols=3&col_positions=70,20"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/api/v1/grid/rectangles?" + tc.query)
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			expectStatus(t, resp, http.StatusBadRequest)
			expectErrorCode(t, resp, api.VALIDATIONERROR)
		})
	}
}

func TestSplitEndpoint_Archive(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t, "photo.final.png", testPNG(t, 90, 60), map[string]string{
		"rows": "2",
		"cols": "2",
	})
	resp, err := http.Post(server.URL+"/api/v1/split", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Expected Content-Type application/zip, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "photo_split.zip") {
		t.Errorf("Expected photo_split.zip attachment, got %s", cd)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}

	expected := []string{"photo_row1_col1.png", "photo_row1_col2.png", "photo_row2_col1.png", "photo_row2_col2.png"}
	if len(zr.File) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != expected[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, expected[i], f.Name)
		}
	}

	rc, err := zr.File[3].Open()
	if err != nil {
		t.Fatalf("Failed to open entry: %v", err)
	}
	defer rc.Close()
	cfg, err := png.DecodeConfig(rc)
	if err != nil {
		t.Fatalf("Entry is not a PNG: %v", err)
	}
	if cfg.Width != 45 || cfg.Height != 30 {
		t.Errorf("Expected 45x30 tile, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSplitEndpoint_JSON(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t, "scan.png", testPNG(t, 90, 60), map[string]string{
		"rows":          "1",
		"cols":          "3",
		"col_positions": "10,50",
		"crop":          "0,0,80,40",
	})
	resp, err := http.Post(server.URL+"/api/v1/split?format=json", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var split api.SplitResponse
	if err := json.NewDecoder(resp.Body).Decode(&split); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if split.Archive != "scan_split.zip" {
		t.Errorf("Expected archive scan_split.zip, got %s", split.Archive)
	}
	if split.Rows != 1 || split.Cols != 3 {
		t.Errorf("Expected 1x3 grid, got %dx%d", split.Rows, split.Cols)
	}

	widths := []int{8, 32, 40}
	if len(split.Tiles) != len(widths) {
		t.Fatalf("Expected %d tiles, got %d", len(widths), len(split.Tiles))
	}
	for i, tile := range split.Tiles {
		if tile.Width != widths[i] || tile.Height != 40 {
			t.Errorf("Tile %d: expected %dx40, got %dx%d", i, widths[i], tile.Width, tile.Height)
		}
		if tile.Id != fmt.Sprintf("row-0-col-%d", i) {
			t.Errorf("Tile %d: unexpected id %s", i, tile.Id)
		}
		if !strings.HasPrefix(tile.Preview, "data:image/png;base64,") {
			t.Errorf("Tile %d: expected PNG data URL preview", i)
		}
		if tile.Size == 0 {
			t.Errorf("Tile %d: expected non-zero size", i)
		}
	}
}

func TestSplitEndpoint_Errors(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	testCases := []struct {
		name           string
		data           []byte
		fields         map[string]string
		expectedStatus int
		expectedError  api.ErrorCode
	}{
		{
			name:           "Not an image",
			data:           []byte("definitely not a png"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  api.INVALIDIMAGE,
		},
		{
			name:           "Rows out of range",
			data:           testPNG(t, 20, 20),
			fields:         map[string]string{"rows": "25"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  api.VALIDATIONERROR,
		},
		{
			name:           "Malformed crop",
			data:           testPNG(t, 20, 20),
			fields:         map[string]string{"crop": "1,2,3"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  api.VALIDATIONERROR,
		},
		{
			name:           "Crop outside image",
			data:           testPNG(t, 20, 20),
			fields:         map[string]string{"crop": "50,50,10,10"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  api.INVALIDIMAGE,
		},
		{
			name:           "Equal positions",
			data:           testPNG(t, 20, 20),
			fields:         map[string]string{"rows": "1", "cols": "3", "col_positions": "40,40"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  api.RENDERERROR,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartBody(t, "in.png", tc.data, tc.fields)
			resp, err := http.Post(server.URL+"/api/v1/split", contentType, body)
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			expectStatus(t, resp, tc.expectedStatus)
			expectErrorCode(t, resp, tc.expectedError)
		})
	}
}

func TestSplitEndpoint_NotMultipart(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/split", map[string]int{"rows": 2})
	defer resp.Body.Close()

	expectStatus(t, resp, http.StatusBadRequest)
	expectErrorCode(t, resp, api.INVALIDIMAGE)
}

func createSession(t *testing.T, baseURL string, w, h int) api.SessionResponse {
	t.Helper()
	body, contentType := multipartBody(t, "photo.png", testPNG(t, w, h), nil)
	resp, err := http.Post(baseURL+"/api/v1/sessions", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)

	var sess api.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	return sess
}

func decodeSession(t *testing.T, resp *http.Response) api.SessionResponse {
	t.Helper()
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var sess api.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	return sess
}

func TestSessionFlow(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	sess := createSession(t, server.URL, 90, 60)
	if sess.Width != 90 || sess.Height != 60 {
		t.Errorf("Expected 90x60 session, got %dx%d", sess.Width, sess.Height)
	}
	if sess.Grid.Rows != 3 || sess.Grid.Cols != 3 {
		t.Errorf("Expected default 3x3 grid, got %dx%d", sess.Grid.Rows, sess.Grid.Cols)
	}
	if len(sess.Rectangles) != 9 {
		t.Errorf("Expected 9 rectangles, got %d", len(sess.Rectangles))
	}
	if sess.BaseName != "photo" {
		t.Errorf("Expected base name photo, got %s", sess.BaseName)
	}

	base := server.URL + "/api/v1/sessions/" + sess.Id.String()

	rows, cols := 1, 2
	sess = decodeSession(t, doJSON(t, http.MethodPut, base+"/grid", api.GridUpdateRequest{Rows: &rows, Cols: &cols}))
	if len(sess.Rectangles) != 2 {
		t.Fatalf("Expected 2 rectangles, got %d", len(sess.Rectangles))
	}

	axis, index, percent := api.Col, 0, 25.0
	sess = decodeSession(t, doJSON(t, http.MethodPost, base+"/drag", api.DragRequest{
		Phase: api.Start, Axis: &axis, Index: &index, Percent: &percent,
	}))
	if sess.Dragging == nil || sess.Dragging.Axis != api.Col || sess.Dragging.Index != 0 {
		t.Errorf("Expected column divider 0 to be dragged, got %+v", sess.Dragging)
	}

	percent = 30
	sess = decodeSession(t, doJSON(t, http.MethodPost, base+"/drag", api.DragRequest{Phase: api.Move, Percent: &percent}))
	sess = decodeSession(t, doJSON(t, http.MethodPost, base+"/drag", api.DragRequest{Phase: api.End}))
	if sess.Dragging != nil {
		t.Errorf("Expected drag to be finished, got %+v", sess.Dragging)
	}
	if sess.Grid.ColPositions == nil || len(*sess.Grid.ColPositions) != 1 || (*sess.Grid.ColPositions)[0] != 30 {
		t.Errorf("Expected col positions [30], got %v", sess.Grid.ColPositions)
	}

	resp := doJSON(t, http.MethodPost, base+"/split", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	var split api.SplitResponse
	if err := json.NewDecoder(resp.Body).Decode(&split); err != nil {
		t.Fatalf("Failed to decode split: %v", err)
	}
	if len(split.Tiles) != 2 || split.Tiles[0].Width != 27 || split.Tiles[1].Width != 63 {
		t.Fatalf("Expected tiles 27 and 63 wide, got %+v", split.Tiles)
	}

	tileResp := doJSON(t, http.MethodGet, base+"/tiles/1", nil)
	defer tileResp.Body.Close()
	expectStatus(t, tileResp, http.StatusOK)
	if cd := tileResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "photo_row1_col2.png") {
		t.Errorf("Expected photo_row1_col2.png attachment, got %s", cd)
	}
	cfg, err := png.DecodeConfig(tileResp.Body)
	if err != nil {
		t.Fatalf("Tile is not a PNG: %v", err)
	}
	if cfg.Width != 63 || cfg.Height != 60 {
		t.Errorf("Expected 63x60 tile, got %dx%d", cfg.Width, cfg.Height)
	}

	archiveResp := doJSON(t, http.MethodGet, base+"/archive", nil)
	defer archiveResp.Body.Close()
	expectStatus(t, archiveResp, http.StatusOK)
	if ct := archiveResp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Expected Content-Type application/zip, got %s", ct)
	}

	resetResp := doJSON(t, http.MethodDelete, base+"/tiles", nil)
	resetResp.Body.Close()
	expectStatus(t, resetResp, http.StatusNoContent)

	missing := doJSON(t, http.MethodGet, base+"/archive", nil)
	defer missing.Body.Close()
	expectStatus(t, missing, http.StatusNotFound)
	expectErrorCode(t, missing, api.NOTFOUND)

	deleteResp := doJSON(t, http.MethodDelete, base, nil)
	deleteResp.Body.Close()
	expectStatus(t, deleteResp, http.StatusNoContent)

	gone := doJSON(t, http.MethodGet, base, nil)
	defer gone.Body.Close()
	expectStatus(t, gone, http.StatusNotFound)
	expectErrorCode(t, gone, api.NOTFOUND)
}

func TestSessionCropAndOverlay(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	sess := createSession(t, server.URL, 90, 60)
	base := server.URL + "/api/v1/sessions/" + sess.Id.String()

	sess = decodeSession(t, doJSON(t, http.MethodPost, base+"/crop", api.CropRequest{X: 10, Y: 10, Width: 30, Height: 20}))
	if sess.Width != 30 || sess.Height != 20 {
		t.Errorf("Expected 30x20 after crop, got %dx%d", sess.Width, sess.Height)
	}

	resp := doJSON(t, http.MethodGet, base+"/overlay", nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected Content-Type image/png, got %s", ct)
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatalf("Overlay is not a PNG: %v", err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Errorf("Expected 30x20 overlay, got %dx%d", cfg.Width, cfg.Height)
	}

	bad := doJSON(t, http.MethodPost, base+"/crop", api.CropRequest{X: 100, Y: 100, Width: 5, Height: 5})
	defer bad.Body.Close()
	expectStatus(t, bad, http.StatusBadRequest)
	expectErrorCode(t, bad, api.INVALIDIMAGE)
}

func TestSessionErrors(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	sess := createSession(t, server.URL, 40, 40)
	base := server.URL + "/api/v1/sessions/" + sess.Id.String()
	percent := 40.0
	index := 5
	axis := api.Row

	testCases := []struct {
		name           string
		method         string
		url            string
		body           interface{}
		expectedStatus int
		expectedError  api.ErrorCode
	}{
		{"Invalid session id", http.MethodGet, server.URL + "/api/v1/sessions/not-a-uuid", nil, http.StatusBadRequest, api.VALIDATIONERROR},
		{"Unknown session", http.MethodGet, server.URL + "/api/v1/sessions/1b4e28ba-2fa1-11d2-883f-0016d3cca427", nil, http.StatusNotFound, api.NOTFOUND},
		{"Invalid JSON", http.MethodPut, base + "/grid", `{"rows": }`, http.StatusBadRequest, api.INVALIDJSON},
		{"Empty grid update", http.MethodPut, base + "/grid", map[string]int{}, http.StatusBadRequest, api.VALIDATIONERROR},
		{"Move without drag", http.MethodPost, base + "/drag", api.DragRequest{Phase: api.Move, Percent: &percent}, http.StatusConflict, api.INVALIDREQUEST},
		{"Drag index out of range", http.MethodPost, base + "/drag", api.DragRequest{Phase: api.Start, Axis: &axis, Index: &index}, http.StatusBadRequest, api.VALIDATIONERROR},
		{"Unknown phase", http.MethodPost, base + "/drag", api.DragRequest{Phase: "hover"}, http.StatusBadRequest, api.VALIDATIONERROR},
		{"Tile before split", http.MethodGet, base + "/tiles/0", nil, http.StatusNotFound, api.NOTFOUND},
		{"Non numeric tile index", http.MethodGet, base + "/tiles/first", nil, http.StatusBadRequest, api.VALIDATIONERROR},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, tc.method, tc.url, tc.body)
			defer resp.Body.Close()

			expectStatus(t, resp, tc.expectedStatus)
			expectErrorCode(t, resp, tc.expectedError)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/split", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %s", origin)
	}
}
