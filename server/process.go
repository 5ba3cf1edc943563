package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/scankit/imageio"
	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/profile"
	"github.com/wudi/scankit/security"
)

// pageResponse is one processed page on the wire.
type pageResponse struct {
	PageIndex int                   `json:"page_index"`
	Failed    bool                  `json:"failed"`
	Error     string                `json:"error,omitempty"`
	Steps     []pipeline.StepRecord `json:"steps"`
	// ImagePNG is the processed page encoded as base64 PNG. Omitted for
	// failed pages.
	ImagePNG string `json:"image_png_base64,omitempty"`
}

// processResponse is the /process reply.
type processResponse struct {
	RequestID string         `json:"request_id"`
	Profile   string         `json:"profile"`
	Modules   []string       `json:"modules"`
	Pages     []pageResponse `json:"pages"`
	// Security carries the classification when the security profile
	// ran.
	Security *securityResponse `json:"security,omitempty"`
}

type securityResponse struct {
	DocumentType      string   `json:"document_type"`
	RiskLevel         string   `json:"risk_level"`
	Compliance        string   `json:"compliance"`
	FeaturesPreserved []string `json:"security_features_preserved"`
	Bypassed          bool     `json:"bypassed"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	data, filename, err := s.readUpload(w, r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	profileName, err := profile.ParseName(formValue(r, "profile", string(profile.NameStandard)))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	var moduleFilter []string
	if raw := formValue(r, "modules", ""); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				moduleFilter = append(moduleFilter, name)
			}
		}
	}

	pages, err := s.decodePages(r.Context(), data, filename)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, imageio.ErrPixelBudget) {
			status = http.StatusRequestEntityTooLarge
		}
		httpError(w, status, err.Error())
		return
	}

	mods, err := profile.Build(profileName, s.cfg, s.probe)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	mods = profile.Filter(mods, moduleFilter)

	reqID := requestID(r.Context())
	reqLog := s.log.With(observability.String("request_id", reqID))
	opts := []pipeline.Option{
		pipeline.WithLogger(reqLog),
		pipeline.WithMetrics(s.metrics),
		pipeline.WithWorkers(s.cfg.Server.Workers),
	}

	resp := processResponse{
		RequestID: reqID,
		Profile:   string(profileName),
		Modules:   moduleNames(mods),
	}

	switch profileName {
	case profile.NameSecurity:
		proc := profile.NewSecurityProcessor(mods, reqLog, opts...)
		for i, page := range pages {
			report, err := proc.ProcessPage(r.Context(), page)
			if err != nil {
				resp.Pages = append(resp.Pages, pageResponse{PageIndex: i, Failed: true, Error: err.Error()})
				continue
			}
			if resp.Security == nil {
				resp.Security = &securityResponse{
					DocumentType:      string(report.Analysis.DocumentType),
					RiskLevel:         string(report.Analysis.RiskLevel),
					Compliance:        report.Compliance,
					FeaturesPreserved: featureNames(report.FeaturesPreserved),
					Bypassed:          report.Bypassed,
				}
				s.metrics.DocumentClassified(string(report.Analysis.DocumentType))
			}
			resp.Pages = append(resp.Pages, encodePage(i, report.Page))
		}
	case profile.NameOCR:
		proc := profile.NewOCRProcessor(mods, reqLog, s.cfg.OCR.LegalComplianceCheck, opts...)
		if len(pages) > 0 {
			proc.CheckCompliance(pages[0])
		}
		doc := proc.ProcessDocument(r.Context(), pages)
		for i := range doc.Pages {
			resp.Pages = append(resp.Pages, encodePage(i, &doc.Pages[i]))
		}
	default:
		proc := profile.NewProcessor(mods, opts...)
		doc := proc.ProcessDocument(r.Context(), pages)
		for i := range doc.Pages {
			resp.Pages = append(resp.Pages, encodePage(i, &doc.Pages[i]))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	data, filename, err := s.readUpload(w, r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	pages, err := s.decodePages(r.Context(), data, filename)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := security.Analyze(pages[0])
	s.metrics.DocumentClassified(string(result.DocumentType))
	writeJSON(w, http.StatusOK, struct {
		RequestID string `json:"request_id"`
		security.Result
	}{RequestID: requestID(r.Context()), Result: result})
}

// readUpload pulls the multipart file field under the upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		return nil, "", fmt.Errorf("parse multipart: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Filename, nil
}

// decodePages turns the upload into page images, rasterizing PDFs via
// the external converter and charging the document pixel budget.
func (s *Server) decodePages(ctx context.Context, data []byte, filename string) ([]image.Image, error) {
	budget := imageio.NewBudget()
	if !isPDF(data, filename) {
		img, _, err := imageio.DecodeBytes(data)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if err := budget.Charge(b.Dx(), b.Dy()); err != nil {
			return nil, err
		}
		return []image.Image{img}, nil
	}

	dir, err := os.MkdirTemp("", "scankit-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("tempdir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "upload.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("stage pdf: %w", err)
	}
	paths, err := imageio.RasterizePDF(ctx, src, dir, imageio.PDFOptions{
		DPI:    s.cfg.Pipeline.OutputDPI,
		Logger: s.log,
	})
	if err != nil {
		return nil, err
	}

	pages := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, _, err := imageio.DecodeFile(p)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if err := budget.Charge(b.Dx(), b.Dy()); err != nil {
			return nil, err
		}
		pages = append(pages, img)
	}
	return pages, nil
}

func isPDF(data []byte, filename string) bool {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func encodePage(idx int, pr *pipeline.PageResult) pageResponse {
	resp := pageResponse{PageIndex: idx, Steps: pr.Steps}
	if pr.Failed() {
		resp.Failed = true
		resp.Error = pr.Err.Error()
		return resp
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, pr.Final, "png"); err != nil {
		resp.Failed = true
		resp.Error = err.Error()
		return resp
	}
	resp.ImagePNG = base64.StdEncoding.EncodeToString(buf.Bytes())
	return resp
}

func moduleNames(mods []pipeline.Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.Name()
	}
	return out
}

func featureNames(features []security.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = string(f)
	}
	return out
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
