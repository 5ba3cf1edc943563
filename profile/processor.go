package profile

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/observability"
	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/security"
)

// LegalWarning is printed by front ends before a regulated document
// type is processed with feature removal enabled.
const LegalWarning = `WARNING: processing security documents may be illegal without authorization.
This tool is provided for legitimate use cases only:
- authorized law enforcement digital forensics
- personal document archival with consent
- academic research on OCR improvement
- government document digitization programs
Users are solely responsible for legal compliance.`

// Processor binds an assembled module list to an orchestrator. It is
// the surface the HTTP handler, CLI and harness run pages through.
type Processor struct {
	orch *pipeline.Orchestrator
}

// NewProcessor wraps the module list in an orchestrator.
func NewProcessor(mods []pipeline.Module, opts ...pipeline.Option) *Processor {
	return &Processor{orch: pipeline.New(mods, opts...)}
}

// ModuleNames reports the pipeline order.
func (p *Processor) ModuleNames() []string { return p.orch.ModuleNames() }

// ProcessPage runs a single page through the chain.
func (p *Processor) ProcessPage(ctx context.Context, img image.Image) (*pipeline.PageResult, error) {
	return p.orch.RunPage(ctx, img)
}

// ProcessDocument runs all pages, in parallel across the pool.
func (p *Processor) ProcessDocument(ctx context.Context, pages []image.Image) *pipeline.DocumentResult {
	return p.orch.RunDocument(ctx, pages)
}

// SecurityReport is a security-profile page result together with the
// classification that gated it.
type SecurityReport struct {
	Page     *pipeline.PageResult
	Analysis security.Result
	// Bypassed is set when skew was minimal and the original image was
	// preserved untouched.
	Bypassed bool
	// Compliance names the standard governing the document type, or
	// "N/A".
	Compliance string
	// FeaturesPreserved lists the detected features the conservative
	// chain left intact.
	FeaturesPreserved []security.Feature
}

// SecurityProcessor drives the feature-preserving profile: it
// classifies every page first and skips processing entirely when the
// page is already straight.
type SecurityProcessor struct {
	proc *Processor
	log  observability.Logger
	// SkewBypass is the absolute skew angle at or below which the
	// original page is preserved untouched.
	SkewBypass float64
}

// NewSecurityProcessor wraps a conservative module list.
func NewSecurityProcessor(mods []pipeline.Module, log observability.Logger, opts ...pipeline.Option) *SecurityProcessor {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &SecurityProcessor{
		proc:       NewProcessor(mods, opts...),
		log:        log,
		SkewBypass: 2.0,
	}
}

// ProcessPage classifies the page and runs the conservative chain only
// when the skew exceeds the bypass threshold.
func (p *SecurityProcessor) ProcessPage(ctx context.Context, img image.Image) (*SecurityReport, error) {
	analysis := security.Analyze(img)
	p.log.Info("security document analyzed",
		observability.String("document_type", string(analysis.DocumentType)),
		observability.String("risk_level", string(analysis.RiskLevel)),
		observability.Float64("skew_angle", analysis.SkewAngle),
	)

	report := &SecurityReport{
		Analysis:          analysis,
		Compliance:        complianceTag(analysis.DocumentType),
		FeaturesPreserved: analysis.Features,
	}

	if math.Abs(analysis.SkewAngle) <= p.SkewBypass {
		p.log.Info("skew minimal, preserving original",
			observability.Float64("skew_angle", analysis.SkewAngle))
		report.Bypassed = true
		report.Page = &pipeline.PageResult{Original: img, Final: img}
		return report, nil
	}

	page, err := p.proc.ProcessPage(ctx, img)
	if err != nil {
		return nil, err
	}
	report.Page = page
	return report, nil
}

func complianceTag(t security.DocumentType) string {
	if t == security.TypePassport {
		return "ICAO 9303"
	}
	return "N/A"
}

// OCRProcessor drives the feature-removal profile and performs the
// legal gate before touching regulated document types.
type OCRProcessor struct {
	proc *Processor
	log  observability.Logger
	// ComplianceCheck enables the pre-processing classification gate.
	ComplianceCheck bool
}

// NewOCRProcessor wraps an aggressive module list.
func NewOCRProcessor(mods []pipeline.Module, log observability.Logger, complianceCheck bool, opts ...pipeline.Option) *OCRProcessor {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &OCRProcessor{
		proc:            NewProcessor(mods, opts...),
		log:             log,
		ComplianceCheck: complianceCheck,
	}
}

// CheckCompliance classifies the page and logs the legal warning for
// regulated document types. It reports whether processing should
// proceed; today the answer is always true, the gate exists to leave
// an audit trail.
func (p *OCRProcessor) CheckCompliance(img image.Image) (security.Result, bool) {
	analysis := security.Analyze(img)
	if !p.ComplianceCheck {
		return analysis, true
	}
	switch analysis.DocumentType {
	case security.TypePassport, security.TypeCurrency:
		p.log.Warn("regulated document type requires legal authorization",
			observability.String("document_type", string(analysis.DocumentType)),
			observability.String("risk_level", string(analysis.RiskLevel)),
		)
	}
	return analysis, true
}

// ProcessPage runs the compliance gate and the full removal chain.
func (p *OCRProcessor) ProcessPage(ctx context.Context, img image.Image) (*pipeline.PageResult, error) {
	p.CheckCompliance(img)
	return p.proc.ProcessPage(ctx, img)
}

// ProcessDocument runs all pages through the removal chain.
func (p *OCRProcessor) ProcessDocument(ctx context.Context, pages []image.Image) *pipeline.DocumentResult {
	return p.proc.ProcessDocument(ctx, pages)
}
