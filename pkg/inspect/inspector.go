package inspect

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/huanfeng/apkinspect/pkg/apk"
	"github.com/huanfeng/apkinspect/pkg/compliance"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/toolchain"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

// MetadataExtractor produces metadata from tool output and the archive
type MetadataExtractor interface {
	Extract(in apk.Input) (*apk.Result, error)
}

// SignatureParser reads signer tool output
type SignatureParser interface {
	Parse(primary, secondary string) *models.SignatureInfo
}

// Inspector runs one complete analysis of an APK
type Inspector struct {
	runner     toolchain.Runner
	extractor  MetadataExtractor
	signatures SignatureParser
	analyzer   compliance.Analyzer
	logger     utils.Logger
	keepRaw    bool
}

// Option configures an Inspector
type Option func(*Inspector)

// WithAnalyzer enables the compliance report
func WithAnalyzer(a compliance.Analyzer) Option {
	return func(i *Inspector) { i.analyzer = a }
}

// WithRawOutput keeps the unparsed tool output in the analysis
func WithRawOutput(keep bool) Option {
	return func(i *Inspector) { i.keepRaw = keep }
}

// New creates an Inspector. Without WithAnalyzer no compliance report is
// produced.
func New(runner toolchain.Runner, extractor MetadataExtractor, signatures SignatureParser, logger utils.Logger, opts ...Option) *Inspector {
	i := &Inspector{
		runner:     runner,
		extractor:  extractor,
		signatures: signatures,
		logger:     utils.OrDiscard(logger),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect runs the tools, extracts metadata and signature information and,
// when an analyzer is configured, the compliance report. The only error is
// a ResultError from metadata extraction.
func (i *Inspector) Inspect(ctx context.Context, apkPath string) (*models.Analysis, error) {
	return i.run(ctx, apkPath, true)
}

// InspectMetadata runs only the badging tools and fills the metadata part of
// the analysis; signature and compliance stay empty
func (i *Inspector) InspectMetadata(ctx context.Context, apkPath string) (*models.Analysis, error) {
	return i.run(ctx, apkPath, false)
}

func (i *Inspector) run(ctx context.Context, apkPath string, full bool) (*models.Analysis, error) {
	runID := uuid.NewString()
	log := i.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"apk":    apkPath,
	})
	log.Info("Starting analysis")

	raw := i.collect(ctx, apkPath, full)

	result, err := i.extractor.Extract(apk.Input{
		AAPT:    raw.AAPT,
		AAPT2:   raw.AAPT2,
		APKPath: apkPath,
	})
	if err != nil {
		log.Error("Metadata extraction failed: %v", err)
		return nil, err
	}
	meta := result.Metadata

	analysis := &models.Analysis{
		RunID:     runID,
		APKFile:   apkPath,
		BuildMode: apk.BuildMode(meta, apkPath),
		Metadata:  meta,
		Quality:   apk.AssessQuality(meta),
	}

	for _, a := range result.Skipped {
		analysis.Skipped = append(analysis.Skipped, fmt.Sprintf("%s: %s", a.Strategy, a.Reason))
	}

	if digests, err := apk.FileDigests(apkPath); err != nil {
		log.Warn("Could not hash APK: %v", err)
	} else {
		analysis.Digests = digests
	}

	if full {
		analysis.Signature = i.signatures.Parse(raw.APKSigner, raw.JarSigner)
		if i.analyzer != nil {
			analysis.Compliance = i.analyzer.Analyze(meta, analysis.Signature)
			log.WithField("score", analysis.Compliance.Score).
				Info("Compliance status %s", analysis.Compliance.OverallStatus)
		}
	}

	if i.keepRaw {
		analysis.Raw = raw
	}

	log.Info("Analysis finished using %s", meta.ExtractionMethod)
	return analysis, nil
}

type toolJob struct {
	tool toolchain.Tool
	args []string
	out  *string
}

// collect runs the badging tools and, for a full run, the signer tools
// concurrently
func (i *Inspector) collect(ctx context.Context, apkPath string, full bool) *models.RawOutputs {
	raw := &models.RawOutputs{}

	jobs := []toolJob{
		{toolchain.AAPT, toolchain.BadgingArgs(apkPath), &raw.AAPT},
		{toolchain.AAPT2, toolchain.BadgingArgs(apkPath), &raw.AAPT2},
	}
	if full {
		jobs = append(jobs,
			toolJob{toolchain.APKSigner, toolchain.APKSignerArgs(apkPath), &raw.APKSigner},
			toolJob{toolchain.JarSigner, toolchain.JarSignerArgs(apkPath), &raw.JarSigner},
		)
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		job := job
		wg.Add(1)
		go func() {
			defer wg.Done()
			*job.out = i.runner.Run(ctx, job.tool, job.args...)
		}()
	}
	wg.Wait()
	return raw
}
