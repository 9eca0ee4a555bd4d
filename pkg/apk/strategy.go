package apk

import (
	"os"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

// Input is the raw material of one extraction run
type Input struct {
	// AAPT and AAPT2 hold badging dumps or an unavailability sentinel
	AAPT    string
	AAPT2   string
	APKPath string
}

// StrategyInfo describes an extraction strategy
type StrategyInfo struct {
	Name     string
	Method   models.ExtractionMethod
	Priority int // Lower number = higher priority
}

// Outcome is the value a strategy returns. A nil Metadata means the
// strategy had nothing to offer and Reason says why.
type Outcome struct {
	Metadata *models.ApkMetadata
	Reason   string
}

// Empty reports whether the strategy produced nothing
func (o Outcome) Empty() bool {
	return o.Metadata == nil
}

func emptyOutcome(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Strategy is one way of recovering package metadata. Extract returns an
// error only for a hard failure the caller must see; an unusable source
// is an empty Outcome.
type Strategy interface {
	Info() StrategyInfo
	Extract(in *Input) (Outcome, error)
}

// badgingStrategy parses one tool's badging dump
type badgingStrategy struct {
	info   StrategyInfo
	source func(in *Input) string
	parser *BadgingParser
	logger utils.Logger
}

// NewAAPTStrategy parses Input.AAPT
func NewAAPTStrategy(logger utils.Logger) Strategy {
	logger = utils.OrDiscard(logger)
	return &badgingStrategy{
		info:   StrategyInfo{Name: "aapt", Method: models.ExtractionAAPT, Priority: 10},
		source: func(in *Input) string { return in.AAPT },
		parser: NewBadgingParser(logger),
		logger: logger,
	}
}

// NewAAPT2Strategy parses Input.AAPT2
func NewAAPT2Strategy(logger utils.Logger) Strategy {
	logger = utils.OrDiscard(logger)
	return &badgingStrategy{
		info:   StrategyInfo{Name: "aapt2", Method: models.ExtractionAAPT2, Priority: 20},
		source: func(in *Input) string { return in.AAPT2 },
		parser: NewBadgingParser(logger),
		logger: logger,
	}
}

func (s *badgingStrategy) Info() StrategyInfo {
	return s.info
}

func (s *badgingStrategy) Extract(in *Input) (Outcome, error) {
	text := s.source(in)
	if !IsUsableOutput(text) {
		s.logger.Warn("%s output is unusable, skipping", s.info.Name)
		return emptyOutcome("output empty or carries an error marker"), nil
	}

	meta := s.parser.Parse(text)
	if !meta.Identified() {
		return emptyOutcome("badging carried no package or label"), nil
	}
	return Outcome{Metadata: meta}, nil
}

// ArchiveStrategy inspects the zip listing of the APK
type ArchiveStrategy struct {
	inspector *ArchiveInspector
	logger    utils.Logger
}

// NewArchiveStrategy creates the archive fallback strategy
func NewArchiveStrategy(logger utils.Logger) *ArchiveStrategy {
	logger = utils.OrDiscard(logger)
	return &ArchiveStrategy{
		inspector: NewArchiveInspector(logger),
		logger:    logger,
	}
}

func (s *ArchiveStrategy) Info() StrategyInfo {
	return StrategyInfo{Name: "archive", Method: models.ExtractionArchiveFallback, Priority: 30}
}

// Extract fails hard when the APK path is missing or not a regular file,
// since the textual strategies have already come back empty by now.
func (s *ArchiveStrategy) Extract(in *Input) (Outcome, error) {
	if err := checkAPKPath(in.APKPath); err != nil {
		return Outcome{}, err
	}

	findings, err := s.inspector.Inspect(in.APKPath)
	if err != nil {
		werr := errors.WrapError(err, errors.ErrorTypeParsing, errors.CodeArchiveUnreadable,
			"APK archive could not be read").WithContext("apk_path", in.APKPath)
		s.logger.Warn("%v", werr)
		return emptyOutcome("archive unreadable"), nil
	}
	if findings.Empty() {
		return emptyOutcome("archive has no manifest, native libraries or app_name"), nil
	}

	meta := models.NewApkMetadata()
	for _, abi := range findings.Architectures {
		meta.AddArchitecture(abi)
	}
	meta.AppLabel = findings.AppName

	guess, guessed := GuessFromFilename(in.APKPath)
	if findings.HasManifest && meta.Package == "" {
		meta.Package = PackageFromFilename(in.APKPath)
	}
	if meta.AppLabel == "" && guessed {
		meta.AppLabel = guess.Label
	}

	if !meta.Identified() {
		return emptyOutcome("archive gave no package or label"), nil
	}
	return Outcome{Metadata: meta}, nil
}

// FilenameStrategy is the last resort: everything comes from the file name
type FilenameStrategy struct{}

// NewFilenameStrategy creates the filename fallback strategy
func NewFilenameStrategy() *FilenameStrategy {
	return &FilenameStrategy{}
}

func (s *FilenameStrategy) Info() StrategyInfo {
	return StrategyInfo{Name: "filename", Method: models.ExtractionFilenameFallback, Priority: 40}
}

func (s *FilenameStrategy) Extract(in *Input) (Outcome, error) {
	guess, ok := GuessFromFilename(in.APKPath)
	if !ok {
		return emptyOutcome("file name carries no usable name"), nil
	}

	meta := models.NewApkMetadata()
	meta.AppLabel = guess.Label
	meta.VersionName = guess.Version
	return Outcome{Metadata: meta}, nil
}

func checkAPKPath(path string) error {
	if path == "" {
		return errors.NewAPKPathError(path, nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewAPKPathError(path, err)
	}
	if !info.Mode().IsRegular() {
		return errors.NewAPKPathError(path, nil)
	}
	return nil
}
