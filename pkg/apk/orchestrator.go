package apk

import (
	"sort"

	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

// Attempt records why a strategy was passed over
type Attempt struct {
	Strategy string `json:"strategy" yaml:"strategy"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Result is the outcome of one extraction run
type Result struct {
	Metadata *models.ApkMetadata
	// Skipped lists the strategies tried before the one that succeeded
	Skipped []Attempt
}

// Orchestrator runs extraction strategies in priority order and keeps the
// first non-empty result
type Orchestrator struct {
	strategies []Strategy
	logger     utils.Logger
}

// NewOrchestrator creates an orchestrator with no strategies
func NewOrchestrator(logger utils.Logger) *Orchestrator {
	return &Orchestrator{
		strategies: make([]Strategy, 0),
		logger:     utils.OrDiscard(logger),
	}
}

// NewDefaultOrchestrator creates an orchestrator with the aapt, aapt2,
// archive and filename strategies
func NewDefaultOrchestrator(logger utils.Logger) *Orchestrator {
	o := NewOrchestrator(logger)
	o.AddStrategy(NewAAPTStrategy(o.logger))
	o.AddStrategy(NewAAPT2Strategy(o.logger))
	o.AddStrategy(NewArchiveStrategy(o.logger))
	o.AddStrategy(NewFilenameStrategy())
	return o
}

// AddStrategy adds a strategy to the chain
func (o *Orchestrator) AddStrategy(s Strategy) {
	o.strategies = append(o.strategies, s)
	sort.SliceStable(o.strategies, func(i, j int) bool {
		return o.strategies[i].Info().Priority < o.strategies[j].Info().Priority
	})
}

// Strategies returns information about the registered strategies in order
func (o *Orchestrator) Strategies() []StrategyInfo {
	infos := make([]StrategyInfo, 0, len(o.strategies))
	for _, s := range o.strategies {
		infos = append(infos, s.Info())
	}
	return infos
}

// Extract produces one metadata record from the input. The only error it
// returns is an invalid APK path reached after the textual strategies failed.
func (o *Orchestrator) Extract(in Input) (*Result, error) {
	result := &Result{}

	o.logger.Debug("Starting extraction with %d strategies", len(o.strategies))

	for _, s := range o.strategies {
		info := s.Info()

		outcome, err := s.Extract(&in)
		if err != nil {
			o.logger.Error("Strategy %s failed: %v", info.Name, err)
			return nil, err
		}
		if outcome.Empty() {
			o.logger.Debug("Strategy %s produced nothing: %s", info.Name, outcome.Reason)
			result.Skipped = append(result.Skipped, Attempt{Strategy: info.Name, Reason: outcome.Reason})
			continue
		}

		meta := outcome.Metadata
		meta.ExtractionMethod = info.Method
		o.applyTextFlags(meta, in)
		meta.FillUndetected()

		o.logger.Info("Extracted metadata using %s", info.Name)
		result.Metadata = meta
		return result, nil
	}

	o.logger.Warn("No extraction strategy succeeded for %q", in.APKPath)
	meta := models.NewApkMetadata()
	meta.ExtractionMethod = models.ExtractionUndetected
	o.applyTextFlags(meta, in)
	meta.FillUndetected()
	result.Metadata = meta
	return result, nil
}

// applyTextFlags folds debuggable/allowBackup markers from every usable
// badging text into the record, whichever strategy supplied it.
func (o *Orchestrator) applyTextFlags(meta *models.ApkMetadata, in Input) {
	backupSet := false
	for _, text := range []string{in.AAPT, in.AAPT2} {
		if !IsUsableOutput(text) {
			continue
		}
		flags := DetectBuildFlags(text)
		meta.Debuggable = meta.Debuggable || flags.Debuggable
		if !backupSet && flags.AllowBackup != nil {
			meta.AllowBackup = *flags.AllowBackup
			backupSet = true
		}
	}
}
