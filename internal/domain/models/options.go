package models

import "time"

// ProcessingOptions configures one process()/processBatch() call. Every
// phase reads the subset it needs; the processor and config layer own
// picking sane defaults.
type ProcessingOptions struct {
	ConfidenceThreshold   float64       `mapstructure:"confidenceThreshold" validate:"gte=0,lte=1"`
	RefinementEnabled     bool          `mapstructure:"refinementEnabled"`
	KnowledgeBaseEnabled  bool          `mapstructure:"knowledgeBaseEnabled"`
	EntityServiceEnabled  bool          `mapstructure:"entityServiceEnabled"`
	PhaseTimeout          time.Duration `mapstructure:"phaseTimeout" validate:"gt=0"`
	BatchItemPause        time.Duration `mapstructure:"batchItemPause"`
}

// DefaultProcessingOptions returns the options used when a caller doesn't
// override them, mirroring the config package's viper defaults.
func DefaultProcessingOptions() ProcessingOptions {
	return ProcessingOptions{
		ConfidenceThreshold:  0.7,
		RefinementEnabled:    true,
		KnowledgeBaseEnabled: true,
		EntityServiceEnabled: true,
		PhaseTimeout:         45 * time.Second,
		BatchItemPause:       500 * time.Millisecond,
	}
}
