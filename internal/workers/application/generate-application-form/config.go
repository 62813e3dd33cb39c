// internal/workers/application/generate-application-form/config.go
package generateapplicationform

import (
	"time"

	"loan-form-workers/internal/common/config"
)

type Config struct {
	TemplateDir   string
	OutputDir     string
	LayoutVersion string // used when a template declares none
	Strict        bool
	LockTTL       time.Duration
	Timeout       time.Duration
}

// LoadConfig builds the worker config from the forms section and the
// worker's own timeout.
func LoadConfig(forms config.FormsConfig, wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		TemplateDir:   forms.TemplateDir,
		OutputDir:     forms.OutputDir,
		LayoutVersion: forms.LayoutVersion,
		Strict:        forms.Strict,
		LockTTL:       forms.LockTTLDuration(),
		Timeout:       config.GetDuration(wcfg.Timeout),
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
