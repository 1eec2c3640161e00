package validator

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/filesync"
	"github.com/ridoystarlord/ssc/schema"
	"github.com/ridoystarlord/ssc/utils"
)

// ValidationError represents a validation finding with details
type ValidationError struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func (r *ValidationResult) add(e ValidationError) {
	switch e.Severity {
	case "error":
		r.Errors = append(r.Errors, e)
	case "warning":
		r.Warnings = append(r.Warnings, e)
	default:
		r.Info = append(r.Info, e)
	}
}

// ConfigValidator checks a loaded configuration before it is used
type ConfigValidator struct{}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateConfig validates policies, globs, output layout and connections
func (v *ConfigValidator) ValidateConfig(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	v.validatePolicies(cfg.Idempotency, result)
	v.validateGlobs("files", cfg.Files, result)
	v.validateGlobs("data", cfg.Data, result)
	v.validateEOL(cfg.EOL, result)
	v.validateOutput(cfg, result)
	v.validateConnections(cfg, result)

	result.Valid = len(result.Errors) == 0
	return result
}

var policyKinds = []struct {
	key  string
	kind schema.Kind
}{
	{"tables", schema.KindTable},
	{"types", schema.KindType},
	{"views", schema.KindView},
	{"functions", schema.KindFunction},
	{"procs", schema.KindProcedure},
	{"triggers", schema.KindTrigger},
	{"data", schema.KindData},
	{"jobs", schema.KindJob},
}

// validatePolicies rejects values outside each kind's closed set
func (v *ConfigValidator) validatePolicies(idem schema.Idempotency, result *ValidationResult) {
	for _, pk := range policyKinds {
		policy := idem.For(pk.kind)
		allowed := schema.Allowed(pk.kind)
		if slices.Contains(allowed, policy) {
			continue
		}

		names := make([]string, len(allowed))
		for i, p := range allowed {
			names[i] = string(p)
		}
		result.add(ValidationError{
			Type:     "idempotency",
			Key:      "idempotency." + pk.key,
			Value:    string(policy),
			Message:  fmt.Sprintf("unknown policy %q, expected one of: %s", policy, strings.Join(names, ", ")),
			Severity: "error",
		})
	}
}

func (v *ConfigValidator) validateGlobs(key string, patterns []string, result *ValidationResult) {
	for _, pattern := range patterns {
		if strings.TrimPrefix(pattern, "!") == "" {
			result.add(ValidationError{
				Type:     "glob",
				Key:      key,
				Value:    pattern,
				Message:  "empty pattern",
				Severity: "error",
			})
			continue
		}
		if !utils.ValidateGlob(pattern) {
			result.add(ValidationError{
				Type:     "glob",
				Key:      key,
				Value:    pattern,
				Message:  "malformed glob pattern",
				Severity: "error",
			})
		}
	}

	if key == "data" && len(patterns) > 0 {
		result.add(ValidationError{
			Type:     "data",
			Key:      key,
			Message:  fmt.Sprintf("%d data pattern(s) configured, matching table rows will be scripted", len(patterns)),
			Severity: "info",
		})
	}
}

func (v *ConfigValidator) validateEOL(eol string, result *ValidationResult) {
	switch eol {
	case filesync.EOLAuto, filesync.EOLLF, filesync.EOLCRLF:
		return
	}
	result.add(ValidationError{
		Type:     "eol",
		Key:      "eol",
		Value:    eol,
		Message:  "expected auto, lf or crlf",
		Severity: "error",
	})
}

// validateOutput flags directories that collide or leave the root
func (v *ConfigValidator) validateOutput(cfg *config.Config, result *ValidationResult) {
	dirs := []struct{ key, dir string }{
		{"schemas", cfg.Output.Schemas},
		{"tables", cfg.Output.Tables},
		{"types", cfg.Output.Types},
		{"views", cfg.Output.Views},
		{"functions", cfg.Output.Functions},
		{"procs", cfg.Output.Procs},
		{"triggers", cfg.Output.Triggers},
		{"data", cfg.Output.Data},
		{"jobs", cfg.Output.Jobs},
	}

	seen := map[string]string{}
	for _, d := range dirs {
		if d.dir == "" {
			result.add(ValidationError{
				Type:     "output",
				Key:      "output." + d.key,
				Message:  "disabled, objects of this kind are neither pulled nor pushed",
				Severity: "info",
			})
			continue
		}

		clean := filepath.Clean(d.dir)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
			result.add(ValidationError{
				Type:     "output",
				Key:      "output." + d.key,
				Value:    d.dir,
				Message:  "directory is outside the output root",
				Severity: "warning",
			})
		}

		if other, ok := seen[clean]; ok {
			result.add(ValidationError{
				Type:     "output",
				Key:      "output." + d.key,
				Value:    d.dir,
				Message:  fmt.Sprintf("shares its directory with output.%s, stale file pruning and replay order will mix both kinds", other),
				Severity: "warning",
			})
			continue
		}
		seen[clean] = d.key
	}
}

func (v *ConfigValidator) validateConnections(cfg *config.Config, result *ValidationResult) {
	conns, err := cfg.ResolveConnections()
	if err != nil {
		result.add(ValidationError{
			Type:     "connections",
			Key:      "connections",
			Value:    cfg.ConnectionsPath,
			Message:  err.Error(),
			Severity: "error",
		})
		return
	}

	if len(conns) == 0 {
		result.add(ValidationError{
			Type:     "connections",
			Key:      "connections",
			Message:  "no connections configured, pull and push need one",
			Severity: "warning",
		})
		return
	}

	names := map[string]bool{}
	for i, conn := range conns {
		label := conn.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if conn.Server == "" {
			result.add(ValidationError{
				Type:     "connections",
				Key:      "connections",
				Value:    label,
				Message:  "connection has no server",
				Severity: "warning",
			})
		}
		if conn.Database == "" {
			result.add(ValidationError{
				Type:     "connections",
				Key:      "connections",
				Value:    label,
				Message:  "connection has no database, the login's default database is used",
				Severity: "warning",
			})
		}
		lower := strings.ToLower(conn.Name)
		if names[lower] {
			result.add(ValidationError{
				Type:     "connections",
				Key:      "connections",
				Value:    label,
				Message:  "duplicate connection name, lookups return the first one",
				Severity: "warning",
			})
		}
		names[lower] = true
	}
}
