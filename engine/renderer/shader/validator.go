package shader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gst "github.com/richinsley/goshadertranslator"
)

// Validator output targets accepted by NewValidator.
const (
	ValidatorOutputGLSL330 = "glsl330"
	ValidatorOutputGLSL410 = "glsl410"
	ValidatorOutputESSL    = "essl"
)

// validatedVersion is the only version the WebGL2 translator front end accepts.
const validatedVersion = "#version 300 es"

// translateFunc translates one stage source and returns the translated code.
type translateFunc func(source, stage string) (string, error)

// ValidationError reports a stage the translator rejected, with a numbered listing of the
// exact source it was given.
type ValidationError struct {
	// Stage is the rejected stage.
	Stage Stage

	// Listing is NumberLines of the stage source.
	Listing string

	// Err is the translator's error.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("failed to validate shader's %s block: %v\n%s", e.Stage, e.Err, e.Listing)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator checks processed stages by running them through the ANGLE shader translator.
// Sources must declare version 300 es; the geometry stage is not supported by the translator.
type Validator struct {
	translate translateFunc
	logger    *slog.Logger
}

// NewValidator creates a Validator backed by the goshadertranslator runtime.
//
// Parameters:
//   - ctx: context used to start the translator runtime
//   - output: one of ValidatorOutputGLSL330, ValidatorOutputGLSL410 or ValidatorOutputESSL
//
// Returns:
//   - *Validator: the validator
//   - error: an error if the output is unknown or the translator fails to start
func NewValidator(ctx context.Context, output string) (*Validator, error) {
	format := gst.OutputFormatGLSL330
	switch output {
	case ValidatorOutputGLSL330, "":
	case ValidatorOutputGLSL410:
		format = gst.OutputFormatGLSL410
	case ValidatorOutputESSL:
		format = gst.OutputFormatESSL
	default:
		return nil, fmt.Errorf("shader: unknown validator output %q", output)
	}

	t, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to start translator: %w", err)
	}
	return newValidator(func(source, stage string) (string, error) {
		out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, format)
		if err != nil {
			return "", err
		}
		return out.Code, nil
	}), nil
}

func newValidator(translate translateFunc) *Validator {
	return &Validator{translate: translate}
}

// SetLogger sets the logger for skipped stages. Defaults to the package logger.
func (v *Validator) SetLogger(l *slog.Logger) {
	v.logger = l
}

func (v *Validator) log() *slog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return Logger()
}

// Validate translates the vertex and fragment stages of a result.
//
// Parameters:
//   - result: a successful pre-processor result
//
// Returns:
//   - []Stage: the stages that were translated successfully
//   - error: a *ValidationError for the first rejected stage, or nil
func (v *Validator) Validate(result ProcessResult) ([]Stage, error) {
	if strings.TrimSpace(result.Version) != validatedVersion {
		v.log().Warn("skipping validation, translator requires version 300 es", "version", strings.TrimSpace(result.Version))
		return nil, nil
	}

	checked := make([]Stage, 0, 2)
	for _, stage := range Stages {
		if !result.HasStage(stage) {
			continue
		}
		if stage == StageGeometry {
			v.log().Warn("skipping validation of geometry stage")
			continue
		}
		src := result.Source(stage)
		if _, err := v.translate(src, stage.String()); err != nil {
			return checked, &ValidationError{Stage: stage, Listing: NumberLines(src), Err: err}
		}
		checked = append(checked, stage)
	}
	return checked, nil
}
