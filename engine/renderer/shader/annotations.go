// annotations.go defines the annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @particles: that stand in for
// resource declarations whose group, binding and type are owned by the host. The parsed
// results are stored as Annotation values and consumed by the PreProcessor.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@particles:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeSlot generates a WGSL @group/@binding variable declaration for a slot
	// registered on the PreProcessor and appends an Annotation to its declarations list.
	//
	// Syntax: //@particles:slot <slot_name> <address_space> [var_name]
	//
	// The variable name defaults to the slot name.
	//
	// Example: //@particles:slot positions storage_read
	AnnotationTypeSlot AnnotationType = "slot"
)

// Annotation represents a single parsed annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. For slot: [0] = slot name, [1] = address space, [2] = var name.
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group and Binding are filled in by the PreProcessor from the slot registry.
	Group   *int
	Binding *int
}

// AnnotationArg is a typed string used as an argument in annotations.
type AnnotationArg string

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in slot annotations.

const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// parseAnnotation attempts to parse a single line of WGSL source as an annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	after, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	after, ok = strings.CutPrefix(strings.TrimSpace(after), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}

	switch args[0] {
	case string(AnnotationTypeSlot):
		if len(args) < 3 || len(args) > 4 {
			return nil, fmt.Errorf("line %d: slot annotation requires a slot name, an address space and an optional variable name", lineNum)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[2])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in slot annotation", lineNum, args[2])
		}
		varName := args[1]
		if len(args) == 4 {
			varName = args[3]
		}
		return &Annotation{
			Type: AnnotationTypeSlot,
			Args: []AnnotationArg{AnnotationArg(args[1]), AnnotationArg(args[2]), AnnotationArg(varName)},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
