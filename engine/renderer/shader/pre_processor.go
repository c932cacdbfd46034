// pre_processor.go implements the WGSL shader pre-processor. It scans shader source
// for @particles: annotations, replaces them with generated @group/@binding
// declarations, and collects the declarations so callers can check which slots a
// shader actually uses.
package shader

import (
	"fmt"
	"strings"
)

// slotEntry is the host-side definition of one bindable slot.
type slotEntry struct {
	group   int
	binding int

	// wgslType is the type emitted in the generated declaration (e.g. "array<vec4<f32>>").
	wgslType string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	slotRegistry map[AnnotationArg]slotEntry

	// addressSpaceRegistry maps address space argument keys to WGSL var<> syntax strings.
	addressSpaceRegistry map[AnnotationArg]string

	// declarations is reset at the start of each Process call.
	declarations []Annotation
}

// PreProcessor rewrites annotated WGSL so that slot numbers and buffer types come from
// the host instead of being repeated in every shader.
type PreProcessor interface {
	// Process replaces every slot annotation with its generated declaration. Lines that
	// are not annotations are copied unchanged.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an annotation is malformed or names an unregistered slot
	Process(source string) (string, error)

	// Declarations returns the slot annotations collected by the most recent Process call,
	// in source order, with Group and Binding resolved.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption registers slots on a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithSlot registers a slot that annotations can refer to by name.
//
// Parameters:
//   - name: the slot name used in annotations
//   - group: the @group index
//   - binding: the @binding index
//   - wgslType: the WGSL type of the declared variable
//
// Returns:
//   - PreProcessorOption: option function to apply
func WithSlot(name string, group, binding int, wgslType string) PreProcessorOption {
	return func(p *preProcessor) {
		p.slotRegistry[AnnotationArg(name)] = slotEntry{group: group, binding: binding, wgslType: wgslType}
	}
}

// NewPreProcessor creates a PreProcessor with the given slots registered.
//
// Parameters:
//   - options: slot registrations
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		slotRegistry: make(map[AnnotationArg]slotEntry),
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeSlot:
			entry, ok := p.slotRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown slot %q", i+1, a.Args[0])
			}
			group, binding := entry.group, entry.binding
			a.Group, a.Binding = &group, &binding

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				group, binding, p.addressSpaceRegistry[a.Args[1]], a.Args[2], entry.wgslType))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
