// Package particles holds the host-side particle state and the GPU buffer layout shared
// with the compute and vertex shaders. It has no GPU dependency so the initial layout,
// the cursor transform and the dispatch math can be tested in isolation.
package particles

import (
	"encoding/binary"
	"math"
	"math/rand"
)

// Binding slots in bind group 0. The compute shader declares the same indices.
const (
	SlotPositions  = 0
	SlotVelocities = 1
	SlotCursor     = 2
	SlotTimeStep   = 3
)

// Byte sizes of one element of each buffer.
const (
	Vec4Size     = 16 // vec4<f32>
	CursorSize   = 8  // vec2<f32>
	TimeStepSize = 4  // f32
)

// maxRadius scales the random ring radius before it is divided down by ringScale.
const (
	maxRadius = 8
	ringScale = 10
)

// Slot describes one particle buffer as shaders declare it.
type Slot struct {
	Name     string
	Binding  int
	WGSLType string
}

// Slots lists the four particle buffers in binding order. Shaders refer to them by Name
// and the declarations are generated from Binding and WGSLType.
//
// Returns:
//   - []Slot: the slot definitions
func Slots() []Slot {
	return []Slot{
		{Name: "positions", Binding: SlotPositions, WGSLType: "array<vec4<f32>>"},
		{Name: "velocities", Binding: SlotVelocities, WGSLType: "array<vec4<f32>>"},
		{Name: "cursor", Binding: SlotCursor, WGSLType: "vec2<f32>"},
		{Name: "time_step", Binding: SlotTimeStep, WGSLType: "f32"},
	}
}

// Vec4 matches a WGSL vec4<f32>.
type Vec4 [4]float32

// Cursor is the cursor position in normalized device coordinates, laid out as vec2<f32>.
type Cursor struct {
	X, Y float32
}

// Marshal serializes the cursor into its 8-byte GPU layout.
//
// Returns:
//   - []byte: the serialized byte buffer
func (c Cursor) Marshal() []byte {
	buf := make([]byte, CursorSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(c.X))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(c.Y))
	return buf
}

// State is the host copy of the initial particle data. It is uploaded once and then
// owned by the GPU; the compute pass is the only thing that mutates the buffers.
type State struct {
	Positions  []Vec4
	Velocities []Vec4
	TimeStep   float32
}

// NewState builds the initial particle layout. Each particle gets a random radius r in
// [0, 8) and sits at (r*sin(i)/10, r*cos(i)/10, 0, 0). Every velocity is zero.
// The same seed always produces the same positions.
//
// Parameters:
//   - count: the number of particles
//   - timeStep: the fixed simulation time step
//   - seed: the random source seed
//
// Returns:
//   - *State: the initial particle state
func NewState(count int, timeStep float32, seed int64) *State {
	rng := rand.New(rand.NewSource(seed))
	s := &State{
		Positions:  make([]Vec4, count),
		Velocities: make([]Vec4, count),
		TimeStep:   timeStep,
	}
	for i := range count {
		r := rng.Float32() * maxRadius
		fi := float64(i)
		s.Positions[i] = Vec4{
			r * float32(math.Sin(fi)) / ringScale,
			r * float32(math.Cos(fi)) / ringScale,
			0,
			0,
		}
	}
	return s
}

// Count returns the number of particles.
func (s *State) Count() int {
	return len(s.Positions)
}

// PositionBytes serializes the positions buffer (slot 0).
func (s *State) PositionBytes() []byte {
	return marshalVec4s(s.Positions)
}

// VelocityBytes serializes the velocities buffer (slot 1).
func (s *State) VelocityBytes() []byte {
	return marshalVec4s(s.Velocities)
}

// TimeStepBytes serializes the time step buffer (slot 3).
func (s *State) TimeStepBytes() []byte {
	buf := make([]byte, TimeStepSize)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(s.TimeStep))
	return buf
}

// BufferSizes returns the exact byte size of each slot's buffer keyed by binding index.
//
// Returns:
//   - map[int]uint64: the buffer size per binding slot
func (s *State) BufferSizes() map[int]uint64 {
	return BufferSizes(s.Count())
}

// BufferSizes returns the exact byte size of each slot's buffer for count particles.
//
// Parameters:
//   - count: the number of particles
//
// Returns:
//   - map[int]uint64: the buffer size per binding slot
func BufferSizes(count int) map[int]uint64 {
	return map[int]uint64{
		SlotPositions:  uint64(count) * Vec4Size,
		SlotVelocities: uint64(count) * Vec4Size,
		SlotCursor:     CursorSize,
		SlotTimeStep:   TimeStepSize,
	}
}

func marshalVec4s(vs []Vec4) []byte {
	buf := make([]byte, len(vs)*Vec4Size)
	for i, v := range vs {
		off := i * Vec4Size
		for j := range 4 {
			binary.LittleEndian.PutUint32(buf[off+j*4:], math.Float32bits(v[j]))
		}
	}
	return buf
}
