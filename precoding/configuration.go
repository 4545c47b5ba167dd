// File: precoding/configuration.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Precoding configuration: one nofPorts x nofLayers weight matrix per precoding
// resource block group (PRG). Matrices are kept as gonum complex dense matrices
// for callers that build codebooks with linear algebra, and mirrored into
// compact complex64 WeightMatrix values read by the mapper hot path.

package precoding

import (
	"fmt"
	"math"

	"github.com/momentics/hioload-ran/api"
	"gonum.org/v1/gonum/mat"
)

// Limits of a precoding configuration.
const (
	MaxLayers = 8
	MaxPorts  = 16
	// WidebandPRGSize is the PRG size, in RBs, of a configuration with a single PRG.
	WidebandPRGSize = api.MaxRB
)

// Configuration holds per-PRG precoding weights.
type Configuration struct {
	nofLayers int
	nofPorts  int
	prgSize   int
	matrices  []*mat.CDense
	weights   []WeightMatrix
}

// NewConfiguration returns a configuration with all weights set to zero.
func NewConfiguration(nofLayers, nofPorts, nofPRG, prgSizeRB int) (*Configuration, error) {
	switch {
	case nofLayers < 1 || nofLayers > MaxLayers:
		return nil, fmt.Errorf("precoding: %d layers outside [1, %d]: %w", nofLayers, MaxLayers, api.ErrInvalidArgument)
	case nofPorts < 1 || nofPorts > MaxPorts:
		return nil, fmt.Errorf("precoding: %d ports outside [1, %d]: %w", nofPorts, MaxPorts, api.ErrInvalidArgument)
	case nofLayers > nofPorts:
		return nil, fmt.Errorf("precoding: %d layers exceed %d ports: %w", nofLayers, nofPorts, api.ErrInvalidArgument)
	case nofPRG < 1 || nofPRG > api.MaxRB:
		return nil, fmt.Errorf("precoding: %d PRGs outside [1, %d]: %w", nofPRG, api.MaxRB, api.ErrInvalidArgument)
	case prgSizeRB < 1:
		return nil, fmt.Errorf("precoding: PRG size %d RB: %w", prgSizeRB, api.ErrInvalidArgument)
	}
	c := &Configuration{
		nofLayers: nofLayers,
		nofPorts:  nofPorts,
		prgSize:   prgSizeRB,
		matrices:  make([]*mat.CDense, nofPRG),
		weights:   make([]WeightMatrix, nofPRG),
	}
	for i := range c.matrices {
		c.matrices[i] = mat.NewCDense(nofPorts, nofLayers, nil)
		c.weights[i] = NewWeightMatrix(nofLayers, nofPorts)
	}
	return c, nil
}

// NewWidebandIdentity returns a single-PRG configuration mapping layer i to port i with unit weight.
func NewWidebandIdentity(nofLayers int) (*Configuration, error) {
	c, err := NewConfiguration(nofLayers, nofLayers, 1, WidebandPRGSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nofLayers; i++ {
		c.SetCoefficient(1, i, i, 0)
	}
	return c, nil
}

// NewWidebandOneLayerAllPorts returns a single-layer configuration spreading the
// layer over nofPorts ports with weight 1/sqrt(nofPorts).
func NewWidebandOneLayerAllPorts(nofPorts int) (*Configuration, error) {
	c, err := NewConfiguration(1, nofPorts, 1, WidebandPRGSize)
	if err != nil {
		return nil, err
	}
	w := complex(1/math.Sqrt(float64(nofPorts)), 0)
	for port := 0; port < nofPorts; port++ {
		c.SetCoefficient(w, 0, port, 0)
	}
	return c, nil
}

// NewWidebandFromMatrix returns a single-PRG configuration with weights taken
// from m, whose rows are ports and columns are layers.
func NewWidebandFromMatrix(m mat.CMatrix) (*Configuration, error) {
	ports, layers := m.Dims()
	c, err := NewConfiguration(layers, ports, 1, WidebandPRGSize)
	if err != nil {
		return nil, err
	}
	if err := c.SetPRGMatrix(0, m); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) NofLayers() int { return c.nofLayers }
func (c *Configuration) NofPorts() int  { return c.nofPorts }
func (c *Configuration) NofPRG() int    { return len(c.matrices) }

// PRGSize returns the PRG size in RBs.
func (c *Configuration) PRGSize() int { return c.prgSize }

func (c *Configuration) checkIndices(layer, port, prg int) {
	if layer < 0 || layer >= c.nofLayers || port < 0 || port >= c.nofPorts || prg < 0 || prg >= len(c.matrices) {
		panic(api.NewError(api.ErrCodeContractViolation,
			fmt.Sprintf("precoding: coefficient (layer=%d, port=%d, prg=%d) outside %dx%dx%d",
				layer, port, prg, c.nofLayers, c.nofPorts, len(c.matrices))))
	}
}

// SetCoefficient sets the weight applied to layer on port within prg.
func (c *Configuration) SetCoefficient(w complex128, layer, port, prg int) {
	c.checkIndices(layer, port, prg)
	c.matrices[prg].Set(port, layer, w)
	c.weights[prg].Set(complex64(w), layer, port)
}

// Coefficient returns the weight applied to layer on port within prg.
func (c *Configuration) Coefficient(layer, port, prg int) complex128 {
	c.checkIndices(layer, port, prg)
	return c.matrices[prg].At(port, layer)
}

// SetPRGMatrix replaces all weights of prg with m (ports x layers).
func (c *Configuration) SetPRGMatrix(prg int, m mat.CMatrix) error {
	r, cols := m.Dims()
	if r != c.nofPorts || cols != c.nofLayers {
		return fmt.Errorf("precoding: matrix is %dx%d, want %dx%d: %w", r, cols, c.nofPorts, c.nofLayers, api.ErrInvalidArgument)
	}
	for port := 0; port < r; port++ {
		for layer := 0; layer < cols; layer++ {
			c.SetCoefficient(m.At(port, layer), layer, port, prg)
		}
	}
	return nil
}

// Matrix returns a copy of the weights of prg as a ports x layers matrix.
func (c *Configuration) Matrix(prg int) *mat.CDense {
	c.checkIndices(0, 0, prg)
	src := c.matrices[prg]
	dst := mat.NewCDense(c.nofPorts, c.nofLayers, nil)
	for port := 0; port < c.nofPorts; port++ {
		for layer := 0; layer < c.nofLayers; layer++ {
			dst.Set(port, layer, src.At(port, layer))
		}
	}
	return dst
}

// PRGCoefficients returns the compact weights of prg. The result shares storage
// with the configuration and must not be modified.
func (c *Configuration) PRGCoefficients(prg int) WeightMatrix {
	c.checkIndices(0, 0, prg)
	return c.weights[prg]
}

// IsIdentityBypass reports whether precoding has no effect: one layer, one port,
// one PRG and a unit weight.
func (c *Configuration) IsIdentityBypass() bool {
	return c.nofLayers == 1 && c.nofPorts == 1 && len(c.matrices) == 1 && c.weights[0].At(0, 0) == 1
}
