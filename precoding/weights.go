// File: precoding/weights.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package precoding

// WeightMatrix is a nofPorts x nofLayers complex64 matrix stored port-major.
type WeightMatrix struct {
	nofLayers int
	nofPorts  int
	coeff     []complex64
}

// NewWeightMatrix returns a zero matrix.
func NewWeightMatrix(nofLayers, nofPorts int) WeightMatrix {
	return WeightMatrix{
		nofLayers: nofLayers,
		nofPorts:  nofPorts,
		coeff:     make([]complex64, nofLayers*nofPorts),
	}
}

func (w WeightMatrix) NofLayers() int { return w.nofLayers }
func (w WeightMatrix) NofPorts() int  { return w.nofPorts }

// At returns the weight of layer on port.
func (w WeightMatrix) At(layer, port int) complex64 {
	return w.coeff[port*w.nofLayers+layer]
}

// Set sets the weight of layer on port.
func (w WeightMatrix) Set(v complex64, layer, port int) {
	w.coeff[port*w.nofLayers+layer] = v
}

// Port returns the weights of every layer for port.
func (w WeightMatrix) Port(port int) []complex64 {
	return w.coeff[port*w.nofLayers : (port+1)*w.nofLayers]
}
