// File: precoding/precoder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Layer mapping and precoding of RE blocks.
//
// Layer mapping follows TS 38.211 7.3.1.3: the modulated stream d is split across
// L layers as x_l(i) = d(L*i + l). Precoding computes, for each port p,
// y_p(i) = sum_l W(p, l) * x_l(i).

package precoding

import (
	"github.com/momentics/hioload-ran/bf16"
	"github.com/momentics/hioload-ran/internal/invariant"
	"github.com/momentics/hioload-ran/rebuffer"
)

// Precoder combines layers into antenna ports.
type Precoder interface {
	// ApplyPrecoding precodes the layer-major input into the port-major output.
	ApplyPrecoding(out rebuffer.Writer, in rebuffer.Reader, w WeightMatrix)
	// ApplyLayerMapAndPrecoding layer-maps the interleaved symbols and precodes them into out.
	ApplyLayerMapAndPrecoding(out rebuffer.Writer, symbols []complex64, w WeightMatrix)
	// ApplyLayerMapAndPrecodingBF16 is ApplyLayerMapAndPrecoding writing storage-precision
	// samples, one destination slice per port.
	ApplyLayerMapAndPrecodingBF16(out [][]bf16.CBF16, symbols []complex64, w WeightMatrix)
}

// GenericPrecoder is the portable complex64 Precoder.
type GenericPrecoder struct{}

// NewGenericPrecoder returns a portable precoder.
func NewGenericPrecoder() *GenericPrecoder {
	return &GenericPrecoder{}
}

var _ Precoder = (*GenericPrecoder)(nil)

func (GenericPrecoder) ApplyPrecoding(out rebuffer.Writer, in rebuffer.Reader, w WeightMatrix) {
	nofLayers := w.NofLayers()
	nofPorts := w.NofPorts()
	nofRE := in.NofRE()
	invariant.Check(in.NofSlices() == nofLayers, "precoder: input has %d layers, weights have %d", in.NofSlices(), nofLayers)
	invariant.Check(out.NofSlices() == nofPorts, "precoder: output has %d ports, weights have %d", out.NofSlices(), nofPorts)
	invariant.Check(out.NofRE() == nofRE, "precoder: output has %d REs, input has %d", out.NofRE(), nofRE)

	for port := 0; port < nofPorts; port++ {
		dst := out.MutableSlice(port)
		coeff := w.Port(port)

		src := in.Slice(0)
		w0 := coeff[0]
		for i := range dst {
			dst[i] = src[i] * w0
		}
		for layer := 1; layer < nofLayers; layer++ {
			src = in.Slice(layer)
			wl := coeff[layer]
			for i := range dst {
				dst[i] += src[i] * wl
			}
		}
	}
}

func (GenericPrecoder) ApplyLayerMapAndPrecoding(out rebuffer.Writer, symbols []complex64, w WeightMatrix) {
	nofLayers := w.NofLayers()
	nofPorts := w.NofPorts()
	nofRE := out.NofRE()
	invariant.Check(out.NofSlices() == nofPorts, "precoder: output has %d ports, weights have %d", out.NofSlices(), nofPorts)
	invariant.Check(len(symbols) == nofRE*nofLayers, "precoder: %d symbols for %d REs x %d layers", len(symbols), nofRE, nofLayers)

	for port := 0; port < nofPorts; port++ {
		layerMapPrecode(out.MutableSlice(port), symbols, w.Port(port))
	}
}

func (GenericPrecoder) ApplyLayerMapAndPrecodingBF16(out [][]bf16.CBF16, symbols []complex64, w WeightMatrix) {
	nofLayers := w.NofLayers()
	nofPorts := w.NofPorts()
	invariant.Check(len(out) == nofPorts, "precoder: output has %d ports, weights have %d", len(out), nofPorts)

	for port := 0; port < nofPorts; port++ {
		dst := out[port]
		invariant.Check(len(symbols) == len(dst)*nofLayers, "precoder: %d symbols for %d REs x %d layers", len(symbols), len(dst), nofLayers)
		coeff := w.Port(port)
		for i := range dst {
			var acc complex64
			for layer, wl := range coeff {
				acc += symbols[i*nofLayers+layer] * wl
			}
			dst[i] = bf16.FromComplex64(acc)
		}
	}
}

func layerMapPrecode(dst, symbols, coeff []complex64) {
	nofLayers := len(coeff)
	if nofLayers == 1 {
		w0 := coeff[0]
		for i := range dst {
			dst[i] = symbols[i] * w0
		}
		return
	}
	for i := range dst {
		var acc complex64
		for layer, wl := range coeff {
			acc += symbols[i*nofLayers+layer] * wl
		}
		dst[i] = acc
	}
}
