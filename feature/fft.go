package feature

import "math"

// powerSpectrum returns the one-sided power spectrum of the frame after
// windowing, via an in-place radix-2 Cooley-Tukey FFT. The frame is
// zero-padded up to the next power of two.
func powerSpectrum(frame []float64) []float64 {
	n := nextPow2(len(frame))
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, frame)

	fftInPlace(re, im)

	half := n/2 + 1
	power := make([]float64, half)
	for i := 0; i < half; i++ {
		power[i] = re[i]*re[i] + im[i]*im[i]
	}
	return power
}

func fftInPlace(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	bits := 0
	for v := n; v > 1; v >>= 1 {
		bits++
	}

	// Bit-reversal permutation.
	for i := 0; i < n; i++ {
		j := bitReverse(i, bits)
		if j > i {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	// Butterflies.
	for size := 2; size <= n; size *= 2 {
		half := size / 2
		angle := -2 * math.Pi / float64(size)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += size {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < half; k++ {
				i0 := start + k
				i1 := start + k + half
				tRe := curRe*re[i1] - curIm*im[i1]
				tIm := curRe*im[i1] + curIm*re[i1]
				re[i1] = re[i0] - tRe
				im[i1] = im[i0] - tIm
				re[i0] += tRe
				im[i0] += tIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

func bitReverse(x, bits int) int {
	var result int
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
