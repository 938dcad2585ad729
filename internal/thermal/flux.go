package thermal

// Flux returns the conductive heat flow in watts between two temperatures
// using the one-dimensional Fourier approximation
//
//	q = -k * area * (to - from) / separation
//
// When from is a neighbour's temperature and to is the receiving layer's own
// temperature, a positive result is heat flowing into the receiving layer.
// separation must be non-zero.
func Flux(conductivity, area, separation, from, to float64) float64 {
	gradient := (to - from) / separation
	return -conductivity * area * gradient
}

// Separation is the centre-to-centre distance between two stacked slabs of
// the given heights.
func Separation(h1, h2 float64) float64 {
	return (h1 + h2) / 2
}

// SeriesConductivity is the effective conductivity across the interface of
// two stacked slabs, treating each half-slab as a resistance in series. It is
// symmetric in its arguments and equals k1 when k1 == k2.
func SeriesConductivity(k1, h1, k2, h2 float64) float64 {
	return Separation(h1, h2) / (h1/(2*k1) + h2/(2*k2))
}

// Conductance is the heat flow per degree across an interface, in W/K.
func Conductance(conductivity, area, separation float64) float64 {
	return conductivity * area / separation
}
