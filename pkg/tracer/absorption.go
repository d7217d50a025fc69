package tracer

// ForwardWeights returns the listener-to-source running product stored on
// each record: weight i is the product of retained fractions 0..i
func (c Chain) ForwardWeights() []float64 {
	weights := make([]float64, len(c.Records))
	for i, rec := range c.Records {
		weights[i] = rec.CumulativeRetained
	}
	return weights
}

// ReverseWeighted returns a copy of the chain whose weights run from the last
// record back to the first: weight i is the product of retained fractions
// i..n-1, so hits nearest the source pass through the fewest reflections.
// The receiver is left untouched.
func (c Chain) ReverseWeighted() Chain {
	records := make([]ReflectionRecord, len(c.Records))
	copy(records, c.Records)

	totalDampen := 1.0
	for i := len(records) - 1; i >= 0; i-- {
		totalDampen *= records[i].Hit.Material.Retained
		records[i].CumulativeRetained = totalDampen
	}

	return Chain{Records: records, Termination: c.Termination}
}

// Weighted returns a copy of the chain carrying the requested ordering
func (c Chain) Weighted(w Weighting) Chain {
	if w == WeightReverse {
		return c.ReverseWeighted()
	}
	records := make([]ReflectionRecord, len(c.Records))
	copy(records, c.Records)
	return Chain{Records: records, Termination: c.Termination}
}
