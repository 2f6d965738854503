package process

// ProcessChannels calls fn for every output channel.
func (c *Context) ProcessChannels(fn func(ch int, output []float32)) {
	for ch := range c.Output {
		fn(ch, c.Output[ch])
	}
}

// ApplyGain multiplies every output channel by the per-sample gain in gains.
func (c *Context) ApplyGain(gains []float32) {
	c.ProcessChannels(func(_ int, output []float32) {
		for i := range output {
			output[i] *= gains[i]
		}
	})
}

// Interleave writes the output channels frame by frame into dst, which
// must hold NumSamples()*NumOutputChannels() values.
func (c *Context) Interleave(dst []float32) {
	channels := len(c.Output)
	for ch, output := range c.Output {
		for i, s := range output {
			dst[i*channels+ch] = s
		}
	}
}
