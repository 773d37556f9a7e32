//go:build !resampledebug

package resample

const debugAssertions = false
