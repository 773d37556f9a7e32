//go:build resampledebug

package resample

const debugAssertions = true
