package pubsub

// TracingSource is the slice of the application configuration tracing reads.
// config.Provider satisfies it.
type TracingSource interface {
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
	GetTracingSampleRatio() float64
}

// TracingConfigFrom builds the exporter settings for a build of the given
// version.
func TracingConfigFrom(src TracingSource, version string) TracingConfig {
	return TracingConfig{
		Enabled:     src.GetTracingEnabled(),
		ServiceName: src.GetTracingServiceName(),
		Version:     version,
		ZipkinURL:   src.GetTracingZipkinURL(),
		SampleRatio: src.GetTracingSampleRatio(),
	}
}
