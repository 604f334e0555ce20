// internal/config/telemetry.go
//
// Telemetry feature flags.
//
// ADEPT_METRICS is the global switch.  Each subsystem flag defaults to the
// resolved global value, so an unset subsystem inherits it and an explicit
// subsystem value always wins.  Enabled is the OR of all five and gates
// whether any instrumentation is built at all.

package config

const (
	defaultAPIMetricsPort           = 8081
	defaultMicroservicesMetricsPort = 8082
)

// IgnoredMetricRoutes are never recorded by the API metrics middleware.
var IgnoredMetricRoutes = []string{"/metrics", "/healthz", "/favicon.ico"}

// Telemetry is the resolved flag set plus metrics listener ports.
type Telemetry struct {
	APIPort           int  `json:"apiPort"           validate:"min=1,max=65535"`
	MicroservicesPort int  `json:"microservicesPort" validate:"min=1,max=65535"`
	Enabled           bool `json:"enabled"`
	Global            bool `json:"global"`
	HostMetrics       bool `json:"hostMetrics"`
	APIMetrics        bool `json:"apiMetrics"`
	RepoMetrics       bool `json:"repoMetrics"`
	JobMetrics        bool `json:"jobMetrics"`
}

// ResolveTelemetry applies the cascade.
func ResolveTelemetry(raw RawEnvironment) Telemetry {
	global := ParseBool(raw.Get("ADEPT_METRICS"), false)

	t := Telemetry{
		APIPort:           ParsePort(raw.Get("ADEPT_API_METRICS_PORT"), defaultAPIMetricsPort),
		MicroservicesPort: ParsePort(raw.Get("ADEPT_MICROSERVICES_METRICS_PORT"), defaultMicroservicesMetricsPort),
		Global:            global,
		HostMetrics:       ParseBool(raw.Get("ADEPT_HOST_METRICS"), global),
		APIMetrics:        ParseBool(raw.Get("ADEPT_API_METRICS"), global),
		RepoMetrics:       ParseBool(raw.Get("ADEPT_IO_METRICS"), global),
		JobMetrics:        ParseBool(raw.Get("ADEPT_JOB_METRICS"), global),
	}
	t.Enabled = t.Global || t.HostMetrics || t.APIMetrics || t.RepoMetrics || t.JobMetrics
	return t
}
