// internal/config/model.go
//
// Typed configuration model for the Adept runtime.
//
// Context
// -------
// These structs are the shape of the value Resolve builds from one
// RawEnvironment snapshot.  Once built, a *Config is shared by every
// consumer in the process and must be treated as read-only.
//
// Validation runs immediately after assembly; the process fails fast on
// any `validate:"…"` tag violation.
//
// Notes
// -----
//   • JSON tags exist for the admin CLI's `config` command.
//   • Secrets carry `json:"-"`.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// Build metadata section
//

// BuildMetadata is passed through verbatim from ADEPT_BUILD* and friends.
type BuildMetadata struct {
	Build                      string `json:"build,omitempty"`
	BuildURL                   string `json:"buildUrl,omitempty"`
	BuildImage                 string `json:"buildImage,omitempty"`
	BuildImageURL              string `json:"buildImageUrl,omitempty"`
	Repository                 string `json:"repository,omitempty"`
	RepositoryURL              string `json:"repositoryUrl,omitempty"`
	SourceRef                  string `json:"sourceRef,omitempty"`
	SourceCommit               string `json:"sourceCommit,omitempty"`
	SourceURL                  string `json:"sourceUrl,omitempty"`
	ThirdPartySourceURL        string `json:"thirdPartySourceUrl,omitempty"`
	ThirdPartyBugFeatureURL    string `json:"thirdPartyBugFeatureUrl,omitempty"`
	ThirdPartyDocumentationURL string `json:"thirdPartyDocumentationUrl,omitempty"`
	ThirdPartySupportURL       string `json:"thirdPartySupportUrl,omitempty"`
}

//
// Queue section
//

// JobOptions are the defaults applied to every enqueued job.
type JobOptions struct {
	Attempts         int  `json:"attempts" validate:"min=1"`
	RemoveOnComplete bool `json:"removeOnComplete"`
	RemoveOnFail     bool `json:"removeOnFail"`
}

// Queue describes the background-job broker.
type Queue struct {
	Prefix            string          `json:"prefix" validate:"required"`
	Connection        RedisConnection `json:"-"`
	DefaultJobOptions JobOptions      `json:"defaultJobOptions"`
	Names             []string        `json:"queues" validate:"min=1,dive,required"`
}

//
// Database section
//

// VectorExtension names the database extension that backs embedding search.
type VectorExtension string

const (
	ExtensionVector  VectorExtension = "vector"
	ExtensionVectors VectorExtension = "vectors"
)

// Database holds either a full DSN in URL or the discrete fields used to
// build one.
type Database struct {
	URL            string `json:"-"`
	Host           string `json:"host"     validate:"required"`
	Port           int    `json:"port"     validate:"min=1,max=65535"`
	Username       string `json:"username" validate:"required"`
	Password       string `json:"-"`
	Name           string `json:"name"     validate:"required"`
	SkipMigrations bool   `json:"skipMigrations"`

	VectorExtension VectorExtension `json:"vectorExtension" validate:"oneof=vector vectors"`
}

//
// Network section
//

// Network holds the trusted reverse-proxy list.  Entries are IPs or CIDRs.
type Network struct {
	TrustedProxies []string `json:"trustedProxies" validate:"dive,ip|cidr"`
}

//
// Resource paths section (derived from ADEPT_BUILD_DATA)
//

// GeodataPaths are fixed joins under <build>/geodata.
type GeodataPaths struct {
	DateFile                  string `json:"dateFile"`
	Admin1                    string `json:"admin1"`
	Admin2                    string `json:"admin2"`
	Cities500                 string `json:"cities500"`
	NaturalEarthCountriesPath string `json:"naturalEarthCountriesPath"`
}

// WebPaths are fixed joins under <build>/www.
type WebPaths struct {
	Root      string `json:"root"`
	IndexHTML string `json:"indexHtml"`
}

// ResourcePaths groups every path computed from the build-data root.
type ResourcePaths struct {
	LockFile string       `json:"lockFile"`
	Geodata  GeodataPaths `json:"geodata"`
	Web      WebPaths     `json:"web"`
}

//
// Storage section
//

// Storage holds media-storage tunables.
type Storage struct {
	IgnoreMountCheckErrors bool `json:"ignoreMountCheckErrors"`
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Resolve and cached by
// Repository.
type Config struct {
	Host          string        `json:"host,omitempty" validate:"omitempty,ip|hostname"`
	Port          int           `json:"port"           validate:"min=1,max=65535"`
	Environment   Environment   `json:"environment,omitempty"`
	ConfigFile    string        `json:"configFile,omitempty"`
	LogLevel      LogLevel      `json:"logLevel,omitempty" validate:"omitempty,oneof=verbose debug log warn error fatal"`
	BuildMetadata BuildMetadata `json:"buildMetadata"`
	Queue         Queue         `json:"queue"`
	Database      Database      `json:"database"`
	LicenseKeys   KeyPair       `json:"licensePublicKey"`
	Network       Network       `json:"network"`
	Redis         RedisOptions  `json:"-"`
	ResourcePaths ResourcePaths `json:"resourcePaths"`
	Storage       Storage       `json:"storage"`
	Telemetry     Telemetry     `json:"telemetry"`
	Workers       []Worker      `json:"workers"`
	NoColor       bool          `json:"noColor"`
}

// LogLevel is the ADEPT_LOG_LEVEL value.  Empty means "use the default".
type LogLevel string

const (
	LogVerbose LogLevel = "verbose"
	LogDebug   LogLevel = "debug"
	LogLog     LogLevel = "log"
	LogWarn    LogLevel = "warn"
	LogError   LogLevel = "error"
	LogFatal   LogLevel = "fatal"
)

// HasWorker reports whether the resolved topology includes w.
func (c *Config) HasWorker(w Worker) bool { return HasWorker(c.Workers, w) }
