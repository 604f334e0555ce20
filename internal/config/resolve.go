// internal/config/resolve.go
//
// The resolution pipeline.
//
/*
Context
--------
Resolve turns one RawEnvironment into one *Config.  It performs no I/O and
holds no state, so it is safe to call from tests with hand-built maps.

Order of operations:

  1. Worker topology (fatal on unknown roles).
  2. Redis connection (fatal on an undecodable REDIS_URL).
  3. Telemetry flag cascade.
  4. Scalars, derived paths, and the environment-selected key pair.
  5. Struct validation (fatal on any tag violation).

No partial Config is ever returned.  Malformed integers are the one
exception to "malformed means fatal"; they silently fall back.
*/
package config

import (
	"fmt"
	"path/filepath"
)

const (
	defaultPort      = 2283
	defaultBuildData = "/build"
	defaultDBHost    = "database"
	defaultDBPort    = 3306
	defaultDBUser    = "adept"
		defaultDBName    = "adept"

	queuePrefix = "adept_queue"
	citiesFile  = "cities500.txt"
)

// DefaultDBPassword is used when DB_PASSWORD is unset.
const DefaultDBPassword = "adept"

// QueueNames is the fixed set of background queues.
var QueueNames = []string{
	"background-task",
	"metadata-extraction",
	"thumbnail-generation",
	"search",
	"sidecar",
	"library",
	"notifications",
	"backup-database",
}

// Resolve runs the full pipeline against raw.
func Resolve(raw RawEnvironment) (*Config, error) {
	workers, err := ResolveWorkers(raw.Get("ADEPT_WORKERS_INCLUDE"), raw.Get("ADEPT_WORKERS_EXCLUDE"))
	if err != nil {
		return nil, err
	}

	redis, err := ResolveRedis(raw)
	if err != nil {
		return nil, err
	}

	env := Environment(raw.Get("ADEPT_ENV"))
	build := raw.Or("ADEPT_BUILD_DATA", defaultBuildData)

	cfg := &Config{
		Host:          raw.Get("ADEPT_HOST"),
		Port:          ParsePort(raw.Get("ADEPT_PORT"), defaultPort),
		Environment:   env,
		ConfigFile:    raw.Get("ADEPT_CONFIG_FILE"),
		LogLevel:      LogLevel(raw.Get("ADEPT_LOG_LEVEL")),
		BuildMetadata: resolveBuildMetadata(raw),
		Queue: Queue{
			Prefix:     queuePrefix,
			Connection: redis,
			DefaultJobOptions: JobOptions{
				Attempts:         3,
				RemoveOnComplete: true,
				RemoveOnFail:     false,
			},
			Names: append([]string(nil), QueueNames...),
		},
		Database: Database{
			URL:            raw.Get("DB_URL"),
			Host:           raw.Or("DB_HOSTNAME", defaultDBHost),
			Port:           ParsePort(raw.Get("DB_PORT"), defaultDBPort),
			Username:       raw.Or("DB_USERNAME", defaultDBUser),
			Password:       raw.Or("DB_PASSWORD", DefaultDBPassword),
			Name:           raw.Or("DB_DATABASE_NAME", defaultDBName),
			SkipMigrations: raw.Get("DB_SKIP_MIGRATIONS") == "true",

			VectorExtension: resolveVectorExtension(raw.Get("DB_VECTOR_EXTENSION")),
		},
		LicenseKeys: LicenseKeys(env),
		Network: Network{
			TrustedProxies: ParseList(raw.Get("ADEPT_TRUSTED_PROXIES")),
		},
		Redis:         redis.Options,
		ResourcePaths: resolvePaths(build),
		Storage: Storage{
			IgnoreMountCheckErrors: raw.Get("ADEPT_IGNORE_MOUNT_CHECK_ERRORS") == "true",
		},
		Telemetry: ResolveTelemetry(raw),
		Workers:   workers,
		NoColor:   raw.Get("NO_COLOR") != "",
	}

	if err := validateStruct(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// resolveVectorExtension maps the literal "pgvector" to ExtensionVector.  Anything
// else, empty included, selects ExtensionVectors.
func resolveVectorExtension(raw string) VectorExtension {
	if raw == "pgvector" {
		return ExtensionVector
	}
	return ExtensionVectors
}

func resolveBuildMetadata(raw RawEnvironment) BuildMetadata {
	return BuildMetadata{
		Build:                      raw.Get("ADEPT_BUILD"),
		BuildURL:                   raw.Get("ADEPT_BUILD_URL"),
		BuildImage:                 raw.Get("ADEPT_BUILD_IMAGE"),
		BuildImageURL:              raw.Get("ADEPT_BUILD_IMAGE_URL"),
		Repository:                 raw.Get("ADEPT_REPOSITORY"),
		RepositoryURL:              raw.Get("ADEPT_REPOSITORY_URL"),
		SourceRef:                  raw.Get("ADEPT_SOURCE_REF"),
		SourceCommit:               raw.Get("ADEPT_SOURCE_COMMIT"),
		SourceURL:                  raw.Get("ADEPT_SOURCE_URL"),
		ThirdPartySourceURL:        raw.Get("ADEPT_THIRD_PARTY_SOURCE_URL"),
		ThirdPartyBugFeatureURL:    raw.Get("ADEPT_THIRD_PARTY_BUG_FEATURE_URL"),
		ThirdPartyDocumentationURL: raw.Get("ADEPT_THIRD_PARTY_DOCUMENTATION_URL"),
		ThirdPartySupportURL:       raw.Get("ADEPT_THIRD_PARTY_SUPPORT_URL"),
	}
}

func resolvePaths(build string) ResourcePaths {
	geodata := filepath.Join(build, "geodata")
	web := filepath.Join(build, "www")
	return ResourcePaths{
		LockFile: filepath.Join(build, "build-lock.json"),
		Geodata: GeodataPaths{
			DateFile:                  filepath.Join(geodata, "geodata-date.txt"),
			Admin1:                    filepath.Join(geodata, "admin1CodesASCII.txt"),
			Admin2:                    filepath.Join(geodata, "admin2Codes.txt"),
			Cities500:                 filepath.Join(geodata, citiesFile),
			NaturalEarthCountriesPath: filepath.Join(geodata, "ne_10m_admin_0_countries.geojson"),
		},
		Web: WebPaths{
			Root:      web,
			IndexHTML: filepath.Join(web, "index.html"),
		},
	}
}
