package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from srcmerge.yml.
type ProjectConfig struct {
	Suffix  string   `yaml:"suffix,omitempty"`
	Strict  bool     `yaml:"strict,omitempty"`
	Banner  string   `yaml:"banner,omitempty"`
	S3      S3Config `yaml:"s3,omitempty"`
	Targets []Target `yaml:"targets,omitempty"`
}

// S3Config locates the object store used for s3:// outputs. Credentials are
// never read from the YAML file; they come from the environment.
type S3Config struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	UseSSL    bool   `yaml:"useSSL,omitempty"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Target is one merged output: where it goes, which directories feed it,
// and an optional order config path.
type Target struct {
	Output string   `yaml:"output"`
	Dirs   []string `yaml:"dirs"`
	Order  string   `yaml:"order,omitempty"`
}

// Load attempts to read srcmerge.yml or srcmerge.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists. Relative target paths are resolved against dir.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"srcmerge.yml", "srcmerge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, &ParseError{Path: path, Msg: err.Error()}
		}
		cfg.resolvePaths(dir)
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

func (c *ProjectConfig) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || p == "-" || strings.HasPrefix(p, "s3://") || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Targets {
		t := &c.Targets[i]
		t.Output = abs(t.Output)
		t.Order = abs(t.Order)
		for j := range t.Dirs {
			t.Dirs[j] = abs(t.Dirs[j])
		}
	}
}

// LoadEnv loads .env from the working directory, if present, and applies
// SRCMERGE_S3_* variables on top of the file-based S3 settings.
func LoadEnv(cfg *ProjectConfig) {
	_ = godotenv.Load()

	s3 := &cfg.S3
	s3.Endpoint = firstNonEmpty(env("SRCMERGE_S3_ENDPOINT"), s3.Endpoint)
	s3.Region = firstNonEmpty(env("SRCMERGE_S3_REGION"), s3.Region, "us-east-1")
	s3.Bucket = firstNonEmpty(env("SRCMERGE_S3_BUCKET"), s3.Bucket)
	s3.AccessKey = env("SRCMERGE_S3_ACCESS_KEY")
	s3.SecretKey = env("SRCMERGE_S3_SECRET_KEY")
	if raw := env("SRCMERGE_S3_USE_SSL"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			s3.UseSSL = v
		}
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
