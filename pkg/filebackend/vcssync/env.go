package vcssync

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/f9labs/gofilebackend/pkg/environment"
)

// Environment variable names consulted by OptionsFromEnvironment.
const (
	envRemoteURL  = "GOFILEBACKEND_SYNC_REMOTE_URL"
	envPath       = "GOFILEBACKEND_SYNC_PATH"
	envBranch     = "GOFILEBACKEND_SYNC_BRANCH"
	envAuthorName = "GOFILEBACKEND_SYNC_AUTHOR_NAME"
	envAuthorMail = "GOFILEBACKEND_SYNC_AUTHOR_EMAIL"
	envAutoPull   = "GOFILEBACKEND_SYNC_AUTO_PULL"
	envAutoPush   = "GOFILEBACKEND_SYNC_AUTO_PUSH"
	envSSHKeyPath = "GOFILEBACKEND_SYNC_SSH_KEY_PATH"
	envKnownHosts = "GOFILEBACKEND_SYNC_KNOWN_HOSTS"
	envUsername   = "GOFILEBACKEND_SYNC_USERNAME"
	envPassword   = "GOFILEBACKEND_SYNC_PASSWORD"
)

// OptionsFromEnvironment builds an Options from the process environment,
// optionally overlaid with a dotenv-style credentials file (interpolation
// enabled, current process environment taking precedence). An empty or
// missing credentialsFile is treated as an empty overlay.
func OptionsFromEnvironment(credentialsFile string) (Options, error) {
	values, err := loadEnvironment(credentialsFile)
	if err != nil {
		return Options{}, err
	}

	options := Options{
		RemoteURL:   values[envRemoteURL],
		Path:        values[envPath],
		Branch:      values[envBranch],
		AuthorName:  values[envAuthorName],
		AuthorEmail: values[envAuthorMail],
		SSHKeyPath:  values[envSSHKeyPath],
		KnownHosts:  values[envKnownHosts],
		Username:    values[envUsername],
		Password:    values[envPassword],
	}

	if value := values[envAutoPull]; value != "" {
		options.AutoPull, err = strconv.ParseBool(value)
		if err != nil {
			return Options{}, fmt.Errorf("invalid %s value %q: %w", envAutoPull, value, err)
		}
	}
	if value := values[envAutoPush]; value != "" {
		options.AutoPush, err = strconv.ParseBool(value)
		if err != nil {
			return Options{}, fmt.Errorf("invalid %s value %q: %w", envAutoPush, value, err)
		}
	}

	if options.RemoteURL == "" {
		return Options{}, fmt.Errorf("%s is required", envRemoteURL)
	}
	if options.Path == "" {
		return Options{}, fmt.Errorf("%s is required", envPath)
	}

	return options, nil
}

// loadEnvironment loads a dotenv-style file (if present) and overlays the
// current process environment on top, mirroring the precedence rules of a
// typical compose-style environment loader. Both the file contents and the
// process environment are folded into maps with environment.ToMap so the
// overlay is a plain map merge rather than a hand-rolled KEY=value split.
func loadEnvironment(path string) (map[string]string, error) {
	values := make(map[string]string)
	if path != "" {
		fromFile, err := godotenv.Read(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("unable to load environment file (%s): %w", path, err)
		}
		for key, value := range fromFile {
			values[key] = value
		}
	}

	for key, value := range environment.ToMap(os.Environ()) {
		values[key] = value
	}

	return values, nil
}
