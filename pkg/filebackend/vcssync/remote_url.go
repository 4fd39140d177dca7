package vcssync

import (
	"fmt"
	"net/url"
	"strings"
)

// constructRemoteURL embeds basic-auth credentials into an HTTP(S) remote
// URL when both are supplied and the URL doesn't already carry userinfo. SSH
// credentials are never embedded in the URL; they are forwarded through the
// git invocation environment instead (see buildGitEnvironment).
func constructRemoteURL(options Options) (string, error) {
	if options.Username == "" || options.Password == "" {
		return options.RemoteURL, nil
	}
	if !strings.HasPrefix(options.RemoteURL, "http://") && !strings.HasPrefix(options.RemoteURL, "https://") {
		return options.RemoteURL, nil
	}

	parsed, err := url.Parse(options.RemoteURL)
	if err != nil {
		return "", fmt.Errorf("unable to parse remote URL: %w", err)
	}
	if parsed.User != nil {
		return options.RemoteURL, nil
	}

	parsed.User = url.UserPassword(options.Username, options.Password)
	return parsed.String(), nil
}
