package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var stdin io.Reader = os.Stdin

// authorize returns a token source for an installed application OAuth2 client. The token is
// read from the tokens file or, if there isn't one, obtained interactively and saved.
func authorize(ctx context.Context, credentials string, tokens string, scopes ...string) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, err
	}

	token, err := tokenFromFile(tokens)
	if err != nil {
		if token, err = getTokenFromWeb(ctx, config); err != nil {
			return nil, err
		} else if err := saveToken(tokens, token); err != nil {
			warnf("unable to cache OAuth2 token (%v)", err)
		}
	}

	return config.TokenSource(ctx, token), nil
}

// serviceAccount returns a token source for a service account JSON key file.
func serviceAccount(ctx context.Context, file string, scopes ...string) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	config, err := google.JWTConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, err
	}

	return config.TokenSource(ctx), nil
}

// tokenFile returns the configured token file or <workdir>/.google/<credentials>.<suffix>.
func (c *command) tokenFile(config *Config, suffix ...string) string {
	if config.Tokens != "" && len(suffix) == 0 {
		return config.Tokens
	}

	ext := "tokens"
	if len(suffix) > 0 {
		ext = suffix[0]
	}

	_, file := filepath.Split(config.Credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(config.Workdir, ".google", fmt.Sprintf("%s.%s", name, ext))
}

// Requests a token from the web, then returns the retrieved token.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Printf("Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var code string
	if _, err := fmt.Fscan(stdin, &code); err != nil {
		return nil, fmt.Errorf("unable to read authorization code (%v)", err)
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web (%v)", err)
	}

	return token, nil
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

// Saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	infof("Saving OAuth2 token to %s", path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
