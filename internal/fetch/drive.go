package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
)

// DriveFetcher downloads the dataset through the Google Drive API instead
// of a public export URL, for files that are not shared link-readable.
type DriveFetcher struct {
	svc    *gdrive.Service
	fileID string
}

// NewDriveFetcherFromEnv builds a Drive client from the environment.
// Credentials, in priority order: DRIVE_API_KEY (public files), a user
// token minted by oauth-init (GOOGLE_OAUTH_TOKEN_JSON or
// GOOGLE_OAUTH_TOKEN_FILE), GOOGLE_SERVICE_ACCOUNT_JSON inline,
// GOOGLE_SERVICE_ACCOUNT_FILE or the standard
// GOOGLE_APPLICATION_CREDENTIALS path.
func NewDriveFetcherFromEnv(ctx context.Context, fileID string) (*DriveFetcher, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, errors.New("missing drive file id")
	}

	opts, err := driveOptionsFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &DriveFetcher{svc: svc, fileID: fileID}, nil
}

func driveOptionsFromEnv(ctx context.Context) ([]goption.ClientOption, error) {
	if apiKey := strings.TrimSpace(os.Getenv("DRIVE_API_KEY")); apiKey != "" {
		return []goption.ClientOption{
			goption.WithAPIKey(apiKey),
			goption.WithScopes(gdrive.DriveReadonlyScope),
		}, nil
	}

	ts, err := oauthTokenSourceFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	if ts != nil {
		return []goption.ClientOption{
			goption.WithTokenSource(ts),
			goption.WithScopes(gdrive.DriveReadonlyScope),
		}, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing drive credentials (set DRIVE_API_KEY, GOOGLE_OAUTH_TOKEN_JSON, GOOGLE_OAUTH_TOKEN_FILE, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gdrive.DriveReadonlyScope),
	}, nil
}

// oauthTokenSourceFromEnv loads the user token saved by oauth-init. Nil
// without error means no token is configured. With the OAuth client config
// present the token refreshes itself; otherwise the access token is used
// as-is until it expires.
func oauthTokenSourceFromEnv(ctx context.Context) (oauth2.TokenSource, error) {
	tokenJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_JSON"))
	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))

	var raw []byte
	var err error
	switch {
	case tokenJSON != "":
		raw = []byte(tokenJSON)
	case tokenFile != "":
		raw, err = os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token file: %w", err)
		}
	default:
		return nil, nil
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(raw, tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var clientRaw []byte
	switch {
	case clientJSON != "":
		clientRaw = []byte(clientJSON)
	case clientFile != "":
		clientRaw, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return oauth2.StaticTokenSource(tok), nil
	}

	cfg, err := google.ConfigFromJSON(clientRaw, gdrive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}
	return cfg.TokenSource(ctx, tok), nil
}

func (f *DriveFetcher) Source() string {
	return "drive:" + f.fileID
}

func (f *DriveFetcher) Fetch(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := f.svc.Files.Get(f.fileID).Context(ctx).Download()
	if err != nil {
		return 0, fmt.Errorf("download drive file %s: %w", f.fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download drive file %s: unexpected status %s", f.fileID, resp.Status)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read drive response: %w", err)
	}
	return n, nil
}
