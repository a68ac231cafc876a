package wildcardstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/imagegen/paramweave/paramcore"
)

const maxWildcardFileDownload = 10 * 1024 * 1024

var driveFolderIDPattern = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)

// GoogleDriveConfig holds configuration for a GoogleDriveStore.
type GoogleDriveConfig struct {
	// CredentialsJSON is a service account key, given inline or as a file
	// path. Either this or AccessToken is required.
	CredentialsJSON string
	AccessToken     string

	// FolderID is the Drive folder id or a folder URL containing one.
	FolderID string
}

// GoogleDriveStore is a paramcore.WildcardStore backed by plain-text files
// in a single Google Drive folder (non-recursive: one wildcard per file).
type GoogleDriveStore struct {
	config  GoogleDriveConfig
	service *drive.Service
	limiter *rate.Limiter

	mu       sync.Mutex
	listed   bool
	fileIDs  map[string]string
	fileName map[string]string
}

// NewGoogleDriveStore builds a Drive-backed wildcard store.
func NewGoogleDriveStore(ctx context.Context, config GoogleDriveConfig) (*GoogleDriveStore, error) {
	if config.CredentialsJSON == "" && config.AccessToken == "" {
		return nil, fmt.Errorf("either CredentialsJSON or AccessToken is required")
	}
	if config.FolderID == "" {
		return nil, fmt.Errorf("FolderID is required")
	}
	config.FolderID = parseDriveFolderID(config.FolderID)

	var opts []option.ClientOption
	if config.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.AccessToken})
		opts = append(opts, option.WithTokenSource(ts))
	} else {
		credJSON := []byte(config.CredentialsJSON)
		if data, err := os.ReadFile(config.CredentialsJSON); err == nil {
			credJSON = data
		}
		creds, err := google.CredentialsFromJSON(ctx, credJSON, drive.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parsing Google Drive credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Drive service: %w", err)
	}

	return &GoogleDriveStore{
		config:   config,
		service:  service,
		limiter:  rate.NewLimiter(8.0, 2),
		fileIDs:  make(map[string]string),
		fileName: make(map[string]string),
	}, nil
}

func parseDriveFolderID(input string) string {
	if m := driveFolderIDPattern.FindStringSubmatch(input); len(m) == 2 {
		return m[1]
	}
	return input
}

// ListFiles lists every file directly inside the configured folder except
// native Google Workspace documents, naming each wildcard after its file
// name with a ".txt" suffix stripped; other extensions stay in the name.
func (s *GoogleDriveStore) ListFiles(ctx context.Context) ([]string, error) {
	if err := s.ensureListed(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.fileIDs))
	for name := range s.fileIDs {
		names = append(names, name)
	}
	return names, nil
}

// Get downloads the file backing name and splits it into options.
func (s *GoogleDriveStore) Get(ctx context.Context, name string) (paramcore.WildcardFile, error) {
	if err := s.ensureListed(ctx); err != nil {
		return paramcore.WildcardFile{}, err
	}
	s.mu.Lock()
	id, ok := s.fileIDs[name]
	s.mu.Unlock()
	if !ok {
		return paramcore.WildcardFile{}, fmt.Errorf("wildcard file not found: %s", name)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return paramcore.WildcardFile{}, err
	}
	resp, err := s.service.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return paramcore.WildcardFile{}, fmt.Errorf("downloading wildcard file %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxWildcardFileDownload))
	if err != nil {
		return paramcore.WildcardFile{}, fmt.Errorf("reading wildcard file %s: %w", name, err)
	}
	return paramcore.WildcardFile{Name: name, Options: splitLines(data)}, nil
}

func (s *GoogleDriveStore) ensureListed(ctx context.Context) error {
	s.mu.Lock()
	if s.listed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	var pageToken string
	ids := make(map[string]string)
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		call := s.service.Files.List().
			Q(fmt.Sprintf("'%s' in parents and trashed = false", s.config.FolderID)).
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(1000).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("listing Drive folder %s: %w", s.config.FolderID, err)
		}
		for _, f := range list.Files {
			if strings.HasPrefix(f.MimeType, "application/vnd.google-apps.") {
				continue
			}
			name := strings.TrimSuffix(f.Name, ".txt")
			ids[name] = f.Id
		}
		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	s.mu.Lock()
	s.fileIDs = ids
	s.listed = true
	s.mu.Unlock()
	return nil
}
