// Package drive lists media files in an external Google Drive folder.
// It never writes to the provider.
package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/event-gallery-api/internal/config"
	"github.com/event-gallery-api/internal/models"
	"github.com/rs/zerolog"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const listFields = "nextPageToken, files(id, name, mimeType, webContentLink, thumbnailLink, createdTime)"

// File is one entry of a folder listing
type File struct {
	ID           string
	Name         string
	MimeType     string
	ContentURL   string
	ThumbnailURL string
	CreatedTime  time.Time
}

// Page is one page of a folder listing
type Page struct {
	Files         []File
	NextPageToken string
}

// Lister reads folder contents from the external provider
type Lister interface {
	ListFolder(ctx context.Context, folderID, pageToken string, pageSize int64) (*Page, error)
	FolderName(ctx context.Context, folderID string) (string, error)
}

// Client implements Lister on the Drive v3 API
type Client struct {
	svc     *gdrive.Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewClient builds a Drive client from configuration. An API key is enough
// for publicly shared folders; a credentials file is used otherwise.
func NewClient(ctx context.Context, cfg config.DriveConfig, log zerolog.Logger, extra ...option.ClientOption) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Client{
		svc:     svc,
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "drive").Logger(),
	}, nil
}

// ListFolder returns one page of non-trashed files directly inside folderID
func (c *Client) ListFolder(ctx context.Context, folderID, pageToken string, pageSize int64) (*Page, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	call := c.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", strings.ReplaceAll(folderID, "'", `\'`))).
		Fields(listFields).
		PageSize(pageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Do()
	if err != nil {
		c.log.Error().Err(err).Str("folder_id", folderID).Msg("Folder listing failed")
		return nil, fmt.Errorf("%w: list folder %s: %v", models.ErrExternalService, folderID, err)
	}

	page := &Page{
		Files:         make([]File, 0, len(res.Files)),
		NextPageToken: res.NextPageToken,
	}
	for _, f := range res.Files {
		file := File{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ContentURL:   f.WebContentLink,
			ThumbnailURL: f.ThumbnailLink,
		}
		if f.CreatedTime != "" {
			if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
				file.CreatedTime = t
			}
		}
		page.Files = append(page.Files, file)
	}

	c.log.Debug().
		Str("folder_id", folderID).
		Int("files", len(page.Files)).
		Bool("has_more", page.NextPageToken != "").
		Msg("Listed folder page")

	return page, nil
}

// FolderName returns the display name of a folder
func (c *Client) FolderName(ctx context.Context, folderID string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	f, err := c.svc.Files.Get(folderID).
		Fields("id, name").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: get folder %s: %v", models.ErrExternalService, folderID, err)
	}
	return f.Name, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

var _ Lister = (*Client)(nil)
