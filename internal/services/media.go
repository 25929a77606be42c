package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"gamevault-backend/internal/models"
)

var (
	cloudinaryURLRegex = regexp.MustCompile(`(?i)^https?://res\.cloudinary\.com/`)
	youtubeURLRegex    = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com|youtu\.be)/`)
	versionSegRegex    = regexp.MustCompile(`^v\d+$`)
)

type MediaService struct {
	cld *cloudinary.Cloudinary
}

func NewMediaService(cloudinaryURL string) (*MediaService, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &MediaService{cld: cld}, nil
}

// Upload streams the file to Cloudinary. Videos and images go to their own
// resource type based on the declared content type.
func (s *MediaService) Upload(ctx context.Context, file io.Reader, contentType, folder string) (*models.UploadResult, error) {
	resourceType := "image"
	if strings.HasPrefix(contentType, "video/") {
		resourceType = "video"
	}

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}

	return &models.UploadResult{
		URL:  result.SecureURL,
		Path: result.PublicID,
	}, nil
}

// Delete removes an asset by public ID. The stored resource type is unknown,
// so it attempts the image kind first and then the video kind; "not found" on
// either attempt counts as success, only hard failures are aggregated.
func (s *MediaService) Delete(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil
	}

	var hard []error
	for _, resourceType := range []string{"image", "video"} {
		resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:     publicID,
			ResourceType: resourceType,
		})
		if err != nil {
			hard = append(hard, fmt.Errorf("destroy %s %q: %w", resourceType, publicID, err))
			continue
		}
		if resp.Result == "ok" {
			return nil
		}
	}
	return errors.Join(hard...)
}

// DeleteByURL deletes the asset behind a Cloudinary URL. Non-Cloudinary URLs
// are ignored.
func (s *MediaService) DeleteByURL(ctx context.Context, rawURL string) error {
	pid := PublicIDFromURL(rawURL)
	if pid == "" {
		return nil
	}
	return s.Delete(ctx, pid)
}

// CleanupRemoved best-effort deletes every old asset no longer present in the
// new set. Failures are logged, not returned; stale assets on the media host
// must never fail the catalog write that orphaned them.
func (s *MediaService) CleanupRemoved(ctx context.Context, oldURLs, newURLs []string) {
	for _, u := range DiffRemoved(oldURLs, newURLs) {
		if err := s.DeleteByURL(ctx, u); err != nil {
			log.Printf("✗ Failed to clean up media %s: %v", u, err)
		}
	}
}

// DiffRemoved returns the old URLs whose assets are absent from the new set,
// compared by public ID.
func DiffRemoved(oldURLs, newURLs []string) []string {
	newPIDs := make(map[string]bool)
	for _, u := range newURLs {
		if pid := PublicIDFromURL(u); pid != "" {
			newPIDs[pid] = true
		}
	}

	seen := make(map[string]bool)
	var removed []string
	for _, u := range oldURLs {
		pid := PublicIDFromURL(u)
		if pid == "" || newPIDs[pid] || seen[pid] {
			continue
		}
		seen[pid] = true
		removed = append(removed, u)
	}
	return removed
}

// PublicIDFromURL extracts the Cloudinary public ID from a delivery URL,
// e.g. ".../upload/v123/games/cover/abc.jpg" yields "games/cover/abc".
// Empty for anything that is not a Cloudinary URL.
func PublicIDFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !IsCloudinaryURL(rawURL) {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	idx := strings.Index(u.Path, "/upload/")
	if idx == -1 {
		return ""
	}

	tail := u.Path[idx+len("/upload/"):]
	parts := []string{}
	for _, p := range strings.Split(tail, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 && versionSegRegex.MatchString(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return ""
	}

	last := parts[len(parts)-1]
	dot := strings.LastIndex(last, ".")
	if dot == -1 {
		return ""
	}
	parts[len(parts)-1] = last[:dot]
	return strings.Join(parts, "/")
}

func IsCloudinaryURL(rawURL string) bool {
	return cloudinaryURLRegex.MatchString(strings.TrimSpace(rawURL))
}

func IsYouTubeURL(rawURL string) bool {
	return youtubeURLRegex.MatchString(strings.TrimSpace(rawURL))
}

// CollectGameMedia gathers every media URL a game owns, cover first.
func CollectGameMedia(coverMedia string, screenshots []string) []string {
	urls := []string{}
	if c := strings.TrimSpace(coverMedia); c != "" {
		urls = append(urls, c)
	}
	for _, s := range screenshots {
		if s = strings.TrimSpace(s); s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}
