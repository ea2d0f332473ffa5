package update

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	ContentType        string `json:"content_type"`
	Size               int64  `json:"size"`
}

// Release is the subset of the release feed body the checker reads.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
	Draft       bool      `json:"draft"`
	Assets      []Asset   `json:"assets"`
}

const feedSchemaURL = "https://segunda.invalid/schema/release-feed.json"

// feedSchema rejects bodies that decode as JSON but are not a release.
const feedSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tag_name"],
  "properties": {
    "tag_name": {"type": "string", "minLength": 1},
    "body": {"type": ["string", "null"]},
    "assets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "browser_download_url"],
        "properties": {
          "name": {"type": "string"},
          "browser_download_url": {"type": "string"},
          "size": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func releaseSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(feedSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parse feed schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(feedSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add feed schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(feedSchemaURL)
	})
	return compiledSchema, schemaErr
}

// DecodeRelease validates body against the feed schema and decodes it.
func DecodeRelease(body []byte) (*Release, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}
	sch, err := releaseSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	var release Release
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}
	return &release, nil
}

// FindAsset returns the first asset whose name ends in suffix.
func (r *Release) FindAsset(suffix string) (Asset, bool) {
	suffix = strings.ToLower(suffix)
	for _, a := range r.Assets {
		if strings.HasSuffix(strings.ToLower(a.Name), suffix) {
			return a, true
		}
	}
	return Asset{}, false
}

// findNamed returns the asset with exactly the given name.
func (r *Release) findNamed(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Asset{}, false
}
