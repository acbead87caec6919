package outline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// accessURLMarker is the query Outline appends to every access URL.
const accessURLMarker = "?outline=1"

// AccessKey is a key as the operator sees it: configuration from the key
// listing merged with usage from the metrics endpoint.
type AccessKey struct {
	ID        string
	Name      string
	AccessURL string
	Password  string
	Port      int
	Method    string
	UsedBytes int64
	// DataLimit is the effective limit: the key's own if set, otherwise the
	// server default at the time of the read. Nil means unlimited.
	DataLimit *int64
}

func (k AccessKey) String() string {
	return fmt.Sprintf("ID: %s, Name: %s", k.ID, k.Name)
}

// DisplayURL replaces the trailing outline marker with a #tag fragment.
// Clients ignore the fragment, so the URL keeps working.
func (k AccessKey) DisplayURL(tag string) string {
	if tag == "" || !strings.HasSuffix(k.AccessURL, accessURLMarker) {
		return k.AccessURL
	}
	return strings.TrimSuffix(k.AccessURL, accessURLMarker) + "#" + tag
}

func newAccessKey(k accessKey, used int64, defaultLimit *int64) AccessKey {
	limit := k.explicitLimit()
	if limit == nil {
		limit = defaultLimit
	}
	return AccessKey{
		ID:        k.ID,
		Name:      k.Name,
		AccessURL: k.AccessURL,
		Password:  k.Password,
		Port:      k.Port,
		Method:    k.Method,
		UsedBytes: used,
		DataLimit: limit,
	}
}

// ListKeys returns every key with usage and effective limit filled in.
func (c *Client) ListKeys(ctx context.Context) ([]AccessKey, error) {
	var (
		keys         []accessKey
		usage        map[string]int64
		defaultLimit *int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		keys, err = c.listAccessKeys(gctx)
		if err != nil {
			return fmt.Errorf("list access keys: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		usage, err = c.UsageByKey(gctx)
		return err
	})
	g.Go(func() error {
		defaultLimit = c.DefaultDataLimit(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]AccessKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, newAccessKey(k, usage[k.ID], defaultLimit))
	}
	return out, nil
}

// GetKey looks a key up by id. It returns nil without an error when there is
// no such key.
func (c *Client) GetKey(ctx context.Context, id int) (*AccessKey, error) {
	keys, err := c.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	want := strconv.Itoa(id)
	for i := range keys {
		if keys[i].ID == want {
			return &keys[i], nil
		}
	}
	return nil, nil
}

// DefaultKeyName is the name given to keys created without one.
func DefaultKeyName(id string) string {
	return "Key " + id
}

// CreateKey creates a key and names it. An empty name becomes DefaultKeyName.
// If the rename call fails the key is still returned with the name the server
// assigned.
func (c *Client) CreateKey(ctx context.Context, name string) (AccessKey, error) {
	created, err := c.createAccessKey(ctx)
	if err != nil {
		return AccessKey{}, fmt.Errorf("create access key: %w", err)
	}

	key := newAccessKey(created, 0, c.DefaultDataLimit(ctx))

	if name == "" {
		name = DefaultKeyName(key.ID)
	}
	id, err := strconv.Atoi(key.ID)
	if err != nil {
		return key, nil
	}
	if ok, _ := c.RenameKey(ctx, id, name); ok {
		key.Name = name
	}
	return key, nil
}
