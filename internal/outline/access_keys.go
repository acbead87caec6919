package outline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type dataLimit struct {
	Bytes *int64 `json:"bytes,omitempty"`
}

// accessKey is the wire form of a key as returned by the management API.
type accessKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Password  string     `json:"password,omitempty"`
	Port      int        `json:"port,omitempty"`
	Method    string     `json:"method,omitempty"`
	AccessURL string     `json:"accessUrl,omitempty"`
	DataLimit *dataLimit `json:"dataLimit,omitempty"`
}

// UnmarshalJSON accepts the id as a JSON string, which Outline sends, or as a
// bare number.
func (k *accessKey) UnmarshalJSON(data []byte) error {
	type plain accessKey
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(k)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ID)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		k.ID = ""
	case raw[0] == '"':
		return json.Unmarshal(raw, &k.ID)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("access key id: %w", err)
		}
		k.ID = n.String()
	}
	return nil
}

// explicitLimit reads dataLimit.bytes, nil when either level is missing.
func (k accessKey) explicitLimit() *int64 {
	if k.DataLimit == nil {
		return nil
	}
	return k.DataLimit.Bytes
}

type accessKeysResp struct {
	AccessKeys []accessKey `json:"accessKeys"`
}

func keyPath(id int) string {
	return "/access-keys/" + strconv.Itoa(id)
}

func (c *Client) listAccessKeys(ctx context.Context) ([]accessKey, error) {
	var out accessKeysResp
	if err := c.doJSON(ctx, http.MethodGet, "/access-keys/", nil, &out); err != nil {
		return nil, err
	}
	return out.AccessKeys, nil
}

func (c *Client) createAccessKey(ctx context.Context) (accessKey, error) {
	var out accessKey
	if err := c.doJSON(ctx, http.MethodPost, "/access-keys/", nil, &out); err != nil {
		return accessKey{}, err
	}
	return out, nil
}

// DeleteKey removes a key. It returns false when the server refuses, which in
// practice means the key does not exist.
func (c *Client) DeleteKey(ctx context.Context, id int) (bool, error) {
	return accepted(c.doJSON(ctx, http.MethodDelete, keyPath(id), nil, nil))
}

// RenameKey sets the display name of a key.
func (c *Client) RenameKey(ctx context.Context, id int, name string) (bool, error) {
	form := url.Values{"name": {name}}
	return accepted(c.doForm(ctx, http.MethodPut, keyPath(id)+"/name/", form, nil))
}
