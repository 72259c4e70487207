package capture

import (
	"context"
	"errors"
	"strings"

	"github.com/sadopc/jsonstash/internal/core/endpoint"
	"github.com/sadopc/jsonstash/internal/core/response"
)

// Putter is the write side of the persistence gateway.
type Putter interface {
	Put(ctx context.Context, key, value string) error
}

// ValidateAlias checks that alias can be mounted as a route.
func ValidateAlias(alias string) error {
	if alias == "" {
		return newError(KindInvalidURL, alias, errors.New("alias is required"))
	}
	if !strings.HasPrefix(alias, "/") {
		return newError(KindInvalidURL, alias, errors.New("alias must start with '/'"))
	}
	return nil
}

// Save encodes alias and stores resp under it, replacing any previous record
// for the same alias. Store failures are returned unwrapped.
func Save(ctx context.Context, dst Putter, alias string, resp response.StorableResponse) (string, error) {
	if err := ValidateAlias(alias); err != nil {
		return "", err
	}
	value, err := response.Marshal(resp)
	if err != nil {
		return "", newError(KindSerialization, alias, err)
	}
	key := endpoint.Encode(alias)
	if err := dst.Put(ctx, key, value); err != nil {
		return "", err
	}
	return key, nil
}

// AddURL captures rawURL and stores it under alias.
func (c *Client) AddURL(ctx context.Context, dst Putter, rawURL, alias string) (response.StorableResponse, error) {
	if err := ValidateAlias(alias); err != nil {
		return response.StorableResponse{}, err
	}
	resp, err := c.FromURL(ctx, rawURL)
	if err != nil {
		return response.StorableResponse{}, err
	}
	if _, err := Save(ctx, dst, alias, resp); err != nil {
		return response.StorableResponse{}, err
	}
	return resp, nil
}

// AddFile captures the file at path and stores it under alias.
func AddFile(ctx context.Context, dst Putter, path, alias string) (response.StorableResponse, error) {
	if err := ValidateAlias(alias); err != nil {
		return response.StorableResponse{}, err
	}
	resp, err := FromFile(path)
	if err != nil {
		return response.StorableResponse{}, err
	}
	if _, err := Save(ctx, dst, alias, resp); err != nil {
		return response.StorableResponse{}, err
	}
	return resp, nil
}
