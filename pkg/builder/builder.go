package builder

import (
	"context"

	"github.com/tgagor/stow/pkg/config"
)

type Builder interface {
	// render the Dockerfile and build the image
	Build(ctx context.Context, cfg config.Config, mode CacheMode) error

	// publish an already built image
	Push(ctx context.Context, image string) error
}
