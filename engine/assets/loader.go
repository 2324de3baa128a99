package assets

import (
	"context"

	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

type Loader interface {
	Load(ctx context.Context, path string, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take per-type options
	Unload(*metadata.Resource) error
}
