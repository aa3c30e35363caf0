package adapters

import (
	"github.com/sirupsen/logrus"

	"github.com/ternhq/tern/pkg/schema"
)

// DefaultRegistry returns a registry with every built-in adapter registered.
// A nil logger disables registration logging.
func DefaultRegistry(log *logrus.Logger) *schema.AdapterRegistry {
	reg := schema.NewAdapterRegistry(log)
	reg.Register(NewProtobuf())
	reg.Register(NewAvro())
	reg.Register(NewOpenAPI())
	reg.Register(NewGraphQL())
	reg.Register(NewJSONSchema())
	reg.Register(NewSQL())
	return reg
}
