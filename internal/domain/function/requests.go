package function

import "github.com/alexisbeaulieu97/lambda-deploy/internal/domain/configtree"

// CreateRequest creates a new function. Body is normalized and keyed by API
// field names; ZipFile carries the packaged code.
type CreateRequest struct {
	Name    string
	Body    configtree.Value
	ZipFile []byte
}

// UpdateConfigurationRequest replaces the mutable configuration of a function.
type UpdateConfigurationRequest struct {
	Name string
	Body configtree.Value
}

// UpdateCodeRequest uploads new code. A DryRun request is validated by the
// control plane without side effects.
type UpdateCodeRequest struct {
	Name    string
	Body    configtree.Value
	ZipFile []byte
	DryRun  bool
}

// NewCreateRequest builds a normalized creation request from spec.
func NewCreateRequest(spec DesiredSpec, n *configtree.Normalizer, code []byte) CreateRequest {
	return CreateRequest{
		Name:    spec.Name,
		Body:    normalizer(n).Normalize(spec.CreateTree()),
		ZipFile: code,
	}
}

// NewUpdateConfigurationRequest builds a normalized configuration update.
func NewUpdateConfigurationRequest(spec DesiredSpec, n *configtree.Normalizer) UpdateConfigurationRequest {
	return UpdateConfigurationRequest{
		Name: spec.Name,
		Body: normalizer(n).Normalize(spec.ConfigurationTree()),
	}
}

// NewUpdateCodeRequest builds a normalized code update.
func NewUpdateCodeRequest(spec DesiredSpec, n *configtree.Normalizer, code []byte, dryRun bool) UpdateCodeRequest {
	return UpdateCodeRequest{
		Name:    spec.Name,
		Body:    normalizer(n).Normalize(spec.CodeTree()),
		ZipFile: code,
		DryRun:  dryRun,
	}
}

func normalizer(n *configtree.Normalizer) *configtree.Normalizer {
	if n == nil {
		return configtree.DefaultNormalizer()
	}
	return n
}
