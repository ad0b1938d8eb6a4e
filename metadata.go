package weave

import "github.com/iov-one/weave-timedwallet/errors"

// Metadata is carried by every persisted model and every message. Schema
// declares the version of the serialization format the entity was created
// with.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the schema version is not declared.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing metadata")
	}
	if m.Schema == 0 {
		return errors.Wrap(errors.ErrMetadata, "schema version is required")
	}
	return nil
}

// Copy returns a copy of this object. This method is helpful when a model
// is cloned before modification.
func (m *Metadata) Copy() *Metadata {
	cpy := *m
	return &cpy
}
