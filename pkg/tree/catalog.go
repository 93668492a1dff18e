package tree

// Catalog is a descriptive list of the operations and events a tree surface
// exposes, for documentation or for a proxy layer sitting above the engine.
// The engine itself never consults it.
type Catalog struct {
	Name    string   `json:"name"`
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// NewCatalog returns the catalog for a named tree surface.
func NewCatalog(name string) Catalog {
	return Catalog{
		Name: name,
		Methods: []string{
			"getLength",
			"getChild",
			"getParent",
			"getIndex",
			"getRoot",
			"getProperty",
			"addChild",
			"removeChild",
			"move",
			"destroy",
		},
		Events: []string{
			"destroyed",
			"added",
			"removed",
			"moved",
		},
	}
}

// HasMethod reports whether the catalog lists the method.
func (c Catalog) HasMethod(name string) bool {
	for _, m := range c.Methods {
		if m == name {
			return true
		}
	}
	return false
}
